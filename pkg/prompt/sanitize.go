package prompt

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptBlockRegex = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRegex  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	anyTagRegex      = regexp.MustCompile(`<[^>]*>`)
	schemeRegex      = regexp.MustCompile(`(?i)javascript:`)
	handlerRegex     = regexp.MustCompile(`(?i)\bon\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	placeholderRegex = regexp.MustCompile(`\$\{[^}]*\}|\{\{[^}]*\}\}`)
	multiSpaceRegex  = regexp.MustCompile(`[ \t]{2,}`)
)

// Sanitize strips HTML, suspicious code sequences, and control
// characters from a prompt. The result is safe to embed in model input
// but is not guaranteed to preserve the author's intent; callers decide
// whether to use it.
func Sanitize(text string) string {
	out := scriptBlockRegex.ReplaceAllString(text, "")
	out = styleBlockRegex.ReplaceAllString(out, "")
	out = handlerRegex.ReplaceAllString(out, "")
	out = anyTagRegex.ReplaceAllString(out, "")
	out = schemeRegex.ReplaceAllString(out, "")
	out = placeholderRegex.ReplaceAllString(out, "")
	out = removeControlCharacters(out)
	out = multiSpaceRegex.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// removeControlCharacters drops non-printable runes while keeping
// newlines and tabs.
func removeControlCharacters(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
