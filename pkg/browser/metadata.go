package browser

import (
	"fmt"
	"strings"

	"github.com/webtrailhq/webtrail/pkg/types"
)

// FormatPageBlock renders the page-level metadata block. The transcript
// scanner keys on these exact labels.
func FormatPageBlock(url, title string) string {
	var b strings.Builder
	b.WriteString("📄 Page Metadata:\n")
	fmt.Fprintf(&b, "  • URL: %s\n", url)
	fmt.Fprintf(&b, "  • Title: %s", title)
	return b.String()
}

// FormatMetadataBlock renders the full page and element metadata block
// for one metadata query. Empty attribute values render as "None" so
// every element carries the same label set.
func FormatMetadataBlock(url, title string, elements []ElementInfo) string {
	var b strings.Builder
	b.WriteString(FormatPageBlock(url, title))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "🎯 Element Metadata (Found %d element(s)):\n", len(elements))
	for i, el := range elements {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  Element %d:\n", i+1)
		fmt.Fprintf(&b, "  • Selector: %s\n", el.Selector)
		fmt.Fprintf(&b, "  • Tag: <%s>\n", el.Tag)
		fmt.Fprintf(&b, "  • Type: %s\n", types.ElementKindFromTag(el.Tag))
		fmt.Fprintf(&b, "  • Text: %s\n", truncateText(el.Text, MaxElementTextLength))
		fmt.Fprintf(&b, "  • Href: %s\n", orNone(el.Href))
		fmt.Fprintf(&b, "  • ID: %s\n", orNone(el.ID))
		fmt.Fprintf(&b, "  • Name: %s\n", orNone(el.Name))
		fmt.Fprintf(&b, "  • Class: %s\n", orNone(el.Class))
		fmt.Fprintf(&b, "  • Input Type: %s\n", orNone(el.InputType))
	}
	return strings.TrimRight(b.String(), "\n")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// truncateText collapses whitespace and truncates to max runes, never
// splitting a multi-byte rune.
func truncateText(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
