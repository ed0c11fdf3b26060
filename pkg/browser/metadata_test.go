package browser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPageBlock(t *testing.T) {
	block := FormatPageBlock("https://example.com/", "Example Domain")

	assert.Equal(t, "📄 Page Metadata:\n  • URL: https://example.com/\n  • Title: Example Domain", block)
}

func TestFormatMetadataBlockLabels(t *testing.T) {
	elements := []ElementInfo{
		{
			Selector: "a",
			Tag:      "a",
			Text:     "More information...",
			Href:     "https://www.iana.org/domains/example",
		},
	}

	block := FormatMetadataBlock("https://example.com/", "Example Domain", elements)

	// The transcript scanner keys on these exact labels.
	assert.Contains(t, block, "📄 Page Metadata:")
	assert.Contains(t, block, "  • URL: https://example.com/")
	assert.Contains(t, block, "  • Title: Example Domain")
	assert.Contains(t, block, "🎯 Element Metadata (Found 1 element(s)):")
	assert.Contains(t, block, "  Element 1:")
	assert.Contains(t, block, "  • Selector: a")
	assert.Contains(t, block, "  • Tag: <a>")
	assert.Contains(t, block, "  • Type: link")
	assert.Contains(t, block, "  • Text: More information...")
	assert.Contains(t, block, "  • Href: https://www.iana.org/domains/example")
}

func TestFormatMetadataBlockEmptyAttributesRenderNone(t *testing.T) {
	elements := []ElementInfo{
		{Selector: "button.submit", Tag: "button", Text: "Submit"},
	}

	block := FormatMetadataBlock("https://example.com/form", "Form", elements)

	assert.Contains(t, block, "  • Href: None")
	assert.Contains(t, block, "  • ID: None")
	assert.Contains(t, block, "  • Name: None")
	assert.Contains(t, block, "  • Class: None")
	assert.Contains(t, block, "  • Input Type: None")
	assert.Contains(t, block, "  • Type: button")
}

func TestFormatMetadataBlockRendersInputType(t *testing.T) {
	elements := []ElementInfo{
		{Selector: `input[name="email"]`, Tag: "input", Name: "email", InputType: "text"},
	}

	block := FormatMetadataBlock("https://example.com/signup", "Signup", elements)

	assert.Contains(t, block, "  • Tag: <input>")
	assert.Contains(t, block, "  • Input Type: text")
}

func TestFormatMetadataBlockNoElements(t *testing.T) {
	block := FormatMetadataBlock("https://example.com/", "Example Domain", nil)

	assert.Contains(t, block, "🎯 Element Metadata (Found 0 element(s)):")
	assert.NotContains(t, block, "Element 1:")
}

func TestFormatMetadataBlockTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", MaxElementTextLength+50)
	elements := []ElementInfo{{Selector: "p", Tag: "p", Text: long}}

	block := FormatMetadataBlock("https://example.com/", "Example", elements)

	require.Contains(t, block, "  • Text: ")
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(line, "  • Text: ") {
			assert.Len(t, strings.TrimPrefix(line, "  • Text: "), MaxElementTextLength)
		}
	}
}

func TestFormatMetadataBlockTruncationKeepsValidUTF8(t *testing.T) {
	long := strings.Repeat("é", MaxElementTextLength+10)
	elements := []ElementInfo{{Selector: "p", Tag: "p", Text: long}}

	block := FormatMetadataBlock("https://example.com/", "Exemple", elements)

	assert.True(t, utf8.ValidString(block))
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(line, "  • Text: ") {
			text := strings.TrimPrefix(line, "  • Text: ")
			assert.Equal(t, MaxElementTextLength, len([]rune(text)))
		}
	}
}

func TestFormatMetadataBlockCollapsesWhitespaceInText(t *testing.T) {
	elements := []ElementInfo{{Selector: "a", Tag: "a", Text: "More\n  information..."}}

	block := FormatMetadataBlock("https://example.com/", "Example", elements)

	assert.Contains(t, block, "  • Text: More information...")
}
