package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// PageOutline is the condensed view of a page returned to the model by
// get_page_content. Raw DOM dumps overflow model context, so the
// outline keeps semantic structure and targeting attributes only.
type PageOutline struct {
	Title     string
	Headings  []string
	Links     []string
	Inputs    []string
	Body      string
	Truncated bool
}

// OutlinePage condenses raw HTML into a PageOutline bounded by
// maxLength bytes of body text.
func OutlinePage(rawHTML string, maxLength int) (*PageOutline, error) {
	if maxLength <= 0 {
		maxLength = DefaultContentLength
	}

	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	outline := &PageOutline{}

	doc := goquery.NewDocumentFromNode(root)
	outline.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			outline.Headings = append(outline.Headings, text)
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		if text == "" {
			text = href
		}
		outline.Links = append(outline.Links, fmt.Sprintf("%s -> %s", text, href))
	})

	doc.Find("input, textarea, select, button").Each(func(_ int, s *goquery.Selection) {
		outline.Inputs = append(outline.Inputs, describeControl(s))
	})

	var body strings.Builder
	length := 0
	outline.Truncated = writeCondensed(root, &body, &length, maxLength)
	outline.Body = body.String()

	return outline, nil
}

// String renders the outline as the flat text block handed back to the
// model.
func (o *PageOutline) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Title: %s\n", o.Title)

	if len(o.Headings) > 0 {
		b.WriteString("\nHeadings:\n")
		for _, h := range o.Headings {
			fmt.Fprintf(&b, "  - %s\n", h)
		}
	}
	if len(o.Links) > 0 {
		b.WriteString("\nLinks:\n")
		for _, l := range o.Links {
			fmt.Fprintf(&b, "  - %s\n", l)
		}
	}
	if len(o.Inputs) > 0 {
		b.WriteString("\nControls:\n")
		for _, i := range o.Inputs {
			fmt.Fprintf(&b, "  - %s\n", i)
		}
	}

	b.WriteString("\nContent:\n")
	b.WriteString(o.Body)
	if o.Truncated {
		b.WriteString("\n[content truncated]")
	}
	return b.String()
}

func describeControl(s *goquery.Selection) string {
	tag := goquery.NodeName(s)
	parts := []string{tag}

	if typ, ok := s.Attr("type"); ok {
		parts = append(parts, "type="+typ)
	}
	if name, ok := s.Attr("name"); ok {
		parts = append(parts, "name="+name)
	}
	if id, ok := s.Attr("id"); ok {
		parts = append(parts, "id="+id)
	}
	if ph, ok := s.Attr("placeholder"); ok {
		parts = append(parts, "placeholder="+ph)
	}
	if tag == "button" {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, "text="+text)
		}
	}
	return strings.Join(parts, " ")
}

// writeCondensed walks the DOM writing visible text in document order,
// skipping noise elements. Returns true when the length budget was hit.
func writeCondensed(n *html.Node, b *strings.Builder, length *int, maxLength int) bool {
	if *length >= maxLength {
		return true
	}

	switch n.Type {
	case html.CommentNode:
		return false
	case html.ElementNode:
		if skippedElement(strings.ToLower(n.Data)) {
			return false
		}
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return false
		}
		if *length+len(text)+1 > maxLength {
			remaining := maxLength - *length
			if remaining > 0 {
				b.WriteString(runeSafePrefix(text, remaining))
			}
			*length = maxLength
			return true
		}
		b.WriteString(text)
		b.WriteString(" ")
		*length += len(text) + 1
		return false
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if writeCondensed(c, b, length, maxLength) {
			return true
		}
	}
	return false
}

// runeSafePrefix returns at most n bytes of s without splitting a
// multi-byte rune.
func runeSafePrefix(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func skippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "iframe", "embed", "object", "svg", "head":
		return true
	}
	return false
}
