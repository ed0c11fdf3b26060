// Package graph extracts the navigation graph from a run transcript.
// The scanner is deterministic post-processing: it never talks to the
// browser and never fabricates entities, so a sparse transcript yields
// a sparse graph.
package graph

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/webtrailhq/webtrail/pkg/types"
)

const (
	pageBlockMarker = "📄 Page Metadata:"

	urlLabel      = "• URL:"
	titleLabel    = "• Title:"
	selectorLabel = "• Selector:"
	tagLabel      = "• Tag:"
	typeLabel     = "• Type:"
	textLabel     = "• Text:"
	hrefLabel     = "• Href:"
	idLabel       = "• ID:"
	nameLabel     = "• Name:"
	classLabel    = "• Class:"
	inputLabel    = "• Input Type:"

	clickedMarker   = "Successfully clicked element: "
	navigatedMarker = "Successfully navigated to "

	// Page layout constants for downstream visualization.
	pageXOrigin  = 200
	pageXSpacing = 300
	pageY        = 100

	maxEdgeLabelLength = 20
	maxElementText     = 200
)

// Scan parses the transcript's tool outcomes into page nodes and
// edges. Pages are keyed by URL in first-observation order; re-visits
// merge newly observed elements (keyed by selector) into the existing
// node without allocating a new page or edge.
func Scan(transcript string) ([]types.Page, []types.Edge) {
	var (
		pages     []*types.Page
		edges     []types.Edge
		pageByURL = map[string]*types.Page{}
		seen      = map[string]map[string]bool{}

		current *types.Page
		// Action window since the last page block. Clicks win over
		// navigations when both occur: a click that triggers a
		// navigation describes the transition better than the
		// navigation it caused.
		lastClick string
		lastNav   string
	)

	lines := strings.Split(transcript, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if strings.Contains(line, clickedMarker) {
			lastClick = "Click " + clickDescription(line)
			continue
		}
		if strings.Contains(line, navigatedMarker) {
			lastNav = "Navigate to " + hostOf(navigatedURL(line))
			continue
		}

		if strings.Contains(line, pageBlockMarker) {
			pageURL, title, consumed := parsePageHeader(lines[i+1:])
			i += consumed
			if pageURL == "" {
				continue
			}

			lastAction := lastClick
			if lastAction == "" {
				lastAction = lastNav
			}
			lastClick, lastNav = "", ""

			if existing, ok := pageByURL[pageURL]; ok {
				current = existing
				continue
			}

			page := &types.Page{
				ID:    pageID(len(pages)),
				Label: pageLabel(title, pageURL),
				X:     pageXOrigin + pageXSpacing*len(pages),
				Y:     pageY,
				Metadata: types.PageMetadata{
					URL:         pageURL,
					Title:       title,
					KeyElements: []types.Element{},
				},
			}

			if current != nil && current.ID != page.ID {
				edges = append(edges, types.Edge{
					Source: current.ID,
					Target: page.ID,
					Label:  edgeLabel(lastAction, pageURL),
				})
			}

			pages = append(pages, page)
			pageByURL[pageURL] = page
			seen[pageURL] = map[string]bool{}
			current = page
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), selectorLabel) && current != nil {
			element, consumed := parseElement(lines[i:])
			i += consumed - 1

			if element.Selector == "" || seen[current.Metadata.URL][element.Selector] {
				continue
			}
			seen[current.Metadata.URL][element.Selector] = true

			element.ID = elementID(len(current.Metadata.KeyElements))
			current.Metadata.KeyElements = append(current.Metadata.KeyElements, element)
		}
	}

	result := make([]types.Page, len(pages))
	for i, p := range pages {
		result[i] = *p
	}
	return result, edges
}

// parsePageHeader reads the URL and Title bullets that follow a page
// block marker and returns the number of lines consumed.
func parsePageHeader(lines []string) (pageURL, title string, consumed int) {
	for consumed < len(lines) {
		trimmed := strings.TrimSpace(lines[consumed])
		switch {
		case strings.HasPrefix(trimmed, urlLabel):
			pageURL = strings.TrimSpace(strings.TrimPrefix(trimmed, urlLabel))
		case strings.HasPrefix(trimmed, titleLabel):
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, titleLabel))
			return pageURL, title, consumed + 1
		default:
			return pageURL, title, consumed
		}
		consumed++
	}
	return pageURL, title, consumed
}

// parseElement reads one element entry's bullet lines starting at the
// Selector bullet. It stops at the first line that is neither a known
// bullet nor an entry separator, and returns the lines consumed.
func parseElement(lines []string) (types.Element, int) {
	element := types.Element{DependsOn: []string{}}
	consumed := 0

	for consumed < len(lines) {
		trimmed := strings.TrimSpace(lines[consumed])

		switch {
		case strings.HasPrefix(trimmed, selectorLabel):
			if element.Selector != "" {
				return finishElement(element), consumed
			}
			element.Selector = fieldValue(trimmed, selectorLabel)
		case strings.HasPrefix(trimmed, tagLabel):
			element.Tag = strings.Trim(fieldValue(trimmed, tagLabel), "<>")
		case strings.HasPrefix(trimmed, typeLabel):
			element.Type = fieldValue(trimmed, typeLabel)
		case strings.HasPrefix(trimmed, textLabel):
			element.Text = truncate(fieldValue(trimmed, textLabel), maxElementText)
		case strings.HasPrefix(trimmed, hrefLabel):
			element.Href = fieldValue(trimmed, hrefLabel)
		case strings.HasPrefix(trimmed, idLabel):
			element.ElementID = fieldValue(trimmed, idLabel)
		case strings.HasPrefix(trimmed, nameLabel):
			element.Name = fieldValue(trimmed, nameLabel)
		case strings.HasPrefix(trimmed, classLabel):
			element.Class = fieldValue(trimmed, classLabel)
		case strings.HasPrefix(trimmed, inputLabel):
			element.InputType = fieldValue(trimmed, inputLabel)
		case trimmed == "" || strings.HasPrefix(trimmed, "Element "):
			// Entry separator; keep scanning in case the next bullet
			// belongs to the same block's following entry.
			return finishElement(element), consumed + 1
		default:
			return finishElement(element), consumed
		}
		consumed++
	}
	return finishElement(element), consumed
}

func finishElement(element types.Element) types.Element {
	if element.Type == "" {
		element.Type = types.ElementKindFromTag(element.Tag)
	}
	return element
}

// fieldValue strips the bullet label and maps the literal "None" to an
// empty value.
func fieldValue(line, label string) string {
	value := strings.TrimSpace(strings.TrimPrefix(line, label))
	if value == "None" {
		return ""
	}
	return value
}

// clickDescription extracts the human description from a click
// outcome, dropping the trailing "(selector)" suffix when present.
func clickDescription(line string) string {
	idx := strings.Index(line, clickedMarker)
	desc := strings.TrimSpace(line[idx+len(clickedMarker):])
	if open := strings.LastIndex(desc, " ("); open > 0 && strings.HasSuffix(desc, ")") {
		desc = desc[:open]
	}
	return desc
}

// navigatedURL extracts the destination URL from a navigate outcome.
func navigatedURL(line string) string {
	idx := strings.Index(line, navigatedMarker)
	rest := strings.TrimSpace(line[idx+len(navigatedMarker):])
	if fields := strings.Fields(rest); len(fields) > 0 {
		return fields[0]
	}
	return rest
}

func pageID(index int) string {
	return "page_" + strconv.Itoa(index+1)
}

func elementID(index int) string {
	return "element_" + strconv.Itoa(index+1)
}

func pageLabel(title, pageURL string) string {
	return title + " (" + hostOf(pageURL) + ")"
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}

// edgeLabel prefers the most recent click/navigate action and
// truncates long labels for display.
func edgeLabel(lastAction, targetURL string) string {
	label := lastAction
	if label == "" {
		label = "Navigate to " + hostOf(targetURL)
	}
	return truncateLabel(label, maxEdgeLabelLength)
}

// Truncation counts runes so multi-byte text is never split mid-rune.

func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
