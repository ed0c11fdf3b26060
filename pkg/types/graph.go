package types

// Element is one interactive element observed on a page. IDs are
// positional within the parent page, not globally unique.
type Element struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Tag       string   `json:"tag"`
	Text      string   `json:"text"`
	Selector  string   `json:"selector,omitempty"`
	ElementID string   `json:"element_id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Class     string   `json:"class,omitempty"`
	Href      string   `json:"href,omitempty"`
	InputType string   `json:"input_type,omitempty"`
	DependsOn []string `json:"depends_on"`
}

// PageMetadata holds the URL, title and elements observed for a page.
type PageMetadata struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	KeyElements []Element `json:"key_elements"`
}

// Page is one node of the navigation graph. X and Y are layout hints
// for downstream visualization.
type Page struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`
	X        int          `json:"x"`
	Y        int          `json:"y"`
	Metadata PageMetadata `json:"metadata"`
}

// Edge is a directed, labelled transition between two pages.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}
