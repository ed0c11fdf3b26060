package types

// ElementKindFromTag maps an HTML tag onto the element kind used in
// metadata blocks and graph records. Unknown tags fall back to the raw
// tag name.
func ElementKindFromTag(tag string) string {
	switch tag {
	case "a":
		return "link"
	case "button":
		return "button"
	case "input":
		return "input"
	case "form":
		return "form"
	case "select":
		return "select"
	case "textarea":
		return "textarea"
	default:
		return tag
	}
}
