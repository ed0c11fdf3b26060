package browser

import "github.com/webtrailhq/webtrail/pkg/types"

// Options configures a browser session for one run.
type Options struct {
	// Engine selects the browser engine variant
	Engine types.EngineVariant

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// ScreenshotDir is where screenshot files are written
	ScreenshotDir string

	// AllowedHosts restricts navigation to matching hosts (glob
	// patterns). Empty means no restriction.
	AllowedHosts []string
}

// ElementInfo holds the attributes collected for one matched element.
type ElementInfo struct {
	Selector  string
	Tag       string
	Text      string
	Href      string
	ID        string
	Name      string
	Class     string
	InputType string
}

// Default values for browser operations
const (
	// DefaultNavigationTimeout bounds page loads (milliseconds)
	DefaultNavigationTimeout = 30000.0

	// DefaultActionTimeout bounds clicks and fills (milliseconds)
	DefaultActionTimeout = 10000.0

	// DefaultWaitTimeout is used when wait tools omit a timeout (milliseconds)
	DefaultWaitTimeout = 10000.0

	// MaxMetadataElements caps the elements reported per metadata query
	MaxMetadataElements = 10

	// MaxElementTextLength truncates element text in metadata blocks
	MaxElementTextLength = 200

	// DefaultViewportWidth and DefaultViewportHeight size the page
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// DefaultContentLength caps the DOM outline returned by get_page_content
	DefaultContentLength = 10000
)
