package browser

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/playwright-community/playwright-go"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/logging"
	"github.com/webtrailhq/webtrail/pkg/types"
)

// Session owns one browser process and one active page for the
// duration of a run. The lifecycle is one-shot: uninitialized until the
// first navigation, then closed exactly once on teardown. Within a run
// the session is driven sequentially by the tool catalogue; the mutex
// only guards the lifecycle transitions.
type Session struct {
	opts   Options
	logger *logging.Logger

	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	initialized bool
	closed      bool

	hostAllow []glob.Glob
}

// NewSession creates a session for the given options. The browser is
// not launched until the first Navigate call.
func NewSession(opts Options, logger *logging.Logger) (*Session, error) {
	if !types.ValidEngine(opts.Engine) {
		return nil, apperrors.NewConfiguration("browser.engine",
			fmt.Sprintf("unknown engine variant %q", opts.Engine))
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "."
	}

	s := &Session{opts: opts, logger: logger}
	for _, pattern := range opts.AllowedHosts {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, apperrors.NewConfiguration("browser.allowed_hosts",
				fmt.Sprintf("invalid host pattern %q: %v", pattern, err))
		}
		s.hostAllow = append(s.hostAllow, g)
	}
	return s, nil
}

// Initialize launches the browser and opens an empty page. Subsequent
// calls are no-ops. A closed session cannot be re-initialized.
func (s *Session) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.closed {
		return apperrors.NewState("closed", "browser session already closed")
	}

	// Discard driver output so it cannot interleave with run logs.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return apperrors.NewBrowser("session", fmt.Errorf("failed to install playwright: %w", err))
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return apperrors.NewBrowser("session", fmt.Errorf("failed to start playwright: %w", err))
	}

	browser, err := s.launch(pw)
	if err != nil {
		_ = pw.Stop()
		return err
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		_ = pw.Stop()
		return apperrors.NewBrowser("session", fmt.Errorf("failed to create context: %w", err))
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		_ = pw.Stop()
		return apperrors.NewBrowser("session", fmt.Errorf("failed to create page: %w", err))
	}
	page.SetDefaultTimeout(DefaultActionTimeout)

	s.pw = pw
	s.browser = browser
	s.context = context
	s.page = page
	s.initialized = true

	if s.logger != nil {
		s.logger.Infof("browser session initialized: engine=%s headless=%v", s.opts.Engine, s.opts.Headless)
	}
	return nil
}

// launch maps the engine variant onto the driver's launch options. The
// edge variant is Chromium through the msedge channel.
func (s *Session) launch(pw *playwright.Playwright) (playwright.Browser, error) {
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &s.opts.Headless,
	}

	var browserType playwright.BrowserType
	switch s.opts.Engine {
	case types.EngineFirefox:
		browserType = pw.Firefox
	case types.EngineWebKit:
		browserType = pw.WebKit
	case types.EngineEdge:
		browserType = pw.Chromium
		channel := "msedge"
		launchOpts.Channel = &channel
	default:
		browserType = pw.Chromium
	}

	browser, err := browserType.Launch(launchOpts)
	if err != nil {
		return nil, apperrors.NewBrowser("session", fmt.Errorf("failed to launch %s: %w", s.opts.Engine, err))
	}
	return browser, nil
}

// Ready reports whether the session has an active page.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized && !s.closed
}

// Page returns the active page handle. Calling it before the first
// navigation is a fatal StateError.
func (s *Session) Page() (playwright.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, apperrors.NewState("closed", "browser session already closed")
	}
	if !s.initialized {
		return nil, apperrors.NewState("uninitialized", "browser session not ready")
	}
	return s.page, nil
}

// Close tears down the page, context, browser and driver. It is
// idempotent; every run closes its session on all exit paths.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if !s.initialized {
		return nil
	}
	s.initialized = false

	// Continue cleanup past individual failures.
	_ = s.page.Close()
	_ = s.context.Close()
	_ = s.browser.Close()
	err := s.pw.Stop()

	if s.logger != nil {
		s.logger.Infof("browser session closed")
	}
	if err != nil {
		return apperrors.NewBrowser("session", fmt.Errorf("failed to stop playwright: %w", err))
	}
	return nil
}

// checkHost enforces the navigation allow-list.
func (s *Session) checkHost(rawURL string) error {
	if len(s.hostAllow) == 0 {
		return nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	host := parsed.Hostname()
	for _, g := range s.hostAllow {
		if g.Match(host) {
			return nil
		}
	}
	return fmt.Errorf("host %q is not in the allowed host list", host)
}

// Navigate opens the URL in the active page, initializing the session
// on first use. It returns the loaded page's title.
func (s *Session) Navigate(rawURL string) (string, error) {
	if err := s.checkHost(rawURL); err != nil {
		return "", err
	}
	if err := s.Initialize(); err != nil {
		return "", err
	}

	page, err := s.Page()
	if err != nil {
		return "", err
	}

	timeout := DefaultNavigationTimeout
	waitUntil := playwright.WaitUntilStateLoad
	if _, err := page.Goto(rawURL, playwright.PageGotoOptions{
		Timeout:   &timeout,
		WaitUntil: waitUntil,
	}); err != nil {
		return "", err
	}

	title, err := page.Title()
	if err != nil {
		title = ""
	}
	return title, nil
}

// CurrentURL returns the active page's URL, or an empty string before
// initialization.
func (s *Session) CurrentURL() string {
	page, err := s.Page()
	if err != nil {
		return ""
	}
	return page.URL()
}

// Click clicks the element matching the selector, waiting up to the
// action timeout for it to become actionable.
func (s *Session) Click(selector string) error {
	page, err := s.Page()
	if err != nil {
		return err
	}

	timeout := DefaultActionTimeout
	return page.Click(normalizeSelector(selector), playwright.PageClickOptions{Timeout: &timeout})
}

// Fill clears the matching input and types the text.
func (s *Session) Fill(selector, text string) error {
	page, err := s.Page()
	if err != nil {
		return err
	}

	timeout := DefaultActionTimeout
	return page.Fill(normalizeSelector(selector), text, playwright.PageFillOptions{Timeout: &timeout})
}

// Screenshot captures the current page into the screenshot directory
// and returns the stored path.
func (s *Session) Screenshot(filename string) (string, error) {
	page, err := s.Page()
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.opts.ScreenshotDir, filename)
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{Path: &path}); err != nil {
		return "", err
	}
	return path, nil
}

// WaitForSelector waits until the selector resolves on the page.
func (s *Session) WaitForSelector(selector string, timeoutMs float64) error {
	page, err := s.Page()
	if err != nil {
		return err
	}

	_, err = page.WaitForSelector(normalizeSelector(selector), playwright.PageWaitForSelectorOptions{
		Timeout: &timeoutMs,
	})
	return err
}

// WaitForText waits until the text appears anywhere in the page.
func (s *Session) WaitForText(text string, timeoutMs float64) error {
	return s.WaitForSelector("text="+text, timeoutMs)
}

// Evaluate executes a script in the page and returns its result.
func (s *Session) Evaluate(script string) (interface{}, error) {
	page, err := s.Page()
	if err != nil {
		return nil, err
	}
	return page.Evaluate(script)
}

// Content returns the full page HTML.
func (s *Session) Content() (string, error) {
	page, err := s.Page()
	if err != nil {
		return "", err
	}
	return page.Content()
}

// Title returns the current page title.
func (s *Session) Title() (string, error) {
	page, err := s.Page()
	if err != nil {
		return "", err
	}
	return page.Title()
}

// QueryElements collects attributes for up to max elements matching
// the selector.
func (s *Session) QueryElements(selector string, max int) ([]ElementInfo, error) {
	page, err := s.Page()
	if err != nil {
		return nil, err
	}

	handles, err := page.QuerySelectorAll(normalizeSelector(selector))
	if err != nil {
		return nil, err
	}
	if max > 0 && len(handles) > max {
		handles = handles[:max]
	}

	elements := make([]ElementInfo, 0, len(handles))
	for _, handle := range handles {
		var info ElementInfo

		if tag, err := handle.Evaluate("el => el.tagName.toLowerCase()"); err == nil {
			if tagStr, ok := tag.(string); ok {
				info.Tag = tagStr
			}
		}
		if text, err := handle.TextContent(); err == nil {
			info.Text = strings.TrimSpace(text)
		}
		info.Href = attribute(handle, "href")
		info.ID = attribute(handle, "id")
		info.Name = attribute(handle, "name")
		info.Class = attribute(handle, "class")
		if info.Tag == "input" {
			info.InputType = attribute(handle, "type")
		}
		info.Selector = elementSelector(info)

		elements = append(elements, info)
	}
	return elements, nil
}

// elementSelector derives the most specific stable selector for an
// element from its observed attributes.
func elementSelector(info ElementInfo) string {
	switch {
	case info.ID != "":
		return "#" + info.ID
	case info.Name != "":
		return fmt.Sprintf(`%s[name="%s"]`, info.Tag, info.Name)
	default:
		return info.Tag
	}
}

func attribute(handle playwright.ElementHandle, name string) string {
	val, err := handle.GetAttribute(name)
	if err != nil {
		return ""
	}
	return val
}

// normalizeSelector maps the three accepted selector syntaxes onto the
// driver's engines: bare XPath gets the xpath= prefix, text= and CSS
// pass through.
func normalizeSelector(selector string) string {
	if strings.HasPrefix(selector, "//") {
		return "xpath=" + selector
	}
	return selector
}
