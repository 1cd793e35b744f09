package browser

import (
	"fmt"
	"log"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"maps-review-scraper/scraper"
)

// Browser owns a headless Chrome instance and hands out pages that satisfy
// the scraper driver interfaces.
type Browser struct {
	browser *rod.Browser
}

// New launches a headless browser instance
func New() (*Browser, error) {
	// Get user data directory from environment or use default
	// This should be mounted as a volume to use disk instead of memory
	userDataDir := os.Getenv("MAPS_DATA_DIR")
	if userDataDir == "" {
		userDataDir = "/tmp/maps-data"
	}

	if err := os.MkdirAll(userDataDir, 0755); err != nil {
		log.Printf("Warning: Failed to create browser data directory %s: %v\n", userDataDir, err)
		userDataDir = ""
	}

	// Try to use system Chrome first, fallback to downloading Chromium
	launcher := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false). // Disable leakless to avoid antivirus issues
		UserDataDir(userDataDir).
		// Additional flags for Linux compatibility
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-breakpad").
		Set("disable-client-side-phishing-detection").
		Set("disable-default-apps").
		Set("disable-hang-monitor").
		Set("disable-popup-blocking").
		Set("disable-prompt-on-repost").
		Set("disable-sync").
		Set("disable-translate").
		Set("metrics-recording-only").
		Set("mute-audio").
		Set("no-zygote").
		Set("safebrowsing-disable-auto-update").
		Set("enable-automation").
		Set("use-mock-keychain").
		// Memory optimization flags
		Set("memory-pressure-off").
		Set("disable-ipc-flooding-protection").
		Set("disable-features", "TranslateUI,BlinkGenPropertyTrees").
		Set("window-size", "1920,1080").
		// English UI so label-based locators work regardless of locale
		Set("lang", "en-US")

	// Try to find Chrome in common locations (Windows)
	chromePaths := []string{
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}

	username := os.Getenv("USERNAME")
	if username != "" {
		chromePaths = append(chromePaths, `C:\Users\`+username+`\AppData\Local\Google\Chrome\Application\chrome.exe`)
	}

	// Try Linux Chrome/Chromium paths
	linuxPaths := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
	}

	if os.Getenv("PATH") != "" {
		for _, path := range linuxPaths {
			if _, err := os.Stat(path); err == nil {
				launcher = launcher.Bin(path)
				break
			}
		}
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			launcher = launcher.Bin(path)
			break
		}
	}

	browserURL, err := launcher.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w\n\nNote: On Linux, you may need to install Chromium dependencies:\n  apt-get update && apt-get install -y chromium chromium-sandbox || yum install -y chromium", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{
		browser: browser,
	}, nil
}

// Close closes the browser
func (b *Browser) Close() error {
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}

// NewPage opens a fresh tab wrapped in the scraper driver interface.
// Callers should close it via ClosePage when done.
func (b *Browser) NewPage() (scraper.Page, error) {
	// Create a new page (use MustPage with panic recovery)
	var page *rod.Page
	var pageErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				pageErr = fmt.Errorf("panic while creating page: %v", r)
				log.Printf("Panic while creating page: %v\n", r)
			}
		}()
		page = b.browser.MustPage()
	}()
	if pageErr != nil {
		return nil, pageErr
	}
	if page == nil {
		return nil, fmt.Errorf("failed to create page")
	}

	return &rodPage{page: page}, nil
}

// ClosePage releases the tab behind a page handed out by NewPage.
func (b *Browser) ClosePage(p scraper.Page) {
	rp, ok := p.(*rodPage)
	if !ok || rp.page == nil {
		return
	}
	if err := rp.page.Close(); err != nil {
		log.Printf("Warning: failed to close page: %v\n", err)
	}
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(url string) error {
	if err := p.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	if err := p.page.WaitLoad(); err != nil {
		log.Printf("Warning: page did not finish loading, continuing anyway: %v\n", err)
	}
	return nil
}

func (p *rodPage) URL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

func (p *rodPage) Elements(selector string) ([]scraper.Element, error) {
	found, err := p.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	return wrapElements(found), nil
}

type rodElement struct {
	el *rod.Element
}

func wrapElements(found rod.Elements) []scraper.Element {
	elements := make([]scraper.Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, &rodElement{el: el})
	}
	return elements
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	value, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

// ClickViaScript dispatches a DOM click, which works on controls the mouse
// path considers obscured.
func (e *rodElement) ClickViaScript() error {
	_, err := e.el.Eval("() => this.click()")
	return err
}

func (e *rodElement) ScrollIntoView() error {
	return e.el.ScrollIntoView()
}

// ScrollToBottom moves the element's own scroll position to its maximum
// extent, which is what triggers lazy loading inside the reviews pane.
func (e *rodElement) ScrollToBottom() error {
	_, err := e.el.Eval("() => { this.scrollTop = this.scrollHeight }")
	return err
}

func (e *rodElement) Visible() (bool, error) {
	return e.el.Visible()
}

func (e *rodElement) HTML() (string, error) {
	return e.el.HTML()
}

func (e *rodElement) Elements(selector string) ([]scraper.Element, error) {
	found, err := e.el.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	return wrapElements(found), nil
}
