package scraper

// Page is the capability surface the harvester needs from a driven browser
// page: navigate, read the address, and query elements. The browser package
// provides the real implementation; tests use scripted fakes.
type Page interface {
	// Navigate loads the given URL, replacing the current page content.
	Navigate(url string) error
	// URL returns the page's current address.
	URL() (string, error)
	// Elements returns all elements currently matching the CSS selector.
	// No match is not an error; the slice is simply empty.
	Elements(selector string) ([]Element, error)
}

// Element is a handle into the live page. Handles are only valid until the
// next navigation or DOM replacement; the harvester re-queries instead of
// retaining them across steps.
type Element interface {
	// Text returns the element's visible text.
	Text() (string, error)
	// Attribute returns the value of the named attribute and whether the
	// attribute is present at all.
	Attribute(name string) (string, bool, error)
	// Click performs a direct click on the element.
	Click() error
	// ClickViaScript clicks the element programmatically, bypassing
	// visibility and overlay checks that can defeat a direct click.
	ClickViaScript() error
	// ScrollIntoView scrolls the page so the element is centered.
	ScrollIntoView() error
	// ScrollToBottom scrolls the element's own content to its maximum
	// extent, used on scrollable containers to trigger lazy loading.
	ScrollToBottom() error
	// Visible reports whether the element is currently displayed.
	Visible() (bool, error)
	// HTML returns the element's outer HTML.
	HTML() (string, error)
	// Elements returns the descendant elements matching the CSS selector.
	Elements(selector string) ([]Element, error)
}
