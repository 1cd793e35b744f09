package scraper

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"maps-review-scraper/mapsurl"
	"maps-review-scraper/models"
	"maps-review-scraper/parser"
)

const (
	defaultWaitTimeout  = 10 * time.Second
	defaultPollInterval = 500 * time.Millisecond

	// Fixed pauses after state-changing actions, to let asynchronous page
	// updates land before the next step
	consentSettle      = 1 * time.Second
	detailLoadSettle   = 3 * time.Second
	reviewsTabSettle   = 2 * time.Second
	scrollSettle       = 2 * time.Second
	resultsSettle      = 2 * time.Second
	expandScrollSettle = 300 * time.Millisecond
	expandClickSettle  = 200 * time.Millisecond
	expandFinalSettle  = 1 * time.Second

	urlCheckAttempts  = 5
	urlCheckInterval  = 1 * time.Second
	maxScrollAttempts = 10
)

// errSkipCandidate marks step-level misses (missing name, shrunken listing
// set, no matching review container) that skip the current candidate
// without going through the recovery path.
var errSkipCandidate = errors.New("candidate skipped")

// Harvester drives a live Maps page through search, per-business navigation
// and review extraction. It owns the page exclusively for the duration of a
// run; all element handles are re-queried after every navigation.
type Harvester struct {
	page    Page
	reviews *parser.ReviewParser

	waitTimeout  time.Duration
	pollInterval time.Duration
	sleep        func(time.Duration)
}

// NewHarvester creates a Harvester driving the given page
func NewHarvester(page Page) *Harvester {
	return &Harvester{
		page:         page,
		reviews:      parser.NewReviewParser(),
		waitTimeout:  defaultWaitTimeout,
		pollInterval: defaultPollInterval,
		sleep:        time.Sleep,
	}
}

// Harvest scrapes up to reviewsPerBusiness reviews for each of the first
// maxBusinesses results of the search query. Per-candidate failures trigger
// a return to the results view and the next candidate; if that recovery
// itself times out, the run ends early and whatever was accumulated so far
// is returned. Zero search results is a normal empty outcome, not an error.
func (h *Harvester) Harvest(query string, maxBusinesses, reviewsPerBusiness int) ([]models.Review, error) {
	if maxBusinesses <= 0 {
		maxBusinesses = 5
	}
	if reviewsPerBusiness <= 0 {
		reviewsPerBusiness = 20
	}

	searchURL := mapsurl.SearchURL(query)
	if err := h.page.Navigate(searchURL); err != nil {
		return nil, fmt.Errorf("failed to open search results: %w", err)
	}
	log.Printf("Navigated to: %s\n", searchURL)

	h.dismissConsent()

	listingCount, ok := h.waitForListings()
	if !ok {
		log.Println("Could not find any business listings. The page structure may have changed.")
		return []models.Review{}, nil
	}
	log.Printf("Found %d businesses in the sidebar.\n", listingCount)

	allReviews := []models.Review{}

	limit := listingCount
	if maxBusinesses < limit {
		limit = maxBusinesses
	}

	for i := 0; i < limit; i++ {
		err := h.harvestBusiness(searchURL, i, reviewsPerBusiness, &allReviews)
		if err == nil {
			continue
		}
		if errors.Is(err, errSkipCandidate) {
			continue
		}

		log.Printf("Could not process business at index %d: %v\n", i, err)
		log.Println("Attempting to return to search results to recover...")
		if rerr := h.returnToResults(searchURL); rerr != nil {
			log.Printf("Failed to return to search results page. Aborting further processing: %v\n", rerr)
			break
		}
	}

	if maxRecords := maxBusinesses * reviewsPerBusiness; len(allReviews) > maxRecords {
		allReviews = allReviews[:maxRecords]
	}

	return allReviews, nil
}

// harvestBusiness processes the candidate at index i: open its detail view,
// activate the reviews tab, load and expand reviews, extract records into
// acc, and navigate back to the results view. Records already appended stay
// in acc even when a later step fails.
func (h *Harvester) harvestBusiness(searchURL string, i, reviewsPerBusiness int, acc *[]models.Review) error {
	// Cumulative cap: candidate i may fill the quota slots left over by
	// earlier candidates. The overall run is still bounded by the final
	// slice cap in Harvest.
	quota := (i + 1) * reviewsPerBusiness

	// Re-resolve the listing set; handles from the previous iteration are
	// stale after navigating back.
	listings, err := h.page.Elements(BusinessListingSelector)
	if err != nil {
		return fmt.Errorf("failed to query business listings: %w", err)
	}
	if i >= len(listings) {
		log.Printf("Skipping index %d as it's out of bounds for current listings.\n", i)
		return errSkipCandidate
	}
	listing := listings[i]

	sidebarName := h.listingName(listing)
	if sidebarName == "" {
		log.Printf("Skipping business at index %d due to missing name in sidebar.\n", i)
		return errSkipCandidate
	}
	log.Printf("Processing business %d: %s\n", i+1, sidebarName)

	links, err := listing.Elements(ListingLinkSelector)
	if err != nil {
		return fmt.Errorf("failed to query listing link: %w", err)
	}
	if len(links) == 0 {
		return fmt.Errorf("listing link not found for %q", sidebarName)
	}
	if err := links[0].Click(); err != nil {
		return fmt.Errorf("failed to open business details: %w", err)
	}

	h.sleep(detailLoadSettle)
	h.confirmDetailView()

	businessName := h.detailHeading()
	if businessName == "" {
		if current, err := h.page.URL(); err == nil {
			businessName = mapsurl.ExtractPlaceName(current)
		}
	}
	if businessName == "" {
		log.Println("Warning: Could not find business name heading, continuing anyway...")
		businessName = sidebarName
	}
	log.Printf("Using business name: %s\n", businessName)

	h.sleep(reviewsTabSettle)
	tab, ok := h.findReviewsTab()
	if !ok {
		return fmt.Errorf("reviews tab not found for %q", businessName)
	}
	if err := tab.Click(); err != nil {
		return fmt.Errorf("failed to open reviews tab: %w", err)
	}
	h.sleep(reviewsTabSettle)

	pane, err := h.findScrollablePane()
	if err != nil {
		return err
	}

	entrySelector, ok := h.adoptEntrySelector()
	if !ok {
		log.Printf("Could not find any review containers for %s\n", businessName)
		return errSkipCandidate
	}

	if err := h.loadReviews(pane, entrySelector, reviewsPerBusiness, businessName); err != nil {
		return err
	}

	h.expandTruncated()
	h.extractReviews(entrySelector, businessName, quota, acc)

	log.Println("Navigating back to search results to process next business...")
	return h.returnToResults(searchURL)
}

// dismissConsent clicks the cookie-consent reject button if one shows up
// within the wait budget. Absence of the dialog is the normal case.
func (h *Harvester) dismissConsent() {
	var button Element
	found := waitUntil(h.waitTimeout, h.pollInterval, func() bool {
		buttons, err := h.page.Elements(ConsentRejectSelector)
		if err != nil || len(buttons) == 0 {
			return false
		}
		button = buttons[0]
		return true
	})
	if !found {
		log.Println("Cookie consent dialog not found, proceeding...")
		return
	}

	if err := button.Click(); err != nil {
		log.Printf("Warning: failed to dismiss cookie consent dialog: %v\n", err)
		return
	}
	log.Println("Clicked 'Reject all' on cookie consent dialog.")
	h.sleep(consentSettle)
}

// waitForListings waits for at least one business entry to appear in the
// results view and returns how many were found.
func (h *Harvester) waitForListings() (int, bool) {
	log.Println("Finding business listings in the sidebar...")
	count := 0
	found := waitUntil(h.waitTimeout, h.pollInterval, func() bool {
		count = h.entryCount(BusinessListingSelector)
		return count > 0
	})
	return count, found
}

// listingName resolves a candidate's display name from the sidebar entry:
// the aria-label first, then a named sub-element. Empty means unresolvable.
func (h *Harvester) listingName(listing Element) string {
	if name, ok, err := listing.Attribute("aria-label"); err == nil && ok && name != "" {
		return name
	}

	nested, err := listing.Elements(ListingNameFallbackSelector)
	if err != nil || len(nested) == 0 {
		return ""
	}
	if name, ok, err := nested[0].Attribute("aria-label"); err == nil && ok {
		return name
	}
	return ""
}

// confirmDetailView polls the current address for detail-view markers.
// Best effort: after the attempt budget it logs a warning and proceeds.
func (h *Harvester) confirmDetailView() {
	for attempt := 0; attempt < urlCheckAttempts; attempt++ {
		current, err := h.page.URL()
		if err == nil && mapsurl.IsDetailURL(current) {
			log.Println("Successfully navigated to business page")
			return
		}
		h.sleep(urlCheckInterval)
	}

	current, _ := h.page.URL()
	log.Printf("Warning: URL doesn't look like a business page: %s\n", current)
}

// detailHeading reads the business name from the loaded detail view,
// rejecting placeholder values left over from the results view.
func (h *Harvester) detailHeading() string {
	for _, selector := range headingSelectors {
		headings, err := h.page.Elements(selector)
		if err != nil {
			continue
		}
		for _, heading := range headings {
			text, err := heading.Text()
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if text == "" || placeholderHeadings[text] {
				continue
			}
			log.Printf("Found business name: %s\n", text)
			return text
		}
	}
	return ""
}

// findReviewsTab tries the tab locator strategies in priority order, each
// with its own bounded wait: visible label on role=tab buttons, then an
// aria-label match, then nested span text on any button.
func (h *Harvester) findReviewsTab() (Element, bool) {
	strategies := []func() (Element, bool){
		h.reviewsTabByLabel,
		h.reviewsTabByAttribute,
		h.reviewsTabByNestedText,
	}

	for _, strategy := range strategies {
		var tab Element
		found := waitUntil(h.waitTimeout, h.pollInterval, func() bool {
			candidate, ok := strategy()
			if !ok {
				return false
			}
			tab = candidate
			return true
		})
		if found {
			return tab, true
		}
	}
	return nil, false
}

func (h *Harvester) reviewsTabByLabel() (Element, bool) {
	tabs, err := h.page.Elements(ReviewsTabRoleSelector)
	if err != nil {
		return nil, false
	}
	for _, tab := range tabs {
		text, err := tab.Text()
		if err == nil && strings.Contains(text, ReviewsTabLabel) {
			return tab, true
		}
	}
	return nil, false
}

func (h *Harvester) reviewsTabByAttribute() (Element, bool) {
	matches, err := h.page.Elements(ReviewsTabAttributeSelector)
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

func (h *Harvester) reviewsTabByNestedText() (Element, bool) {
	buttons, err := h.page.Elements("button")
	if err != nil {
		return nil, false
	}
	for _, button := range buttons {
		spans, err := button.Elements("span")
		if err != nil {
			continue
		}
		for _, span := range spans {
			text, err := span.Text()
			if err == nil && strings.Contains(text, ReviewsTabLabel) {
				return button, true
			}
		}
	}
	return nil, false
}

// findScrollablePane locates the container holding the reviews list, ending
// with a generic last-resort locator.
func (h *Harvester) findScrollablePane() (Element, error) {
	for _, selector := range scrollablePaneSelectors {
		panes, err := h.page.Elements(selector)
		if err == nil && len(panes) > 0 {
			return panes[0], nil
		}
	}

	log.Println("Using fallback scrollable element")
	panes, err := h.page.Elements(FallbackPaneSelector)
	if err != nil || len(panes) == 0 {
		return nil, fmt.Errorf("no scrollable reviews pane found")
	}
	return panes[0], nil
}

// adoptEntrySelector picks the first review-entry pattern currently
// matching anything on the page. The adopted pattern is used for the rest
// of this candidate's extraction.
func (h *Harvester) adoptEntrySelector() (string, bool) {
	for _, selector := range reviewEntrySelectors {
		if h.entryCount(selector) > 0 {
			log.Printf("Using review container selector: %s\n", selector)
			return selector, true
		}
	}
	return "", false
}

// loadReviews scrolls the pane to its maximum extent until enough entries
// are loaded, the scroll budget is spent, or a scroll brings no new
// entries.
func (h *Harvester) loadReviews(pane Element, entrySelector string, reviewsPerBusiness int, businessName string) error {
	for attempt := 0; attempt < maxScrollAttempts; attempt++ {
		current := h.entryCount(entrySelector)
		if current >= reviewsPerBusiness {
			break
		}
		log.Printf("Found %d reviews so far for %s...\n", current, businessName)

		if err := pane.ScrollToBottom(); err != nil {
			return fmt.Errorf("failed to scroll reviews pane: %w", err)
		}
		h.sleep(scrollSettle)

		if h.entryCount(entrySelector) == current {
			log.Println("Reached the end of reviews for this business or no new reviews loaded.")
			break
		}
	}
	return nil
}

// expandTruncated clicks every "more" control so review bodies are complete
// before extraction. Individual failures are ignored; an already-expanded
// entry simply has no matching control left, so re-running is harmless.
func (h *Harvester) expandTruncated() {
	log.Println("Expanding truncated reviews to get full text...")

	expanded := 0
	for _, selector := range expandButtonSelectors {
		buttons, err := h.page.Elements(selector)
		if err != nil {
			continue
		}
		for _, button := range buttons {
			if !h.isMoreControl(button) {
				continue
			}
			if err := button.ScrollIntoView(); err != nil {
				continue
			}
			h.sleep(expandScrollSettle)

			if err := button.Click(); err != nil {
				if err := button.ClickViaScript(); err != nil {
					continue
				}
			}
			expanded++
			h.sleep(expandClickSettle)
		}
	}

	log.Printf("Expanded %d truncated reviews\n", expanded)
	h.sleep(expandFinalSettle)
}

// isMoreControl reports whether a button is an expansion control, by a
// case-insensitive "more" token in its text or accessible label.
func (h *Harvester) isMoreControl(button Element) bool {
	if text, err := button.Text(); err == nil && strings.Contains(strings.ToLower(text), "more") {
		return true
	}
	if label, ok, err := button.Attribute("aria-label"); err == nil && ok &&
		strings.Contains(strings.ToLower(label), "more") {
		return true
	}
	return false
}

// extractReviews reads text and rating from each loaded entry in document
// order, appending records to acc until the cumulative quota is reached.
// Entries without readable text are dropped.
func (h *Harvester) extractReviews(entrySelector, businessName string, quota int, acc *[]models.Review) {
	entries, err := h.page.Elements(entrySelector)
	if err != nil {
		log.Printf("Warning: failed to re-query review entries: %v\n", err)
		return
	}
	log.Printf("Attempting to extract from %d review elements...\n", len(entries))

	for _, entry := range entries {
		if len(*acc) >= quota {
			break
		}

		html, err := entry.HTML()
		if err != nil {
			continue
		}
		text, stars, ok := h.reviews.ReviewFromEntry(html)
		if !ok {
			continue
		}

		*acc = append(*acc, models.Review{
			BusinessName: businessName,
			Stars:        stars,
			Text:         text,
		})
		log.Printf("Extracted review %d: %s\n", len(*acc), snippet(text, 100))
	}
}

// returnToResults reloads the search results and waits for listings to
// reappear. A timeout here is escalated to a run abort by the caller.
func (h *Harvester) returnToResults(searchURL string) error {
	if err := h.page.Navigate(searchURL); err != nil {
		return fmt.Errorf("failed to navigate back to search results: %w", err)
	}

	ok := waitUntil(h.waitTimeout, h.pollInterval, func() bool {
		return h.entryCount(BusinessListingSelector) > 0
	})
	if !ok {
		return fmt.Errorf("business listings did not reappear within %s", h.waitTimeout)
	}

	h.sleep(resultsSettle)
	return nil
}

// entryCount returns how many elements currently match the selector.
func (h *Harvester) entryCount(selector string) int {
	elements, err := h.page.Elements(selector)
	if err != nil {
		return 0
	}
	return len(elements)
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
