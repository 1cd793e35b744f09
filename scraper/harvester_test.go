package scraper

import (
	"fmt"
	"testing"
	"time"

	"maps-review-scraper/models"
)

type fakeElement struct {
	text     string
	attrs    map[string]string
	html     string
	children map[string][]Element
	onClick  func() error
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(name string) (string, bool, error) {
	value, ok := e.attrs[name]
	return value, ok, nil
}

func (e *fakeElement) Click() error {
	if e.onClick != nil {
		return e.onClick()
	}
	return nil
}

func (e *fakeElement) ClickViaScript() error  { return e.Click() }
func (e *fakeElement) ScrollIntoView() error  { return nil }
func (e *fakeElement) ScrollToBottom() error  { return nil }
func (e *fakeElement) Visible() (bool, error) { return true, nil }
func (e *fakeElement) HTML() (string, error)  { return e.html, nil }

func (e *fakeElement) Elements(selector string) ([]Element, error) {
	return e.children[selector], nil
}

type fakeView struct {
	elements map[string][]Element
}

type fakePage struct {
	url         string
	view        *fakeView
	navigations int
	onNavigate  func(url string)
}

func (p *fakePage) Navigate(url string) error {
	p.url = url
	p.navigations++
	if p.onNavigate != nil {
		p.onNavigate(url)
	}
	return nil
}

func (p *fakePage) URL() (string, error) { return p.url, nil }

func (p *fakePage) Elements(selector string) ([]Element, error) {
	if p.view == nil {
		return nil, nil
	}
	return p.view.elements[selector], nil
}

type fakeReview struct {
	text  string
	stars string
}

type fakeBusiness struct {
	name    string
	reviews []fakeReview
	unnamed bool
	noTab   bool
}

func entryHTML(text, stars string) string {
	return fmt.Sprintf(
		`<div class="jJc9Ad"><span class="wiI7pd">%s</span><span class="kvMYJc" role="img" aria-label="%s"></span></div>`,
		text, stars)
}

// buildSite wires a results view whose listing links switch the page to the
// matching detail view, and whose detail views carry heading, reviews tab,
// scrollable pane and review entries.
func buildSite(page *fakePage, businesses []fakeBusiness) *fakeView {
	results := &fakeView{elements: map[string][]Element{}}

	for _, business := range businesses {
		detail := &fakeView{elements: map[string][]Element{}}

		detail.elements["h1"] = []Element{&fakeElement{text: business.name}}
		if !business.noTab {
			detail.elements[ReviewsTabRoleSelector] = []Element{&fakeElement{text: "Reviews"}}
		}
		detail.elements[scrollablePaneSelectors[0]] = []Element{&fakeElement{}}

		entries := make([]Element, 0, len(business.reviews))
		for _, review := range business.reviews {
			entries = append(entries, &fakeElement{html: entryHTML(review.text, review.stars)})
		}
		detail.elements[reviewEntrySelectors[0]] = entries

		link := &fakeElement{onClick: func() error {
			page.view = detail
			page.url = "https://www.google.com/maps/place/detail"
			return nil
		}}

		listing := &fakeElement{
			attrs:    map[string]string{"aria-label": business.name},
			children: map[string][]Element{ListingLinkSelector: {link}},
		}
		if business.unnamed {
			listing.attrs = nil
		}
		results.elements[BusinessListingSelector] = append(
			results.elements[BusinessListingSelector], listing)
	}

	page.onNavigate = func(string) { page.view = results }
	return results
}

func newTestHarvester(page *fakePage) *Harvester {
	h := NewHarvester(page)
	h.waitTimeout = 20 * time.Millisecond
	h.pollInterval = time.Millisecond
	h.sleep = func(time.Duration) {}
	return h
}

func TestHarvestCollectsReviews(t *testing.T) {
	page := &fakePage{}
	results := buildSite(page, []fakeBusiness{
		{name: "Cafe Uno", reviews: []fakeReview{
			{text: "Great coffee", stars: "5 stars"},
			{text: "Cozy place", stars: "4 stars"},
		}},
		{name: "Cafe Due", reviews: []fakeReview{
			{text: "Decent espresso", stars: "3 stars"},
		}},
	})

	consentClicked := false
	results.elements[ConsentRejectSelector] = []Element{&fakeElement{onClick: func() error {
		consentClicked = true
		return nil
	}}}

	reviews, err := newTestHarvester(page).Harvest("cafes in Berlin", 2, 2)
	if err != nil {
		t.Fatalf("Harvest() error = %v", err)
	}
	if !consentClicked {
		t.Error("expected consent dialog to be dismissed")
	}

	want := []models.Review{
		{BusinessName: "Cafe Uno", Stars: "5 stars", Text: "Great coffee"},
		{BusinessName: "Cafe Uno", Stars: "4 stars", Text: "Cozy place"},
		{BusinessName: "Cafe Due", Stars: "3 stars", Text: "Decent espresso"},
	}
	if len(reviews) != len(want) {
		t.Fatalf("got %d reviews, want %d: %+v", len(reviews), len(want), reviews)
	}
	for i, review := range reviews {
		if review != want[i] {
			t.Errorf("review %d = %+v, want %+v", i, review, want[i])
		}
	}
}

func TestHarvestNoListings(t *testing.T) {
	page := &fakePage{}
	empty := &fakeView{elements: map[string][]Element{}}
	page.onNavigate = func(string) { page.view = empty }

	reviews, err := newTestHarvester(page).Harvest("nothing here", 3, 5)
	if err != nil {
		t.Fatalf("Harvest() error = %v", err)
	}
	if len(reviews) != 0 {
		t.Errorf("got %d reviews, want none", len(reviews))
	}
}

func TestHarvestSkipsUnnamedListing(t *testing.T) {
	page := &fakePage{}
	buildSite(page, []fakeBusiness{
		{name: "Named One", reviews: []fakeReview{{text: "Good", stars: "4 stars"}}},
		{name: "ignored", unnamed: true},
		{name: "Named Two", reviews: []fakeReview{{text: "Fine", stars: "3 stars"}}},
	})

	reviews, err := newTestHarvester(page).Harvest("query", 3, 1)
	if err != nil {
		t.Fatalf("Harvest() error = %v", err)
	}

	names := map[string]bool{}
	for _, review := range reviews {
		names[review.BusinessName] = true
	}
	if !names["Named One"] || !names["Named Two"] {
		t.Errorf("expected reviews from both named businesses, got %+v", reviews)
	}
	if len(reviews) != 2 {
		t.Errorf("got %d reviews, want 2", len(reviews))
	}

	// A silent skip goes straight to the next candidate: one initial
	// navigation plus one return per processed business.
	if page.navigations != 3 {
		t.Errorf("got %d navigations, want 3", page.navigations)
	}
}

func TestHarvestRecoversFromMissingReviewsTab(t *testing.T) {
	page := &fakePage{}
	buildSite(page, []fakeBusiness{
		{name: "Broken", noTab: true},
		{name: "Working", reviews: []fakeReview{{text: "Solid", stars: "4 stars"}}},
	})

	reviews, err := newTestHarvester(page).Harvest("query", 2, 1)
	if err != nil {
		t.Fatalf("Harvest() error = %v", err)
	}
	if len(reviews) != 1 || reviews[0].BusinessName != "Working" {
		t.Fatalf("expected one review from the second business, got %+v", reviews)
	}
}

func TestHarvestKeepsPartialResultsWhenRecoveryFails(t *testing.T) {
	page := &fakePage{}
	results := buildSite(page, []fakeBusiness{
		{name: "First", reviews: []fakeReview{
			{text: "Lovely", stars: "5 stars"},
			{text: "Would return", stars: "5 stars"},
		}},
		{name: "Broken", noTab: true},
		{name: "Never reached", reviews: []fakeReview{{text: "Unseen", stars: "1 star"}}},
	})

	// The recovery navigation after the broken business lands on a page
	// where listings never reappear.
	empty := &fakeView{elements: map[string][]Element{}}
	page.onNavigate = func(string) {
		if page.navigations >= 3 {
			page.view = empty
			return
		}
		page.view = results
	}

	reviews, err := newTestHarvester(page).Harvest("query", 3, 2)
	if err != nil {
		t.Fatalf("Harvest() error = %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("got %d reviews, want the 2 collected before the abort: %+v", len(reviews), reviews)
	}
	for _, review := range reviews {
		if review.BusinessName != "First" {
			t.Errorf("unexpected review after abort: %+v", review)
		}
	}
}

func TestHarvestCumulativeQuota(t *testing.T) {
	page := &fakePage{}
	buildSite(page, []fakeBusiness{
		{name: "Sparse", reviews: []fakeReview{{text: "Only one", stars: "4 stars"}}},
		{name: "Plenty", reviews: []fakeReview{
			{text: "One", stars: "5 stars"},
			{text: "Two", stars: "5 stars"},
			{text: "Three", stars: "5 stars"},
			{text: "Four", stars: "5 stars"},
		}},
	})

	reviews, err := newTestHarvester(page).Harvest("query", 2, 2)
	if err != nil {
		t.Fatalf("Harvest() error = %v", err)
	}

	// The second business may fill the slot the first one left unused, but
	// the overall total stays bounded by businesses times reviews.
	if len(reviews) != 4 {
		t.Fatalf("got %d reviews, want 4: %+v", len(reviews), reviews)
	}
	perBusiness := map[string]int{}
	for _, review := range reviews {
		perBusiness[review.BusinessName]++
	}
	if perBusiness["Sparse"] != 1 || perBusiness["Plenty"] != 3 {
		t.Errorf("unexpected distribution: %+v", perBusiness)
	}
}

func TestHarvestExpandsTruncatedReviews(t *testing.T) {
	page := &fakePage{}
	buildSite(page, []fakeBusiness{
		{name: "Wordy", reviews: []fakeReview{{text: "short", stars: "5 stars"}}},
	})

	// Reach into the detail view via the listing link, then attach an
	// expansion control that rewrites the entry body.
	page.Navigate("https://www.google.com/maps/search/seed")
	resultsView := page.view
	listing := page.view.elements[BusinessListingSelector][0].(*fakeElement)
	listing.children[ListingLinkSelector][0].Click()
	detail := page.view

	entry := detail.elements[reviewEntrySelectors[0]][0].(*fakeElement)
	detail.elements[expandButtonSelectors[0]] = []Element{&fakeElement{
		text: "More",
		onClick: func() error {
			entry.html = entryHTML("short text now fully expanded", "5 stars")
			return nil
		},
	}}
	page.view = resultsView
	page.navigations = 0

	reviews, err := newTestHarvester(page).Harvest("query", 1, 1)
	if err != nil {
		t.Fatalf("Harvest() error = %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(reviews))
	}
	if reviews[0].Text != "short text now fully expanded" {
		t.Errorf("got text %q, want the expanded body", reviews[0].Text)
	}
}

func TestWaitUntil(t *testing.T) {
	calls := 0
	ok := waitUntil(20*time.Millisecond, time.Millisecond, func() bool {
		calls++
		return calls >= 3
	})
	if !ok {
		t.Error("expected condition to be met within the timeout")
	}

	if waitUntil(5*time.Millisecond, time.Millisecond, func() bool { return false }) {
		t.Error("expected timeout for a condition that never holds")
	}
}
