package scraper

// CSS selectors used across the harvester.
// Centralising them makes future updates trivial: when Maps ships new
// markup, the ordered fallback lists below are the only place to touch.
const (
	// Search results sidebar
	ConsentRejectSelector       = "button[aria-label='Reject all']"
	BusinessListingSelector     = "div[role='article']"
	ListingLinkSelector         = "a.hfpxzc"
	ListingNameFallbackSelector = "div[aria-label*='Business name']"

	// Reviews tab locator strategies, tried in order
	ReviewsTabRoleSelector      = "button[role='tab']"
	ReviewsTabAttributeSelector = "button[aria-label*='Reviews']"
	ReviewsTabLabel             = "Reviews"

	// Last-resort scrollable container
	FallbackPaneSelector = "div.m6QErb"
)

// Ordered fallback locator lists. First match wins; exhaustion is a typed
// miss the caller turns into a skip or a per-candidate failure.
var (
	// Detail-view heading candidates, most specific markup first
	headingSelectors = []string{
		"h1",
		"h1.DUwDvf",
		"div.fontHeadlineLarge",
	}

	// Heading values that mean the detail view has not actually loaded
	placeholderHeadings = map[string]bool{
		"Results": true,
		"Search":  true,
	}

	// Scrollable reviews pane candidates
	scrollablePaneSelectors = []string{
		"div.m6QErb[role='main']",
		"div.m6QErb.DxyBCb.kA9KIf.dS8AEf",
		"div[aria-label*='Reviews']",
		"div.m6QErb",
	}

	// Review entry container patterns; the first one matching anything on
	// the page is adopted for the rest of the candidate's extraction
	reviewEntrySelectors = []string{
		"div.jJc9Ad",
		"div.jftiEf",
		"div[data-review-id]",
		"div.fontBodyMedium",
	}

	// "More" controls that expand truncated review bodies
	expandButtonSelectors = []string{
		"button.w8nwRe.kyuRq",
		"button[aria-label='See more']",
		"button[jsaction*='review.expand']",
		"button.fontBodySmall",
		"button[class*='review'][class*='expand']",
	}
)
