package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"maps-review-scraper/models"
)

// ReviewParser extracts review fields from a single review entry's HTML
type ReviewParser struct{}

// NewReviewParser creates a new ReviewParser instance
func NewReviewParser() *ReviewParser {
	return &ReviewParser{}
}

// Ordered sub-locators for the review body and the rating label. The first
// selector yielding a usable value wins; later entries cover older and
// alternative markup variants.
var (
	reviewTextSelectors = []string{
		"span.wiI7pd",
		"span.MyEned",
		"div.MyEned",
		"span[class*='review-text']",
	}

	starRatingSelectors = []string{
		"span.kvMYJc[role='img']",
		"span.fzvQIb",
		"span[aria-label*='star']",
		"div.fontTitleSmall span[role='img']",
	}
)

// ReviewFromEntry parses one review entry's outer HTML and returns the
// review text and rating label. ok is false when no non-empty text could be
// found; such entries are dropped by the caller. A missing rating is not an
// error and yields models.NoRating.
func (rp *ReviewParser) ReviewFromEntry(htmlContent string) (text, stars string, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", "", false
	}

	for _, selector := range reviewTextSelectors {
		candidate := strings.TrimSpace(doc.Find(selector).First().Text())
		if candidate != "" {
			text = candidate
			break
		}
	}

	if text == "" {
		return "", "", false
	}

	stars = models.NoRating
	for _, selector := range starRatingSelectors {
		label, exists := doc.Find(selector).First().Attr("aria-label")
		label = strings.TrimSpace(label)
		if exists && label != "" {
			stars = label
			break
		}
	}

	return text, stars, true
}

// starValueRegex matches the first integer or decimal number in a rating
// label such as "4 stars", "Rated 4.0 out of 5" or "5/5".
var starValueRegex = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParseStarValue converts a rating label into a numeric star value.
// Returns an error for the no-rating sentinel and for labels without a
// number.
func ParseStarValue(label string) (float64, error) {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, models.NoRating) {
		return 0, fmt.Errorf("no star value in label %q", label)
	}

	match := starValueRegex.FindString(label)
	if match == "" {
		return 0, fmt.Errorf("no star value in label %q", label)
	}

	match = strings.ReplaceAll(match, ",", ".")
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid star value %q: %w", match, err)
	}

	if value < 0 || value > 5 {
		return 0, fmt.Errorf("star value %g out of range", value)
	}

	return value, nil
}
