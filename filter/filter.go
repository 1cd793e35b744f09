package filter

import (
	"maps-review-scraper/config"
	"maps-review-scraper/models"
	"maps-review-scraper/parser"
)

// Filter applies filter criteria to harvested reviews
type Filter struct {
	cfg *config.HarvestConfig
}

// NewFilter creates a new Filter instance
func NewFilter(cfg *config.HarvestConfig) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// ApplyFilters filters reviews based on the configuration
func (f *Filter) ApplyFilters(reviews []models.Review) []models.Review {
	var filtered []models.Review

	for _, review := range reviews {
		if f.matchesFilters(review) {
			filtered = append(filtered, review)
		}
	}

	return filtered
}

// matchesFilters checks if a review matches all filter criteria
func (f *Filter) matchesFilters(review models.Review) bool {
	// Check minimum text length
	if len([]rune(review.Text)) < f.cfg.Filters.MinTextLength {
		return false
	}

	// Check star rating - only filter if the rating could be parsed.
	// An unparseable or missing rating does not exclude the review.
	if f.cfg.Filters.MinStars > 0 {
		if stars, err := parser.ParseStarValue(review.Stars); err == nil && stars < f.cfg.Filters.MinStars {
			return false
		}
	}

	return true
}
