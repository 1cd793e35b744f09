package models

// NoRating is the stars value recorded when a review carries no readable
// rating label.
const NoRating = "No rating"

// Review represents a single scraped business review
type Review struct {
	BusinessName string `json:"business_name"`
	Stars        string `json:"stars"`
	Text         string `json:"text"`
}

// BusinessReviews groups the reviews of one business, preserving the order
// in which the business was processed
type BusinessReviews struct {
	BusinessName string   `json:"business_name"`
	Reviews      []Review `json:"reviews"`
}

// Summary describes the outcome of one harvest run
type Summary struct {
	BusinessCount int `json:"business_count"`
	ReviewCount   int `json:"review_count"`
	RatedCount    int `json:"rated_count"`
}

// Summarize computes run totals over a set of harvested reviews
func Summarize(reviews []Review) Summary {
	summary := Summary{ReviewCount: len(reviews)}

	seen := make(map[string]bool)
	for _, review := range reviews {
		if !seen[review.BusinessName] {
			seen[review.BusinessName] = true
			summary.BusinessCount++
		}
		if review.Stars != NoRating {
			summary.RatedCount++
		}
	}

	return summary
}

// GroupByBusiness groups reviews by business name, keeping businesses in
// first-seen order and reviews in extraction order
func GroupByBusiness(reviews []Review) []BusinessReviews {
	var grouped []BusinessReviews
	index := make(map[string]int)

	for _, review := range reviews {
		pos, ok := index[review.BusinessName]
		if !ok {
			pos = len(grouped)
			index[review.BusinessName] = pos
			grouped = append(grouped, BusinessReviews{BusinessName: review.BusinessName})
		}
		grouped[pos].Reviews = append(grouped[pos].Reviews, review)
	}

	return grouped
}
