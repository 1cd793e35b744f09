package filter

import (
	"testing"

	"maps-review-scraper/config"
	"maps-review-scraper/models"
)

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name          string
		minStars      float64
		minTextLength int
		reviews       []models.Review
		want          []string
	}{
		{
			name:     "filters below minimum stars",
			minStars: 4,
			reviews: []models.Review{
				{BusinessName: "A", Stars: "5 stars", Text: "great"},
				{BusinessName: "A", Stars: "2 stars", Text: "bad"},
				{BusinessName: "A", Stars: "4 stars", Text: "good"},
			},
			want: []string{"great", "good"},
		},
		{
			name:     "unparseable rating passes the star filter",
			minStars: 4,
			reviews: []models.Review{
				{BusinessName: "A", Stars: models.NoRating, Text: "unrated"},
				{BusinessName: "A", Stars: "1 star", Text: "low"},
			},
			want: []string{"unrated"},
		},
		{
			name:          "filters short texts",
			minTextLength: 10,
			reviews: []models.Review{
				{BusinessName: "A", Stars: "5 stars", Text: "ok"},
				{BusinessName: "A", Stars: "5 stars", Text: "long enough text"},
			},
			want: []string{"long enough text"},
		},
		{
			name: "no criteria keeps everything",
			reviews: []models.Review{
				{BusinessName: "A", Stars: "1 star", Text: ""},
			},
			want: []string{""},
		},
		{
			name:     "decimal rating compared against threshold",
			minStars: 4.5,
			reviews: []models.Review{
				{BusinessName: "A", Stars: "4,5 Sterne", Text: "edge"},
				{BusinessName: "A", Stars: "4.4 stars", Text: "below"},
			},
			want: []string{"edge"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetDefaultConfig()
			cfg.Filters.MinStars = tt.minStars
			cfg.Filters.MinTextLength = tt.minTextLength

			filtered := NewFilter(cfg).ApplyFilters(tt.reviews)

			if len(filtered) != len(tt.want) {
				t.Fatalf("got %d reviews, want %d: %+v", len(filtered), len(tt.want), filtered)
			}
			for i, review := range filtered {
				if review.Text != tt.want[i] {
					t.Errorf("review %d text = %q, want %q", i, review.Text, tt.want[i])
				}
			}
		})
	}
}
