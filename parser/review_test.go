package parser

import (
	"testing"

	"maps-review-scraper/models"
)

func TestReviewFromEntry(t *testing.T) {
	rp := NewReviewParser()

	tests := []struct {
		name      string
		html      string
		wantText  string
		wantStars string
		wantOK    bool
	}{
		{
			name: "primary text and rating selectors",
			html: `<div class="jftiEf">
				<span class="kvMYJc" role="img" aria-label="5 stars"></span>
				<span class="wiI7pd">Great ramen, broth was rich.</span>
			</div>`,
			wantText:  "Great ramen, broth was rich.",
			wantStars: "5 stars",
			wantOK:    true,
		},
		{
			name: "fallback text selector",
			html: `<div class="jftiEf">
				<span class="MyEned">Decent food but slow service.</span>
			</div>`,
			wantText:  "Decent food but slow service.",
			wantStars: models.NoRating,
			wantOK:    true,
		},
		{
			name:      "div variant of text selector",
			html:      `<div><div class="MyEned">Hidden gem.</div></div>`,
			wantText:  "Hidden gem.",
			wantStars: models.NoRating,
			wantOK:    true,
		},
		{
			name:      "class-pattern text selector",
			html:      `<div><span class="gm-review-text-full">Loved it.</span></div>`,
			wantText:  "Loved it.",
			wantStars: models.NoRating,
			wantOK:    true,
		},
		{
			name: "aria-label rating fallback",
			html: `<div>
				<span aria-label="Rated 4.0 out of 5 stars"></span>
				<span class="wiI7pd">Solid choice.</span>
			</div>`,
			wantText:  "Solid choice.",
			wantStars: "Rated 4.0 out of 5 stars",
			wantOK:    true,
		},
		{
			name: "nested title rating fallback",
			html: `<div>
				<div class="fontTitleSmall"><span role="img" aria-label="3/5"></span></div>
				<span class="wiI7pd">It was fine.</span>
			</div>`,
			wantText:  "It was fine.",
			wantStars: "3/5",
			wantOK:    true,
		},
		{
			name: "rating without text is dropped",
			html: `<div>
				<span class="kvMYJc" role="img" aria-label="2 stars"></span>
			</div>`,
			wantOK: false,
		},
		{
			name:   "whitespace-only text is dropped",
			html:   `<div><span class="wiI7pd">   </span></div>`,
			wantOK: false,
		},
		{
			name:   "empty entry",
			html:   `<div class="jftiEf"></div>`,
			wantOK: false,
		},
		{
			name: "rating element without aria-label falls through",
			html: `<div>
				<span class="kvMYJc" role="img"></span>
				<span class="fzvQIb" aria-label="4 stars"></span>
				<span class="wiI7pd">Good portions.</span>
			</div>`,
			wantText:  "Good portions.",
			wantStars: "4 stars",
			wantOK:    true,
		},
		{
			name: "first non-empty text wins over later selectors",
			html: `<div>
				<span class="wiI7pd">Primary body.</span>
				<span class="MyEned">Secondary body.</span>
			</div>`,
			wantText:  "Primary body.",
			wantStars: models.NoRating,
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, stars, ok := rp.ReviewFromEntry(tt.html)
			if ok != tt.wantOK {
				t.Fatalf("ReviewFromEntry() ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if text != tt.wantText {
				t.Errorf("ReviewFromEntry() text = %q, want %q", text, tt.wantText)
			}
			if stars != tt.wantStars {
				t.Errorf("ReviewFromEntry() stars = %q, want %q", stars, tt.wantStars)
			}
		})
	}
}

func TestParseStarValue(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected float64
		wantErr  bool
	}{
		{"plain stars", "5 stars", 5, false},
		{"single star", "1 star", 1, false},
		{"decimal", "Rated 4.0 out of 5", 4.0, false},
		{"comma decimal", "4,5 Sterne", 4.5, false},
		{"slash form", "3/5", 3, false},
		{"leading text", "Rating: 2 stars", 2, false},
		{"no rating sentinel", models.NoRating, 0, true},
		{"empty", "", 0, true},
		{"no number", "stars", 0, true},
		{"out of range", "42 stars", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStarValue(tt.label)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStarValue(%q) error = %v, wantErr %v", tt.label, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseStarValue(%q) = %g, want %g", tt.label, got, tt.expected)
			}
		})
	}
}
