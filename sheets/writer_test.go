package sheets

import (
	"testing"

	"maps-review-scraper/models"
)

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"replaces invalid characters", `cafes/berlin?[*]\`, "cafes_berlin_____"},
		{"trims spaces", "  coffee shops  ", "coffee shops"},
		{"empty falls back to default", "   ", "Sheet1"},
		{"clean name unchanged", "pizza 2026-08-29", "pizza 2026-08-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeSheetName(tt.input); got != tt.want {
				t.Errorf("sanitizeSheetName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"edit url",
			"https://docs.google.com/spreadsheets/d/1AbCdEf/edit",
			"1AbCdEf",
		},
		{
			"sharing url",
			"https://docs.google.com/spreadsheets/d/1AbCdEf/edit?usp=sharing",
			"1AbCdEf",
		},
		{
			"bare id url",
			"https://docs.google.com/spreadsheets/d/1AbCdEf",
			"1AbCdEf",
		},
		{
			"not a sheets url",
			"https://example.com/whatever",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSpreadsheetID(tt.url); got != tt.want {
				t.Errorf("ExtractSpreadsheetID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestReviewRowsGroupsByBusiness(t *testing.T) {
	reviews := []models.Review{
		{BusinessName: "B", Stars: "5 stars", Text: "one"},
		{BusinessName: "A", Stars: "4 stars", Text: "two"},
		{BusinessName: "B", Stars: "3 stars", Text: "three"},
	}

	rows := reviewRows(reviews)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	// Rows for the same business stay together, first-seen order preserved
	wantOrder := []string{"B", "B", "A"}
	for i, row := range rows {
		if row[0] != wantOrder[i] {
			t.Errorf("row %d business = %v, want %s", i, row[0], wantOrder[i])
		}
	}
}
