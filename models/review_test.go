package models

import "testing"

func TestGroupByBusiness(t *testing.T) {
	reviews := []Review{
		{BusinessName: "Cafe Uno", Stars: "5 stars", Text: "first"},
		{BusinessName: "Cafe Due", Stars: "4 stars", Text: "second"},
		{BusinessName: "Cafe Uno", Stars: "3 stars", Text: "third"},
	}

	grouped := GroupByBusiness(reviews)
	if len(grouped) != 2 {
		t.Fatalf("got %d groups, want 2", len(grouped))
	}

	if grouped[0].BusinessName != "Cafe Uno" || grouped[1].BusinessName != "Cafe Due" {
		t.Errorf("groups out of first-seen order: %q, %q", grouped[0].BusinessName, grouped[1].BusinessName)
	}
	if len(grouped[0].Reviews) != 2 || len(grouped[1].Reviews) != 1 {
		t.Errorf("unexpected group sizes: %d, %d", len(grouped[0].Reviews), len(grouped[1].Reviews))
	}
	if grouped[0].Reviews[1].Text != "third" {
		t.Errorf("review order within group not preserved: got %q", grouped[0].Reviews[1].Text)
	}
}

func TestGroupByBusinessEmpty(t *testing.T) {
	if got := GroupByBusiness(nil); len(got) != 0 {
		t.Errorf("GroupByBusiness(nil) = %v, want empty", got)
	}
}

func TestSummarize(t *testing.T) {
	reviews := []Review{
		{BusinessName: "A", Stars: "5 stars", Text: "x"},
		{BusinessName: "A", Stars: NoRating, Text: "y"},
		{BusinessName: "B", Stars: "4 stars", Text: "z"},
	}

	summary := Summarize(reviews)
	if summary.BusinessCount != 2 {
		t.Errorf("BusinessCount = %d, want 2", summary.BusinessCount)
	}
	if summary.ReviewCount != 3 {
		t.Errorf("ReviewCount = %d, want 3", summary.ReviewCount)
	}
	if summary.RatedCount != 2 {
		t.Errorf("RatedCount = %d, want 2", summary.RatedCount)
	}
}
