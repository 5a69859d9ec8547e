package service

import (
	"testing"

	"github.com/sift-cli/sift/internal/domain"
)

func triagePage(ids ...string) domain.Page {
	items := make([]domain.Item, len(ids))
	for i, id := range ids {
		items[i] = domain.Item{ID: id, Name: id + ".jpg"}
	}
	return domain.Page{Items: items}
}

func visibleIDs(page domain.Page, state domain.TriageState) []string {
	items := Visible(page, state)
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestVisibleFilterModes(t *testing.T) {
	page := triagePage("kept", "declined", "soft", "untouched")
	state := domain.NewTriageState()
	state.Marks["kept"] = domain.MarkKeep
	state.Marks["declined"] = domain.MarkDecline
	state.SoftTouched["soft"] = true

	tests := []struct {
		mode domain.FilterMode
		want []string
	}{
		{domain.FilterAll, []string{"kept", "declined", "soft", "untouched"}},
		{domain.FilterKept, []string{"kept"}},
		{domain.FilterDeclined, []string{"declined"}},
		{domain.FilterUnmarked, []string{"untouched"}},
	}
	for _, tt := range tests {
		state.FilterMode = tt.mode
		got := visibleIDs(page, state)
		if len(got) != len(tt.want) {
			t.Errorf("mode %s: visible = %v, want %v", tt.mode, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("mode %s: visible[%d] = %q, want %q", tt.mode, i, got[i], tt.want[i])
			}
		}
	}
}

func TestVisibleHideProcessed(t *testing.T) {
	page := triagePage("kept", "declined", "soft", "untouched")
	state := domain.NewTriageState()
	state.Marks["kept"] = domain.MarkKeep
	state.Marks["declined"] = domain.MarkDecline
	state.SoftTouched["soft"] = true
	state.HideProcessed = true

	got := visibleIDs(page, state)
	if len(got) != 1 || got[0] != "untouched" {
		t.Errorf("visible = %v, want [untouched]", got)
	}
}

func TestVisibleHideProcessedAppliesAfterFilterMode(t *testing.T) {
	// A kept item is processed, so KEPT + hide-processed empties the view
	page := triagePage("kept", "untouched")
	state := domain.NewTriageState()
	state.Marks["kept"] = domain.MarkKeep
	state.FilterMode = domain.FilterKept
	state.HideProcessed = true

	if got := visibleIDs(page, state); len(got) != 0 {
		t.Errorf("visible = %v, want empty", got)
	}
}

func TestVisiblePreservesOrder(t *testing.T) {
	page := triagePage("c", "a", "b")
	state := domain.NewTriageState()

	got := visibleIDs(page, state)
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visible = %v, want %v", got, want)
		}
	}
}

func TestFilterModeCycle(t *testing.T) {
	order := []domain.FilterMode{
		domain.FilterAll, domain.FilterUnmarked, domain.FilterKept, domain.FilterDeclined, domain.FilterAll,
	}
	mode := domain.FilterAll
	for i := 1; i < len(order); i++ {
		mode = mode.Next()
		if mode != order[i] {
			t.Fatalf("cycle step %d = %s, want %s", i, mode, order[i])
		}
	}
}

func TestFilterByName(t *testing.T) {
	items := []domain.Item{
		{ID: "1", Name: "Beach Sunset.jpg"},
		{ID: "2", Name: "birthday.mp4"},
		{ID: "3", Name: "screenshot.png"},
	}

	got := FilterByName(items, "bch")
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("FilterByName(bch) = %v, want just Beach Sunset", got)
	}

	if got := FilterByName(items, ""); len(got) != 3 {
		t.Errorf("empty query returned %d items, want 3", len(got))
	}
}
