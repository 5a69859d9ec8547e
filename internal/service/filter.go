package service

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/sift-cli/sift/internal/domain"
)

// Visible computes which of a page's items the triage view shows under the
// given state. Pure function; the result is an order-preserving subsequence
// of page.Items. Callers re-run it whenever the state changes — the filtered
// view is never patched incrementally.
func Visible(page domain.Page, state domain.TriageState) []domain.Item {
	visible := make([]domain.Item, 0, len(page.Items))
	for _, item := range page.Items {
		if matchesView(item.ID, state) {
			visible = append(visible, item)
		}
	}
	return visible
}

// matchesView applies the two-stage predicate: the filter mode first, then
// the hide-processed toggle on whatever survived.
func matchesView(itemID string, state domain.TriageState) bool {
	mark, marked := state.MarkOf(itemID)

	switch state.FilterMode {
	case domain.FilterKept:
		if mark != domain.MarkKeep {
			return false
		}
	case domain.FilterDeclined:
		if mark != domain.MarkDecline {
			return false
		}
	case domain.FilterUnmarked:
		if marked || state.SoftTouched[itemID] {
			return false
		}
	}

	if state.HideProcessed && state.Processed(itemID) {
		return false
	}
	return true
}

// FilterByName narrows items to those fuzzily matching the query, preserving
// order. An empty query returns the input unchanged.
func FilterByName(items []domain.Item, query string) []domain.Item {
	if query == "" {
		return items
	}
	matched := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if fuzzy.MatchNormalizedFold(query, item.Name) {
			matched = append(matched, item)
		}
	}
	return matched
}

// FilterFolders narrows folders by fuzzy name match, preserving order.
func FilterFolders(folders []domain.Folder, query string) []domain.Folder {
	if query == "" {
		return folders
	}
	matched := make([]domain.Folder, 0, len(folders))
	for _, f := range folders {
		if fuzzy.MatchNormalizedFold(query, f.Name) {
			matched = append(matched, f)
		}
	}
	return matched
}
