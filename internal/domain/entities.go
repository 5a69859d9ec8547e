package domain

import (
	"sort"
	"time"
)

// Mark is an explicit triage decision on an item.
type Mark string

const (
	MarkKeep    Mark = "keep"
	MarkDecline Mark = "decline"
)

// FilterMode selects which slice of a folder the triage view shows.
type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterKept     FilterMode = "kept"
	FilterDeclined FilterMode = "declined"
	FilterUnmarked FilterMode = "unmarked"
)

// Next cycles to the following filter mode (TUI hotkey order).
func (f FilterMode) Next() FilterMode {
	switch f {
	case FilterAll:
		return FilterUnmarked
	case FilterUnmarked:
		return FilterKept
	case FilterKept:
		return FilterDeclined
	default:
		return FilterAll
	}
}

// Item is a single remote drive item. Immutable once fetched, except for
// ThumbURL which the page loader attaches best-effort after the listing call.
type Item struct {
	ID        string    // Drive-wide stable identifier
	Name      string    // File name
	IsVideo   bool      // Video vs photo
	CreatedAt time.Time // Zero if the listing omitted it
	ThumbURL  string    // Best-available thumbnail, empty if none resolved
}

// Page is one fetched listing page. Pages are 0-indexed, contiguous and
// immutable once cached; NextCursor of page n is the only way to fetch
// page n+1.
type Page struct {
	Index      int
	Items      []Item
	NextCursor string // Empty means terminal: no further pages exist
}

// Terminal reports whether this is the last page of the folder.
func (p Page) Terminal() bool { return p.NextCursor == "" }

// Folder is a top-level drive folder offered for triage.
type Folder struct {
	ID         string
	Name       string
	ChildCount int // Best-effort, 0 if the drive did not report it
}

// TriageState is the persisted per-folder triage record: explicit marks,
// soft-touch flags, view settings and the resume position. One instance per
// folder id, created with defaults on first visit, never explicitly destroyed.
type TriageState struct {
	Marks         map[string]Mark `json:"marks"`
	SoftTouched   map[string]bool `json:"softTouched"`
	FilterMode    FilterMode      `json:"filterMode"`
	HideProcessed bool            `json:"hideProcessed"`
	Cursor        string          `json:"cursor"`
	PageIndex     int             `json:"pageIndex"`
}

// NewTriageState returns the default empty state for a folder.
func NewTriageState() TriageState {
	return TriageState{
		Marks:       make(map[string]Mark),
		SoftTouched: make(map[string]bool),
		FilterMode:  FilterAll,
	}
}

// Normalize repairs nil maps and an unset filter mode. Applied after loading
// persisted records so a partial or legacy record behaves like a default one.
func (s *TriageState) Normalize() {
	if s.Marks == nil {
		s.Marks = make(map[string]Mark)
	}
	if s.SoftTouched == nil {
		s.SoftTouched = make(map[string]bool)
	}
	if s.FilterMode == "" {
		s.FilterMode = FilterAll
	}
}

// MarkOf returns the explicit mark for an item, if any.
func (s TriageState) MarkOf(itemID string) (Mark, bool) {
	m, ok := s.Marks[itemID]
	return m, ok
}

// Processed reports whether an item carries an explicit mark or a soft-touch.
func (s TriageState) Processed(itemID string) bool {
	if _, ok := s.Marks[itemID]; ok {
		return true
	}
	return s.SoftTouched[itemID]
}

// IDsMarked returns the ids carrying the given mark, sorted for determinism.
func (s TriageState) IDsMarked(mark Mark) []string {
	var ids []string
	for id, m := range s.Marks {
		if m == mark {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Counts returns the number of kept and declined items.
func (s TriageState) Counts() (kept, declined int) {
	for _, m := range s.Marks {
		switch m {
		case MarkKeep:
			kept++
		case MarkDecline:
			declined++
		}
	}
	return kept, declined
}
