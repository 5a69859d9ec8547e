package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sift-cli/sift/internal/domain"
)

// ErrPastEnd is returned when a page beyond the terminal page is requested.
var ErrPastEnd = errors.New("no page beyond the terminal page")

// Session is the triage context for one folder: the page cache, the persisted
// triage state, and the preview ticket. All folder-scoped operations hang off
// a Session so independent sessions (and tests) never share hidden state.
type Session struct {
	folder   domain.Folder
	repo     domain.DriveRepository
	store    domain.TriageStore
	logger   *slog.Logger
	pageSize int

	mu      sync.Mutex
	pages   map[int]*domain.Page // Immutable once stored, append-only
	cursors map[int]string       // Cursor that fetches page i; page 0 is ""
	total   int                  // Remote-reported count, 0 if unknown
	lastIdx int                  // Highest index fetchable; -1 while unknown

	// previewTicket guards the single-item preview path: a resumed preview
	// operation applies its result only while it still holds the latest
	// ticket.
	previewTicket atomic.Uint64
}

// NewSession creates a triage session for a folder. The persisted resume
// cursor, when present, seeds the page cache so the saved page can be fetched
// directly without re-walking the chain from page 0.
func NewSession(folder domain.Folder, repo domain.DriveRepository, store domain.TriageStore, logger *slog.Logger, pageSize int) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = 25
	}

	s := &Session{
		folder:   folder,
		repo:     repo,
		store:    store,
		logger:   logger,
		pageSize: pageSize,
		pages:    make(map[int]*domain.Page),
		cursors:  map[int]string{0: ""},
		lastIdx:  -1,
	}

	state := store.Load(folder.ID)
	if state.PageIndex > 0 && state.Cursor != "" {
		s.cursors[state.PageIndex] = state.Cursor
	}
	return s
}

// Folder returns the folder this session triages.
func (s *Session) Folder() domain.Folder { return s.folder }

// State loads the current persisted triage state for the folder.
func (s *Session) State() domain.TriageState {
	return s.store.Load(s.folder.ID)
}

// SetMark records, replaces or (with an empty mark) clears an explicit mark.
func (s *Session) SetMark(itemID string, mark domain.Mark) error {
	return s.store.SetMark(s.folder.ID, itemID, mark)
}

// SetSoft flags an item as looked at without a decision.
func (s *Session) SetSoft(itemID string) error {
	return s.store.SetSoft(s.folder.ID, itemID)
}

// SetFilterMode persists a new filter mode.
func (s *Session) SetFilterMode(mode domain.FilterMode) error {
	state := s.State()
	state.FilterMode = mode
	return s.store.Save(s.folder.ID, state)
}

// ToggleHideProcessed flips the hide-processed view setting and returns the
// new value.
func (s *Session) ToggleHideProcessed() (bool, error) {
	state := s.State()
	state.HideProcessed = !state.HideProcessed
	return state.HideProcessed, s.store.Save(s.folder.ID, state)
}

// EnsureLoaded returns the page at the given index, fetching it (and any
// missing predecessors, since each fetch needs the cursor emitted by the page
// before it) on first access. Re-requesting a cached page returns the stored
// value with no network calls.
func (s *Session) EnsureLoaded(ctx context.Context, index int) (domain.Page, error) {
	if index < 0 {
		return domain.Page{}, fmt.Errorf("invalid page index %d", index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoadedLocked(ctx, index)
}

func (s *Session) ensureLoadedLocked(ctx context.Context, index int) (domain.Page, error) {
	if p, ok := s.pages[index]; ok {
		return *p, nil
	}
	if s.lastIdx >= 0 && index > s.lastIdx {
		return domain.Page{}, ErrPastEnd
	}

	cursor, ok := s.cursors[index]
	if !ok {
		// Materialize the chain up to the predecessor; its NextCursor is
		// the only way to fetch this page.
		prev, err := s.ensureLoadedLocked(ctx, index-1)
		if err != nil {
			return domain.Page{}, err
		}
		if prev.Terminal() {
			return domain.Page{}, ErrPastEnd
		}
		cursor = prev.NextCursor
	}

	page, err := s.fetchPage(ctx, index, cursor)
	if err != nil {
		return domain.Page{}, err
	}

	s.pages[index] = page
	if page.Terminal() {
		s.lastIdx = index
	} else {
		s.cursors[index+1] = page.NextCursor
	}
	return *page, nil
}

// fetchPage performs the listing call for one page and resolves the items'
// thumbnails concurrently as a group. Thumbnail failures degrade to an empty
// url; the page counts as loaded once every lookup has settled.
func (s *Session) fetchPage(ctx context.Context, index int, cursor string) (*domain.Page, error) {
	result, err := s.repo.ListChildren(ctx, s.folder.ID, cursor, s.pageSize)
	if err != nil {
		s.logger.Error("page fetch failed", "folder", s.folder.ID, "page", index, "error", err)
		return nil, err
	}

	if result.TotalCount > 0 {
		s.total = result.TotalCount
	}

	items := result.Items
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url, err := s.repo.GetThumbnailURL(ctx, items[i].ID)
			if err != nil {
				s.logger.Debug("thumbnail lookup failed", "item", items[i].ID, "error", err)
				return
			}
			items[i].ThumbURL = url
		}(i)
	}
	wg.Wait()

	s.logger.Info("page loaded",
		"folder", s.folder.ID, "page", index, "items", len(items), "terminal", result.NextCursor == "")

	return &domain.Page{
		Index:      index,
		Items:      items,
		NextCursor: result.NextCursor,
	}, nil
}

// SavePosition persists the resume point after the user lands on a page: the
// page index plus the cursor that fetches it, so the next session can jump
// straight back.
func (s *Session) SavePosition(index int) error {
	s.mu.Lock()
	cursor, ok := s.cursors[index]
	s.mu.Unlock()
	if !ok {
		cursor = ""
	}

	state := s.State()
	state.PageIndex = index
	state.Cursor = cursor
	return s.store.Save(s.folder.ID, state)
}

// ResumeIndex returns the persisted page index to land on when the folder is
// reopened.
func (s *Session) ResumeIndex() int {
	return s.State().PageIndex
}

// TotalCount returns the number of items in the folder: the remote-reported
// count when available, otherwise the sum of page sizes once the terminal
// page has been reached, otherwise -1 for "unknown".
func (s *Session) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.total > 0 {
		return s.total
	}
	// Inferring from page sizes needs the terminal page AND the full chain:
	// a resumed session may have jumped past pages it never fetched.
	if s.lastIdx < 0 || len(s.pages) != s.lastIdx+1 {
		return -1
	}
	sum := 0
	for _, p := range s.pages {
		sum += len(p.Items)
	}
	return sum
}

// LastPageIndex returns the terminal page index, or -1 while unknown.
func (s *Session) LastPageIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIdx
}

// AllItemIDs enumerates the folder's full id universe by walking pages
// forward from whatever is already cached to the terminal page,
// deduplicating ids along the way.
func (s *Session) AllItemIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string

	for index := 0; ; index++ {
		page, err := s.EnsureLoaded(ctx, index)
		if err != nil {
			if errors.Is(err, ErrPastEnd) {
				break
			}
			return nil, err
		}
		for _, item := range page.Items {
			if !seen[item.ID] {
				seen[item.ID] = true
				ids = append(ids, item.ID)
			}
		}
		if page.Terminal() {
			break
		}
	}

	return ids, nil
}

// ItemNames returns a name lookup for every item on the pages fetched so
// far. Used to label export archive entries.
func (s *Session) ItemNames() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make(map[string]string)
	for _, p := range s.pages {
		for _, item := range p.Items {
			names[item.ID] = item.Name
		}
	}
	return names
}

// NextPreviewTicket invalidates any in-flight preview and returns the ticket
// for the new one.
func (s *Session) NextPreviewTicket() uint64 {
	return s.previewTicket.Add(1)
}

// PreviewCurrent reports whether a resumed preview operation still holds the
// latest ticket; stale holders must discard their result.
func (s *Session) PreviewCurrent(ticket uint64) bool {
	return s.previewTicket.Load() == ticket
}
