package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/sift-cli/sift/internal/domain"
	"github.com/sift-cli/sift/internal/store"
)

// fakeDrive is an in-memory DriveRepository for service tests. Pages are
// keyed by the cursor that fetches them ("" for page 0); url resolution can
// be scripted per item as a sequence consumed one entry per call.
type fakeDrive struct {
	mu sync.Mutex

	pages       map[string]domain.ListResult
	listCalls   int
	listCursors []string

	thumbs map[string]string

	urlSeq   map[string][]string
	urlErr   map[string]error
	urlCalls map[string]int

	downloads   map[string][]byte
	downloadErr map[string]error

	items    map[string]*domain.Item
	itemURLs map[string]string

	content    map[string][]byte
	contentErr map[string]error

	deleted   [][]string
	deleteErr error
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		pages:       make(map[string]domain.ListResult),
		thumbs:      make(map[string]string),
		urlSeq:      make(map[string][]string),
		urlErr:      make(map[string]error),
		urlCalls:    make(map[string]int),
		downloads:   make(map[string][]byte),
		downloadErr: make(map[string]error),
		items:       make(map[string]*domain.Item),
		itemURLs:    make(map[string]string),
		content:     make(map[string][]byte),
		contentErr:  make(map[string]error),
	}
}

func (f *fakeDrive) GetFolders(ctx context.Context) ([]domain.Folder, error) {
	return []domain.Folder{{ID: "folder-1", Name: "Camera Roll"}}, nil
}

func (f *fakeDrive) ListChildren(ctx context.Context, folderID, cursor string, pageSize int) (*domain.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.listCursors = append(f.listCursors, cursor)
	result, ok := f.pages[cursor]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &result, nil
}

func (f *fakeDrive) GetThumbnailURL(ctx context.Context, itemID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.thumbs[itemID], nil
}

func (f *fakeDrive) GetDownloadURL(ctx context.Context, itemID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urlCalls[itemID]++
	if err := f.urlErr[itemID]; err != nil {
		return "", err
	}
	seq := f.urlSeq[itemID]
	if len(seq) == 0 {
		return "", domain.ErrNoDownloadURL
	}
	url := seq[0]
	if len(seq) > 1 {
		f.urlSeq[itemID] = seq[1:]
	}
	return url, nil
}

func (f *fakeDrive) GetItem(ctx context.Context, itemID string) (*domain.Item, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID]
	if !ok {
		return nil, "", domain.ErrItemNotFound
	}
	return item, f.itemURLs[itemID], nil
}

func (f *fakeDrive) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.downloadErr[url]; err != nil {
		return nil, err
	}
	data, ok := f.downloads[url]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeDrive) DownloadContent(ctx context.Context, itemID string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.contentErr[itemID]; err != nil {
		return nil, err
	}
	data, ok := f.content[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeDrive) DeleteItems(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) domain.TriageStore {
	t.Helper()
	s, err := store.NewTriageStateStore("")
	if err != nil {
		t.Fatalf("NewTriageStateStore() error = %v", err)
	}
	return s
}

// twoPageDrive seeds the fake with a 30-item folder split 25 + 5.
func twoPageDrive() *fakeDrive {
	drive := newFakeDrive()
	first := make([]domain.Item, 25)
	for i := range first {
		first[i] = domain.Item{ID: itemID(i), Name: itemID(i) + ".jpg"}
	}
	second := make([]domain.Item, 5)
	for i := range second {
		second[i] = domain.Item{ID: itemID(25 + i), Name: itemID(25+i) + ".jpg"}
	}
	drive.pages[""] = domain.ListResult{Items: first, NextCursor: "cursor-1", TotalCount: 30}
	drive.pages["cursor-1"] = domain.ListResult{Items: second, TotalCount: 30}
	return drive
}

func itemID(i int) string {
	return "item-" + string(rune('a'+i/10)) + string(rune('0'+i%10))
}
