package domain

import (
	"context"
	"io"
)

// ListResult is one page of a folder listing as returned by the drive.
type ListResult struct {
	Items      []Item
	NextCursor string // Opaque continuation token, empty on the last page
	TotalCount int    // <= 0 when the drive does not report a count
}

// DriveRepository provides access to the remote drive: listing, thumbnails,
// download link resolution, raw content and batch deletion. Every call is a
// single logical remote operation; throttling retry policy lives inside the
// implementation, not in callers.
type DriveRepository interface {
	// GetFolders returns the top-level folders of the drive.
	GetFolders(ctx context.Context) ([]Folder, error)

	// ListChildren returns one page of a folder's media items. An empty
	// cursor requests the first page (fixed top-N listing ordered by name);
	// a non-empty cursor must be exactly the NextCursor of the prior page.
	ListChildren(ctx context.Context, folderID, cursor string, pageSize int) (*ListResult, error)

	// GetThumbnailURL returns the best-available thumbnail url for an item,
	// preferring large over medium over small. An item without thumbnails
	// returns ErrItemNotFound wrapped or an empty url; callers treat any
	// failure as "no thumbnail".
	GetThumbnailURL(ctx context.Context, itemID string) (string, error)

	// GetDownloadURL fetches fresh item metadata and returns the ephemeral
	// direct-download url. Returns ErrNoDownloadURL when the link field is
	// absent and ErrItemNotFound when the item is gone.
	GetDownloadURL(ctx context.Context, itemID string) (string, error)

	// GetItem re-fetches an item's full metadata and returns it together
	// with whatever download url the metadata carried (possibly empty).
	GetItem(ctx context.Context, itemID string) (*Item, string, error)

	// Download streams the bytes behind a previously resolved url.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadContent streams an item's bytes through the raw content
	// endpoint, bypassing url resolution. Last-resort path.
	DownloadContent(ctx context.Context, itemID string) (io.ReadCloser, error)

	// DeleteItems deletes the given items, batching into the drive's
	// per-call limit and applying batches sequentially. Fails on the first
	// batch error; items in later batches are left untouched.
	DeleteItems(ctx context.Context, ids []string) error
}
