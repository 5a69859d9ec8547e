package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sift-cli/sift/internal/domain"
)

// URLResolver is the single choke point for ephemeral download urls: a
// freshness-bounded cache over the drive's metadata lookup. Nothing else in
// the system caches urls.
type URLResolver struct {
	repo   domain.DriveRepository
	ttl    time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]urlCacheEntry
}

type urlCacheEntry struct {
	url       string
	fetchedAt time.Time
}

// NewURLResolver creates a resolver with the given freshness window.
func NewURLResolver(repo domain.DriveRepository, ttl time.Duration, logger *slog.Logger) *URLResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &URLResolver{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		cache:  make(map[string]urlCacheEntry),
	}
}

// Resolve returns a usable direct-download url for the item. A cached entry
// younger than the TTL is returned as-is unless forceRefresh is set;
// otherwise a fresh metadata fetch replaces it. Failure to obtain a link
// surfaces as ErrNoDownloadURL (wrapped by the drive client).
func (r *URLResolver) Resolve(ctx context.Context, itemID string, forceRefresh bool) (string, error) {
	if !forceRefresh {
		r.mu.Lock()
		entry, ok := r.cache[itemID]
		r.mu.Unlock()
		if ok && time.Since(entry.fetchedAt) < r.ttl {
			return entry.url, nil
		}
	}

	url, err := r.repo.GetDownloadURL(ctx, itemID)
	if err != nil {
		r.logger.Debug("url resolution failed", "item", itemID, "error", err)
		return "", err
	}

	r.mu.Lock()
	r.cache[itemID] = urlCacheEntry{url: url, fetchedAt: time.Now()}
	r.mu.Unlock()

	return url, nil
}
