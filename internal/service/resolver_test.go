package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sift-cli/sift/internal/domain"
)

func TestResolveCachesWithinTTL(t *testing.T) {
	drive := newFakeDrive()
	drive.urlSeq["item-1"] = []string{"https://dl/1a", "https://dl/1b"}

	r := NewURLResolver(drive, time.Minute, testLogger())
	ctx := context.Background()

	url, err := r.Resolve(ctx, "item-1", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if url != "https://dl/1a" {
		t.Fatalf("url = %q, want %q", url, "https://dl/1a")
	}

	url, err = r.Resolve(ctx, "item-1", false)
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if url != "https://dl/1a" {
		t.Errorf("cached url = %q, want %q", url, "https://dl/1a")
	}
	if drive.urlCalls["item-1"] != 1 {
		t.Errorf("remote lookups = %d, want 1", drive.urlCalls["item-1"])
	}
}

func TestResolveExpiredEntryRefetches(t *testing.T) {
	drive := newFakeDrive()
	drive.urlSeq["item-1"] = []string{"https://dl/1a", "https://dl/1b"}

	r := NewURLResolver(drive, 10*time.Millisecond, testLogger())
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "item-1", false); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	url, err := r.Resolve(ctx, "item-1", false)
	if err != nil {
		t.Fatalf("Resolve() after expiry error = %v", err)
	}
	if url != "https://dl/1b" {
		t.Errorf("url = %q, want refreshed %q", url, "https://dl/1b")
	}
	if drive.urlCalls["item-1"] != 2 {
		t.Errorf("remote lookups = %d, want 2", drive.urlCalls["item-1"])
	}
}

func TestResolveForceRefreshBypassesCache(t *testing.T) {
	drive := newFakeDrive()
	drive.urlSeq["item-1"] = []string{"https://dl/1a", "https://dl/1b"}

	r := NewURLResolver(drive, time.Hour, testLogger())
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "item-1", false); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	url, err := r.Resolve(ctx, "item-1", true)
	if err != nil {
		t.Fatalf("forced Resolve() error = %v", err)
	}
	if url != "https://dl/1b" {
		t.Errorf("url = %q, want %q", url, "https://dl/1b")
	}

	// The forced fetch replaces the cached entry
	url, err = r.Resolve(ctx, "item-1", false)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if url != "https://dl/1b" {
		t.Errorf("cached url after force = %q, want %q", url, "https://dl/1b")
	}
	if drive.urlCalls["item-1"] != 2 {
		t.Errorf("remote lookups = %d, want 2", drive.urlCalls["item-1"])
	}
}

func TestResolveMissingLink(t *testing.T) {
	drive := newFakeDrive()

	r := NewURLResolver(drive, time.Minute, testLogger())
	if _, err := r.Resolve(context.Background(), "item-1", false); !errors.Is(err, domain.ErrNoDownloadURL) {
		t.Errorf("Resolve() error = %v, want ErrNoDownloadURL", err)
	}
}
