package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sift-cli/sift/internal/domain"
)

// ExportFailure records one item that failed every fallback tier.
type ExportFailure struct {
	ItemID string
	Err    error
}

// ChunkResult is the outcome of one export chunk: the archive written for it
// (empty path when every item in the chunk failed) and the per-item failures.
type ChunkResult struct {
	ChunkIndex  int
	ArchivePath string
	Archived    int
	Failures    []ExportFailure
}

// ExportProgress reports per-chunk progress to the UI.
type ExportProgress struct {
	Chunk      int
	Chunks     int
	Done       int // Items settled so far across the whole job
	TotalItems int
}

// Exporter turns an id selection into zip archives: ids are partitioned into
// fixed-size chunks processed strictly in order, and within a chunk a bounded
// worker pool pulls items through the download fallback chain. One item's
// failure never aborts its chunk or the job.
type Exporter struct {
	repo        domain.DriveRepository
	resolver    *URLResolver
	logger      *slog.Logger
	chunkSize   int
	concurrency int
	outputDir   string
}

// NewExporter creates an export pipeline.
func NewExporter(repo domain.DriveRepository, resolver *URLResolver, logger *slog.Logger, chunkSize, concurrency int, outputDir string) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if chunkSize <= 0 {
		chunkSize = 100
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Exporter{
		repo:        repo,
		resolver:    resolver,
		logger:      logger,
		chunkSize:   chunkSize,
		concurrency: concurrency,
		outputDir:   outputDir,
	}
}

// Run exports the given ids, producing one zip archive per chunk that had at
// least one success. Archives are named after the label (usually the folder
// name); entries are named from the names map where known, falling back to
// the item id. Failures are aggregated per chunk, never interleaved
// mid-chunk.
func (e *Exporter) Run(ctx context.Context, label string, ids []string, names map[string]string, onProgress func(ExportProgress)) ([]ChunkResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	chunks := partition(ids, e.chunkSize)
	results := make([]ChunkResult, 0, len(chunks))
	done := 0

	// Chunks run strictly sequentially: each pool fully drains before the
	// next chunk's pool starts, so concurrency never exceeds the bound.
	for ci, chunk := range chunks {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		entries, failures := e.fetchChunk(ctx, chunk, names)
		done += len(chunk)

		result := ChunkResult{ChunkIndex: ci, Archived: len(entries), Failures: failures}
		if len(entries) > 0 {
			path := filepath.Join(e.outputDir, fmt.Sprintf("sift-%s-%03d.zip", sanitizeLabel(label), ci+1))
			if err := writeArchive(path, entries); err != nil {
				return results, fmt.Errorf("failed to write archive: %w", err)
			}
			result.ArchivePath = path
		}
		results = append(results, result)

		e.logger.Info("export chunk finished",
			"chunk", ci+1, "of", len(chunks), "archived", len(entries), "failed", len(failures))
		if onProgress != nil {
			onProgress(ExportProgress{Chunk: ci + 1, Chunks: len(chunks), Done: done, TotalItems: len(ids)})
		}
	}

	return results, nil
}

// archiveEntry is one fetched item ready to be zipped.
type archiveEntry struct {
	name string
	data []byte
}

// fetchChunk runs the bounded worker pool over one chunk. Workers pull item
// indexes from a shared queue; each resolves its item through the fallback
// chain independently. Per-item results keep the chunk's id order.
func (e *Exporter) fetchChunk(ctx context.Context, chunk []string, names map[string]string) ([]archiveEntry, []ExportFailure) {
	type slot struct {
		entry archiveEntry
		err   error
	}
	slots := make([]slot, len(chunk))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := e.concurrency
	if workers > len(chunk) {
		workers = len(chunk)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				name, data, err := e.fetchItem(ctx, chunk[i], names[chunk[i]])
				if err != nil {
					slots[i] = slot{err: err}
					continue
				}
				slots[i] = slot{entry: archiveEntry{name: name, data: data}}
			}
		}()
	}

	for i := range chunk {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var entries []archiveEntry
	var failures []ExportFailure
	for i, s := range slots {
		if s.err != nil {
			e.logger.Warn("export item failed", "item", chunk[i], "error", s.err)
			failures = append(failures, ExportFailure{ItemID: chunk[i], Err: s.err})
			continue
		}
		entries = append(entries, s.entry)
	}
	return entries, failures
}

// fetchItem obtains an item's bytes through the tiered fallback chain:
// cached url, force-refreshed url, full metadata re-fetch, raw content
// stream. The first tier yielding bytes wins.
func (e *Exporter) fetchItem(ctx context.Context, itemID, knownName string) (string, []byte, error) {
	name := knownName
	if name == "" {
		name = itemID
	}

	// Tier 1: resolver's cached (or naturally refreshed) url
	if url, err := e.resolver.Resolve(ctx, itemID, false); err == nil {
		if data, err := e.download(ctx, url); err == nil {
			return name, data, nil
		}
	}

	// Tier 2: force-refreshed url
	if url, err := e.resolver.Resolve(ctx, itemID, true); err == nil {
		if data, err := e.download(ctx, url); err == nil {
			return name, data, nil
		}
	}

	// Tier 3: full metadata re-fetch
	if item, url, err := e.repo.GetItem(ctx, itemID); err == nil && url != "" {
		if data, err := e.download(ctx, url); err == nil {
			return item.Name, data, nil
		}
	}

	// Tier 4: raw content stream, last resort
	rc, err := e.repo.DownloadContent(ctx, itemID)
	if err != nil {
		return "", nil, fmt.Errorf("all download tiers failed: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", nil, fmt.Errorf("all download tiers failed: %w", err)
	}
	return name, data, nil
}

func (e *Exporter) download(ctx context.Context, url string) ([]byte, error) {
	rc, err := e.repo.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// writeArchive writes one zip with the chunk's successful entries.
func writeArchive(path string, entries []archiveEntry) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]int)

	for _, entry := range entries {
		name := entry.name
		// Duplicate names within a chunk get a numeric suffix
		if n := used[name]; n > 0 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s-%d%s", name[:len(name)-len(ext)], n, ext)
		}
		used[entry.name]++

		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write(entry.data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// partition splits ids into fixed-size chunks preserving order.
func partition(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func sanitizeLabel(label string) string {
	out := make([]rune, 0, len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "export"
	}
	return string(out)
}

// KeptIDs returns the export selection for the "kept only" variant.
func KeptIDs(state domain.TriageState) []string {
	return state.IDsMarked(domain.MarkKeep)
}

// UniverseExcluding enumerates the folder's full id universe (walking the
// page cache forward to the terminal page) and subtracts ids carrying the
// given mark. With MarkDecline it yields the "everything not declined"
// selection.
func UniverseExcluding(ctx context.Context, sess *Session, mark domain.Mark) ([]string, error) {
	all, err := sess.AllItemIDs(ctx)
	if err != nil {
		return nil, err
	}

	state := sess.State()
	excluded := make(map[string]bool)
	for _, id := range state.IDsMarked(mark) {
		excluded[id] = true
	}

	ids := make([]string, 0, len(all))
	for _, id := range all {
		if !excluded[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
