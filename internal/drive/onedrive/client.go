package onedrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sift-cli/sift/internal/domain"
)

const (
	defaultBaseURL = "https://graph.microsoft.com/v1.0"
	defaultTimeout = 30 * time.Second
	userAgent      = "Sift/1.0"

	// maxThrottleRetries is the hard retry bound for 429 responses: one
	// backoff retry, then the call fails with ErrRateLimited.
	maxThrottleRetries = 1

	// defaultRetryAfter applies when the Retry-After header is missing or
	// unparseable.
	defaultRetryAfter = 2 * time.Second

	// deleteBatchLimit is the Graph $batch ceiling on delete operations
	// per call.
	deleteBatchLimit = 20
)

// Client implements domain.DriveRepository against the Microsoft Graph drive
// API. It is the single place throttling policy lives: every request goes
// through doRequest/doStream and inherits the one-retry backoff behavior.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Graph drive client. An empty baseURL selects the
// public Graph endpoint; tests point it at a local server.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// retryAfter parses the Retry-After hint in seconds
func retryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

// send performs one HTTP round trip with the bounded throttle retry loop and
// hands the raw response to the caller. Resolved download urls are
// pre-authenticated, so callers may opt out of the Authorization header.
func (c *Client) send(ctx context.Context, method, rawURL string, payload []byte, authed bool) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if authed {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.logger.Debug("graph request", "method", method, "url", rawURL, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("graph request failed", "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrDriveUnreachable, err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		delay := retryAfter(resp.Header.Get("Retry-After"))
		resp.Body.Close()

		if attempt >= maxThrottleRetries {
			c.logger.Warn("graph throttled after retry", "url", rawURL)
			return nil, domain.ErrRateLimited
		}

		c.logger.Warn("graph throttled, backing off", "delay", delay, "url", rawURL)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// doRequest performs an authenticated request and returns the response body.
// Non-success statuses map to domain errors, with the body as error detail.
func (c *Client) doRequest(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	resp, err := c.send(ctx, method, rawURL, payload, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrItemNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Error("graph request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// doStream performs a request whose body is streamed back to the caller. The
// caller owns the returned ReadCloser.
func (c *Client) doStream(ctx context.Context, rawURL string, authed bool) (io.ReadCloser, error) {
	resp, err := c.send(ctx, http.MethodGet, rawURL, nil, authed)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, domain.ErrItemNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

// GetFolders returns the drive's top-level folders
func (c *Client) GetFolders(ctx context.Context) ([]domain.Folder, error) {
	params := url.Values{}
	params.Set("$select", "id,name,folder")

	reqURL := fmt.Sprintf("%s/me/drive/root/children?%s", c.baseURL, params.Encode())
	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var resp childrenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return MapFolders(resp.Value), nil
}

// ListChildren returns one page of a folder's media items. The first page is
// a fixed top-N listing ordered by name; later pages are fetched through the
// opaque nextLink cursor exactly as the drive returned it.
func (c *Client) ListChildren(ctx context.Context, folderID, cursor string, pageSize int) (*domain.ListResult, error) {
	reqURL := cursor
	if reqURL == "" {
		params := url.Values{}
		params.Set("$top", strconv.Itoa(pageSize))
		params.Set("$select", "id,name,file,folder,photo,video,createdDateTime")
		// Name order is stable across repeated listings, which is what
		// keeps cached page indices meaningful.
		params.Set("$orderby", "name")
		reqURL = fmt.Sprintf("%s/me/drive/items/%s/children?%s", c.baseURL, folderID, params.Encode())
	}

	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var resp childrenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &domain.ListResult{
		Items:      MapItems(resp.Value),
		NextCursor: resp.NextLink,
		TotalCount: resp.Count,
	}, nil
}

// GetThumbnailURL returns the best-available thumbnail url for an item,
// preferring large, then medium, then small. An item without any thumbnail
// yields an empty url, not an error.
func (c *Client) GetThumbnailURL(ctx context.Context, itemID string) (string, error) {
	reqURL := fmt.Sprintf("%s/me/drive/items/%s/thumbnails", c.baseURL, itemID)
	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	var resp thumbnailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(resp.Value) == 0 {
		return "", nil
	}
	return bestThumbnailURL(resp.Value[0]), nil
}

// GetDownloadURL fetches fresh item metadata and returns the ephemeral
// direct-download url
func (c *Client) GetDownloadURL(ctx context.Context, itemID string) (string, error) {
	params := url.Values{}
	params.Set("$select", "id,name,@microsoft.graph.downloadUrl")

	reqURL := fmt.Sprintf("%s/me/drive/items/%s?%s", c.baseURL, itemID, params.Encode())
	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	var item driveItem
	if err := json.Unmarshal(body, &item); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if item.DownloadURL == "" {
		return "", domain.ErrNoDownloadURL
	}
	return item.DownloadURL, nil
}

// GetItem re-fetches an item's full metadata, returning the mapped item and
// whatever download url the unfiltered metadata carried
func (c *Client) GetItem(ctx context.Context, itemID string) (*domain.Item, string, error) {
	reqURL := fmt.Sprintf("%s/me/drive/items/%s", c.baseURL, itemID)
	body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", err
	}

	var raw driveItem
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", fmt.Errorf("failed to parse response: %w", err)
	}

	item := MapItem(raw)
	return &item, raw.DownloadURL, nil
}

// Download streams the bytes behind a previously resolved url. No
// Authorization header is attached; the throttle policy still applies.
func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return c.doStream(ctx, rawURL, false)
}

// DownloadContent streams an item's bytes through the raw content endpoint
func (c *Client) DownloadContent(ctx context.Context, itemID string) (io.ReadCloser, error) {
	reqURL := fmt.Sprintf("%s/me/drive/items/%s/content", c.baseURL, itemID)
	return c.doStream(ctx, reqURL, true)
}

// DeleteItems deletes items through $batch calls of at most deleteBatchLimit
// operations, applied sequentially. An item already gone remotely (404 in the
// batch result) is skipped; any other per-operation failure fails the call.
func (c *Client) DeleteItems(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += deleteBatchLimit {
		end := start + deleteBatchLimit
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		batch := batchRequest{Requests: make([]batchOperation, len(chunk))}
		for i, id := range chunk {
			batch.Requests[i] = batchOperation{
				ID:     fmt.Sprintf("del%d", start+i),
				Method: http.MethodDelete,
				URL:    "/me/drive/items/" + id,
			}
		}

		payload, err := json.Marshal(batch)
		if err != nil {
			return err
		}

		body, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/$batch", payload)
		if err != nil {
			return fmt.Errorf("delete batch failed: %w", err)
		}

		var resp batchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("failed to parse batch response: %w", err)
		}
		for _, r := range resp.Responses {
			if r.Status == http.StatusNotFound {
				// Deleted out of band mid-session: nothing to do
				c.logger.Debug("delete target already gone", "op", r.ID)
				continue
			}
			if r.Status < 200 || r.Status > 299 {
				return fmt.Errorf("delete operation %s failed with status %d", r.ID, r.Status)
			}
		}
	}

	return nil
}
