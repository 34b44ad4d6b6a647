package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hyperjump/sukima/internal/models"
)

// HTTPDownloader fetches attachment bytes from the messaging platform's
// download URL. Responses larger than MaxBytes are rejected before
// extraction ever sees them.
type HTTPDownloader struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPDownloader returns a downloader with the given timeout and size cap.
func NewHTTPDownloader(timeout time.Duration, maxBytes int64) *HTTPDownloader {
	return &HTTPDownloader{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Download fetches the attachment and returns its bytes and the content type
// reported by the server.
func (d *HTTPDownloader) Download(ctx context.Context, ref *models.AttachmentRef) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.DownloadURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download attachment: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read attachment body: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, "", fmt.Errorf("attachment exceeds %d byte limit", d.maxBytes)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
