package packman

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
)

const downloadRetryAttempts = 3

// Downloader fetches pack artifacts over HTTP with range-based
// resumption: an interrupted transfer leaves a .partial file that the
// next attempt continues from instead of starting over.
type Downloader struct {
	client *resty.Client
}

// NewDownloader creates a Downloader.
func NewDownloader() *Downloader {
	return &Downloader{client: resty.New()}
}

// Fetch downloads url into dest. totalSize is the expected artifact
// size from the registry, used for resumption bounds and progress
// fractions. progress, when non-nil, receives values in [0,1].
func (d *Downloader) Fetch(ctx context.Context, url, dest string, totalSize int64, progress func(float64)) error {
	partial := dest + ".partial"

	err := retry.Do(
		func() error {
			return d.fetchOnce(ctx, url, partial, totalSize, progress)
		},
		retry.Context(ctx),
		retry.Attempts(downloadRetryAttempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	if err := os.Rename(partial, dest); err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}

func (d *Downloader) fetchOnce(ctx context.Context, url, partial string, totalSize int64, progress func(float64)) error {
	var offset int64
	if info, err := os.Stat(partial); err == nil {
		offset = info.Size()
	}
	if totalSize > 0 && offset > totalSize {
		// A stale partial larger than the artifact cannot be resumed.
		if err := os.Remove(partial); err != nil {
			return fmt.Errorf("discard stale partial: %w", err)
		}
		offset = 0
	}
	if totalSize > 0 && offset == totalSize {
		return nil
	}

	req := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if offset > 0 {
		req.SetHeader("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	res, err := req.Get(url)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	body := res.RawBody()
	defer func() {
		_ = body.Close()
	}()

	switch res.StatusCode() {
	case http.StatusOK:
		// Server ignored the range request; restart from zero.
		offset = 0
	case http.StatusPartialContent:
	case http.StatusRequestedRangeNotSatisfiable:
		// Partial already covers the artifact; treat as complete.
		return nil
	default:
		return retry.Unrecoverable(fmt.Errorf("download %s: status %d", url, res.StatusCode()))
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if offset == 0 {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	out, err := os.OpenFile(partial, flags, 0644)
	if err != nil {
		return fmt.Errorf("open partial file: %w", err)
	}

	written, err := copyWithProgress(out, body, offset, totalSize, progress)
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close partial file: %w", closeErr)
	}
	if err != nil {
		// Keep the partial bytes for the next attempt.
		return fmt.Errorf("transfer after %d bytes: %w", written, err)
	}
	return nil
}

func copyWithProgress(dst io.Writer, src io.Reader, offset, totalSize int64, progress func(float64)) (int64, error) {
	var written int64
	buf := make([]byte, 64*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			if progress != nil && totalSize > 0 {
				progress(float64(offset+written) / float64(totalSize))
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
