package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	asseterrors "github.com/holmhub/create-mcprofile/assets/errors"
	"github.com/holmhub/create-mcprofile/assets/logger"
)

// DefaultTimeout bounds a single download attempt.
const DefaultTimeout = 50 * time.Second

// ByteProgress is called after each chunk of a download is written.
// total is taken from Content-Length and may be -1 if unknown.
type ByteProgress func(name, category string, current, total int64)

// BatchProgress is called as each task of a batch settles, successfully
// or not. The counter is scoped to one DownloadAll call.
type BatchProgress func(category string, completed, total int)

// DownloadTask describes one artifact to fetch. FileName may contain
// forward-slash separated subdirectories below the destination directory.
type DownloadTask struct {
	URL      string
	FileName string
	// Sha1 is the expected content hash from the manifest; empty means the
	// artifact has no published hash and an existing file is trusted as-is.
	Sha1 string
}

// DownloadStats reports the outcome of one batch. MissingFiles counts tasks
// whose resource came back 404: a settled outcome, not a failure, but no
// file was written either.
type DownloadStats struct {
	TotalFiles      int
	DownloadedFiles int
	SkippedFiles    int
	MissingFiles    int
	FailedFiles     int
	Retries         int
}

// DownloadOptions configures a Downloader.
type DownloadOptions struct {
	// Timeout bounds each attempt. DefaultTimeout when zero.
	Timeout time.Duration

	// Concurrency bounds the batch fan-out. Zero means unbounded; native
	// library and JDK batches use a bounded pool.
	Concurrency int

	// RetryOnFailure grants each batch task one extra attempt.
	RetryOnFailure bool
}

// Downloader streams artifacts over HTTP to the local filesystem.
type Downloader struct {
	httpClient *http.Client
	opts       DownloadOptions
}

func NewDownloader(opts *DownloadOptions) *Downloader {
	var o DownloadOptions
	if opts != nil {
		o = *opts
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return &Downloader{
		httpClient: &http.Client{},
		opts:       o,
	}
}

// Download fetches url into destDir/fileName, streaming the response body
// chunk-by-chunk to disk. A 404 is treated as "resource absent": logged and
// returned without error, leaving no file. On any other failure the partial
// file is removed; when retry is true the fetch is attempted exactly once
// more before giving up.
func (d *Downloader) Download(ctx context.Context, url, destDir, fileName string, retry bool, category string, progress ByteProgress) error {
	_, _, err := d.download(ctx, url, destDir, fileName, retry, category, progress)
	return err
}

// download runs the bounded attempt loop. It reports how many retries were
// spent and whether a file was actually written (false on a 404), for batch
// statistics.
func (d *Downloader) download(ctx context.Context, url, destDir, fileName string, retry bool, category string, progress ByteProgress) (int, bool, error) {
	attempts := 1
	if retry {
		attempts = 2
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			logger.Info("retrying download of %s (attempt %d/%d)", fileName, attempt, attempts)
		}

		fetched, err := d.downloadOnce(ctx, url, destDir, fileName, category, progress)
		if err == nil {
			return attempt - 1, fetched, nil
		}
		lastErr = err
		logger.Warn("download of %s failed: %v", fileName, err)
	}

	return attempts - 1, false, asseterrors.ErrDownloadFailed.
		WithDetail("url", url).
		WithDetail("attempts", attempts).
		WithCause(lastErr)
}

func (d *Downloader) downloadOnce(ctx context.Context, url, destDir, fileName, category string, progress ByteProgress) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Connection", "keep-alive")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		logger.Info("resource absent (404): %s", url)
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	targetPath := filepath.Join(destDir, filepath.FromSlash(fileName))
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	outFile, err := os.Create(targetPath)
	if err != nil {
		return false, fmt.Errorf("failed to create file: %w", err)
	}

	var body io.Reader = resp.Body
	if progress != nil {
		body = &progressReader{
			reader: resp.Body,
			total:  resp.ContentLength,
			callback: func(current, total int64) {
				progress(fileName, category, current, total)
			},
		}
	}

	if _, err := io.Copy(outFile, body); err != nil {
		outFile.Close()
		os.Remove(targetPath)
		return false, fmt.Errorf("failed to write response body: %w", err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(targetPath)
		return false, fmt.Errorf("failed to close file: %w", err)
	}

	return true, nil
}

// DownloadAll fetches every task into destDir concurrently and returns the
// resolved target paths. A task whose target already exists and passes
// checksum verification is skipped without a request; an existing file with
// a mismatched hash is downloaded again. Per-task failures are logged and
// counted, never aborting sibling tasks; an absent resource (404) settles as
// MissingFiles rather than a download or a failure.
func (d *Downloader) DownloadAll(ctx context.Context, destDir string, tasks []*DownloadTask, category string, progress BatchProgress) ([]string, *DownloadStats, error) {
	stats := &DownloadStats{TotalFiles: len(tasks)}
	if len(tasks) == 0 {
		return nil, stats, nil
	}

	var sem *semaphore.Weighted
	if d.opts.Concurrency > 0 {
		sem = semaphore.NewWeighted(int64(d.opts.Concurrency))
	}

	paths := make([]string, len(tasks))

	var (
		mu        sync.Mutex
		completed int
		wg        sync.WaitGroup
	)

	// Emitting under the lock keeps the counter monotonic for the observer.
	settle := func() {
		mu.Lock()
		completed++
		if progress != nil {
			progress(category, completed, len(tasks))
		}
		mu.Unlock()
	}

	for i, task := range tasks {
		paths[i] = filepath.Join(destDir, filepath.FromSlash(task.FileName))

		wg.Add(1)
		go func(task *DownloadTask, targetPath string) {
			defer wg.Done()
			defer settle()

			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					mu.Lock()
					stats.FailedFiles++
					mu.Unlock()
					return
				}
				defer sem.Release(1)
			}

			if _, err := os.Stat(targetPath); err == nil {
				if task.Sha1 == "" || VerifyFile(task.Sha1, targetPath) {
					mu.Lock()
					stats.SkippedFiles++
					mu.Unlock()
					return
				}
				logger.Info("checksum mismatch for %s, downloading again", task.FileName)
			}

			retries, fetched, err := d.download(ctx, task.URL, destDir, task.FileName, d.opts.RetryOnFailure, category, nil)
			mu.Lock()
			stats.Retries += retries
			switch {
			case err != nil:
				stats.FailedFiles++
			case !fetched:
				stats.MissingFiles++
			default:
				stats.DownloadedFiles++
			}
			mu.Unlock()
			if err != nil {
				logger.Error("failed to download %s: %v", task.FileName, err)
			}
		}(task, paths[i])
	}

	wg.Wait()
	return paths, stats, nil
}

// progressReader wraps an io.Reader to report download progress
type progressReader struct {
	reader   io.Reader
	total    int64
	current  int64
	callback func(current, total int64)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	if pr.callback != nil {
		pr.callback(pr.current, pr.total)
	}
	return n, err
}
