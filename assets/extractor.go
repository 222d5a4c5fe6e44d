// Package assets implements the asset retrieval core: a checksum-verified
// concurrent HTTP downloader and a concurrent archive extractor working off
// a parsed ZIP index. The filesystem layout it produces is consumed by the
// process launcher.
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	asseterrors "github.com/holmhub/create-mcprofile/assets/errors"
	"github.com/holmhub/create-mcprofile/assets/logger"
	"github.com/holmhub/create-mcprofile/assets/zipindex"
)

// DefaultExtractConcurrency bounds the extraction worker pool.
const DefaultExtractConcurrency = 10

// ExtractProgress is called once with (0, total) before extraction starts
// and once per attempted file entry, success or failure. Directory markers
// do not count toward total.
type ExtractProgress func(completed, total int)

// ExtractStats reports the outcome of one extraction call.
type ExtractStats struct {
	Total     int
	Extracted int
	Failed    int
}

// Extractor writes archive entries to a destination directory with bounded
// concurrency. Concurrent ExtractAll calls must target disjoint destination
// paths.
type Extractor struct {
	concurrency int
}

func NewExtractor(concurrency int) *Extractor {
	if concurrency <= 0 {
		concurrency = DefaultExtractConcurrency
	}
	return &Extractor{concurrency: concurrency}
}

// ExtractAll decompresses every entry of the index into destDir. One
// entry's failure (unsupported compression, unsafe path, write error) is
// logged and skipped; it never aborts extraction of the remaining entries.
func (e *Extractor) ExtractAll(ctx context.Context, idx *zipindex.Index, destDir string, progress ExtractProgress) (*ExtractStats, error) {
	var dirs, files []*zipindex.Entry
	for _, name := range idx.Names() {
		entry, err := idx.Entry(name)
		if err != nil {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
	}

	created := newDirSet(destDir)

	// Directory markers contribute no file and are cheap, handle them
	// before fanning out.
	for _, entry := range dirs {
		rel, err := safeRelPath(entry.Name)
		if err != nil {
			logger.Warn("skipping archive entry %q: %v", entry.Name, err)
			continue
		}
		if err := created.ensure(rel); err != nil {
			logger.Warn("failed to create directory for %q: %v", entry.Name, err)
		}
	}

	stats := &ExtractStats{Total: len(files)}
	if progress != nil {
		progress(0, len(files))
	}

	sem := semaphore.NewWeighted(int64(e.concurrency))

	var (
		mu        sync.Mutex
		completed int
		wg        sync.WaitGroup
	)

	var acquireErr error
	for _, entry := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			acquireErr = err
			break
		}

		wg.Add(1)
		go func(entry *zipindex.Entry) {
			defer wg.Done()
			defer sem.Release(1)

			err := e.writeEntry(entry, destDir, created)
			if err != nil {
				logger.Warn("failed to extract %s: %v", entry.Name, err)
			}

			// Emitting under the lock keeps the counter monotonic for
			// the observer.
			mu.Lock()
			if err != nil {
				stats.Failed++
			} else {
				stats.Extracted++
			}
			completed++
			if progress != nil {
				progress(completed, len(files))
			}
			mu.Unlock()
		}(entry)
	}

	wg.Wait()

	if acquireErr != nil {
		return stats, acquireErr
	}
	return stats, nil
}

// ExtractOne writes a single named entry below destDir.
func (e *Extractor) ExtractOne(idx *zipindex.Index, name, destDir string) error {
	entry, err := idx.Entry(name)
	if err != nil {
		return err
	}

	rel, err := safeRelPath(entry.Name)
	if err != nil {
		return err
	}

	if entry.IsDir() {
		if err := os.MkdirAll(filepath.Join(destDir, rel), 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}

	if dir := filepath.Dir(rel); dir != "." {
		if err := os.MkdirAll(filepath.Join(destDir, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := entry.Bytes()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(destDir, rel), data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (e *Extractor) writeEntry(entry *zipindex.Entry, destDir string, created *dirSet) error {
	rel, err := safeRelPath(entry.Name)
	if err != nil {
		return err
	}

	data, err := entry.Bytes()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(rel); dir != "." {
		if err := created.ensure(dir); err != nil {
			return err
		}
	}

	if err := os.WriteFile(filepath.Join(destDir, rel), data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// safeRelPath normalizes an entry name for use below the destination
// directory. Backslashes become forward slashes; any ".." segment rejects
// the entry ("zip-slip" protection).
func safeRelPath(name string) (string, error) {
	normalized := strings.ReplaceAll(name, `\`, "/")
	normalized = strings.TrimPrefix(normalized, "/")
	normalized = strings.TrimSuffix(normalized, "/")

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", asseterrors.ErrUnsafePath.WithDetail("entry", name)
		}
	}

	return filepath.FromSlash(normalized), nil
}

// dirSet caches directories already created during one extraction call, to
// avoid redundant filesystem calls. MkdirAll tolerates concurrent creators,
// so a creation race resolves by accepting the directory's existence.
type dirSet struct {
	root string
	mu   sync.Mutex
	seen map[string]struct{}
}

func newDirSet(root string) *dirSet {
	return &dirSet{root: root, seen: make(map[string]struct{})}
}

func (s *dirSet) ensure(rel string) error {
	s.mu.Lock()
	_, ok := s.seen[rel]
	s.mu.Unlock()
	if ok {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(s.root, rel), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	s.mu.Lock()
	s.seen[rel] = struct{}{}
	s.mu.Unlock()
	return nil
}
