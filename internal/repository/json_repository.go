package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/graceauto/catalogue/internal/logger"
)

// ReloadSink is the store-side interface the watcher callback pushes into.
type ReloadSink interface {
	Snapshot() (Document, error)
	Replace(doc Document) error
}

// JSONRepository handles disk persistence, backup and watching of the data
// file. Every save copies the previous file to the backup path first; the
// backup holds a single generation, not a history.
type JSONRepository struct {
	path       string
	backupPath string
	dir        string
	base       string
	validator  *validator.Validate
	log        *logrus.Entry
	mu         sync.Mutex
}

// NewJSONRepository creates a repository for the given primary and backup
// file paths. It returns the repository interface to avoid leaking
// implementation details.
func NewJSONRepository(path, backupPath string) (Repository, error) {
	if path == "" {
		return nil, errors.New("data file path is required")
	}
	if backupPath == "" {
		return nil, errors.New("backup file path is required")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "" || dir == "." {
		dir = "."
	}

	return &JSONRepository{
		path:       path,
		backupPath: backupPath,
		dir:        dir,
		base:       base,
		validator:  validator.New(),
		log:        logger.WithComponent("repository"),
	}, nil
}

// Load reads the JSON file, parses and validates it.
func (r *JSONRepository) Load(ctx context.Context) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.loadUnlocked()
}

// loadUnlocked reads the JSON file without acquiring the lock (caller must hold it).
func (r *JSONRepository) loadUnlocked() (*Document, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}

	doc.ApplyDefaults()

	if r.validator != nil {
		if err := r.validator.Struct(&doc); err != nil {
			return nil, fmt.Errorf("validate data file: %w", err)
		}
	}

	return &doc, nil
}

// Save validates and writes the document atomically to disk. The previous
// file is copied to the backup path first; a failed backup copy does not
// block the save.
func (r *JSONRepository) Save(ctx context.Context, doc *Document) error {
	if doc == nil {
		return errors.New("document is nil")
	}
	if r.validator != nil {
		if err := r.validator.Struct(doc); err != nil {
			return fmt.Errorf("validate before save: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.backupUnlocked(); err != nil {
		r.log.Warnf("backup before save failed: %v", err)
	}

	return r.saveUnlocked(doc)
}

// Backup copies the current data file to the backup path if it exists.
func (r *JSONRepository) Backup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.backupUnlocked()
}

func (r *JSONRepository) backupUnlocked() error {
	src, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to back up yet.
			return nil
		}
		return fmt.Errorf("open data file for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(r.backupPath)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy to backup file: %w", err)
	}
	return nil
}

// saveUnlocked writes the document without acquiring the lock (caller must hold it).
func (r *JSONRepository) saveUnlocked(doc *Document) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	tmpFile, err := os.CreateTemp(r.dir, r.base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), r.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}

	return nil
}

// StartWatcher listens for changes to the data file and reloads the sink
// after a debounce. It watches the parent directory (not the file) so atomic
// replace sequences (temp+rename) are still observed. This is also how a
// manual replacement of the file by an operator becomes visible to the
// running process. The caller owns the provided context: cancel it to stop
// the goroutine and close the watcher cleanly.
func (r *JSONRepository) StartWatcher(ctx context.Context, sink ReloadSink) error {
	if sink == nil {
		return errors.New("reload sink is required")
	}
	onChange := r.MakeWatcherCallback(sink)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	// Run watcher loop in the background; it exits when ctx is canceled or channels close.
	go func() {
		defer watcher.Close()

		// debounce coalesces bursty fsnotify events (write+chmod/rename) into a single reload.
		var debounce *time.Timer
		schedule := func() {
			if debounce != nil {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}
			debounce = time.AfterFunc(200*time.Millisecond, onChange)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != r.base {
					continue
				}
				// Writes/Create/Chmod cover normal edits and atomic replace; trigger reload.
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod) != 0 {
					schedule()
					continue
				}
				// Remove/Rename indicates the file was moved or replaced; wait for next Create.
				if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.log.Errorf("watcher error: %v", err)
			}
		}
	}()

	return nil
}

// MakeWatcherCallback returns a callback that reloads the sink from disk
// when the on-disk document is at least as new as the in-memory one.
func (r *JSONRepository) MakeWatcherCallback(sink ReloadSink) func() {
	return func() {
		diskDoc, loadErr := r.Load(context.Background())
		if loadErr != nil {
			r.log.Errorf("watch reload failed: %v", loadErr)
			return
		}

		snapshot, err := sink.Snapshot()
		if err != nil {
			r.log.Errorf("reload error: failed to get snapshot: %v", err)
			return
		}

		// If disk is older than memory, a save of ours is mid-flight; skip.
		if diskDoc.Timestamp().Before(snapshot.Timestamp()) {
			r.log.Debugf("disk version is not newer than memory, skipping reload")
			return
		}

		// Replace even when the content already matches. The change
		// notification must fire either way: the manual-sync pending state
		// completes only when the installed file is observed on disk, and by
		// then the staged copy already sits in the store.
		if err := sink.Replace(*diskDoc); err != nil {
			r.log.Errorf("reload error: %v", err)
			return
		}
		if AreDocumentsEqual(&snapshot, diskDoc) {
			r.log.Debug("disk content matches memory, change notified")
			return
		}
		r.log.Info("store reloaded from newer disk version")
	}
}
