package queue

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/datallboy/gofetch/internal/domain"
)

// Fetcher is the part of the orchestrator a processor pass needs.
// Declared here so the queue does not import the engine.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts domain.FetchOptions) (domain.Outcome, error)
}

// Store is a line-oriented queue file: one URL per line, insertion order.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Enqueue appends a URL to the queue file, creating the file and its directory if needed.
func (s *Store) Enqueue(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if err := domain.ValidateURL(rawURL); err != nil {
		return err
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	// Entries may carry access tokens, keep the file private
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open queue file: %w", err)
	}

	if _, err := f.WriteString(rawURL + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to queue file: %w", err)
	}

	return f.Close()
}

// Entries returns the queued URLs in file order.
// Returns domain.ErrMissingQueueFile if there is no queue file.
func (s *Store) Entries() ([]string, error) {
	entries, _, err := s.read()
	return entries, err
}

// read returns the entries and comment lines of the queue file.
func (s *Store) read() (entries, comments []string, err error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.ErrMissingQueueFile
		}
		return nil, nil, fmt.Errorf("failed to open queue file: %w", err)
	}
	defer f.Close()

	return readQueue(f)
}

// Len returns the number of pending entries. A missing file counts as empty.
func (s *Store) Len() (int, error) {
	entries, err := s.Entries()
	if errors.Is(err, domain.ErrMissingQueueFile) {
		return 0, nil
	}
	return len(entries), err
}

// Result reports a processor pass.
type Result struct {
	Succeeded []string
	Remaining []string
	Empty     bool // the queue had no entries to begin with
}

// Process attempts every queued URL in order with a foreground transfer and
// queue mode off, then rewrites the queue file once with only the entries that
// did not finish. Comment lines are kept at the top of the file. A queue left
// with neither entries nor comments is deleted instead of left empty.
func (s *Store) Process(ctx context.Context, f Fetcher) (*Result, error) {
	entries, _, err := s.read()
	if err != nil {
		return nil, err
	}

	res := &Result{}

	if len(entries) == 0 {
		res.Empty = true
		res.Remaining, err = s.finish(nil, nil)
		return res, err
	}

	opts := domain.FetchOptions{Mode: domain.Foreground, Queue: domain.QueueOff}

	for _, entry := range entries {
		// Once cancelled, everything not yet attempted stays queued
		if ctx.Err() != nil {
			res.Remaining = append(res.Remaining, entry)
			continue
		}

		outcome, err := f.Fetch(ctx, entry, opts)
		if err == nil && outcome.Done() {
			res.Succeeded = append(res.Succeeded, entry)
		} else {
			res.Remaining = append(res.Remaining, entry)
		}
	}

	remaining, err := s.finish(entries, res.Remaining)
	if err != nil {
		return res, err
	}
	res.Remaining = remaining

	return res, ctx.Err()
}

// finish re-reads the queue and rewrites it while holding the lock, so an
// Enqueue cannot land in the file that is about to be replaced. snapshot is
// what the pass read at its start and remaining the part of it that did not
// finish; entries appended since the snapshot are kept after remaining.
func (s *Store) finish(snapshot, remaining []string) ([]string, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, comments, err := s.read()
	if err != nil && !errors.Is(err, domain.ErrMissingQueueFile) {
		return nil, err
	}

	remaining = append(remaining, appendedSince(snapshot, current)...)
	return remaining, s.rewrite(comments, remaining)
}

// appendedSince returns entries of current that were not in snapshot.
func appendedSince(snapshot, current []string) []string {
	seen := make(map[string]int, len(snapshot))
	for _, e := range snapshot {
		seen[e]++
	}

	var added []string
	for _, e := range current {
		if seen[e] > 0 {
			seen[e]--
			continue
		}
		added = append(added, e)
	}
	return added
}

// rewrite replaces the queue file with comments then entries via a temp file
// and rename, so a crash leaves either the old or the new file, never a partial one.
func (s *Store) rewrite(comments, entries []string) error {
	if len(entries) == 0 && len(comments) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove drained queue file: %w", err)
		}
		return nil
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp queue file: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, e := range append(comments, entries...) {
		w.WriteString(e)
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp queue file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace queue file: %w", err)
	}

	return nil
}
