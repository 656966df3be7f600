package queue

import (
	"fmt"
	"os"
	"path/filepath"
)

// lock takes the exclusive advisory lock that serializes appends with the
// final re-read and rewrite of a processor pass. The lock lives in a sidecar
// file because the rewrite replaces the queue file's inode.
func (s *Store) lock() (unlock func(), err error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create queue directory: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue lock: %w", err)
	}

	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to lock queue: %w", err)
	}

	return func() {
		_ = unlockFile(f)
		f.Close()
	}, nil
}
