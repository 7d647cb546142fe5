package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes snapshots under a base directory, creating key
// subdirectories as needed. Used for local development and testing; object
// storage deployments supply their own SnapshotSink.
type FileSink struct {
	Dir string
}

// Write stores the snapshot at Dir/key.
func (s *FileSink) Write(_ context.Context, key string, data []byte) error {
	path := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot file: %w", err)
	}
	return nil
}
