// Package scheduler implements scheduled maintenance jobs for the
// notification pipeline.
package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"lumiso/internal/types"
)

// DefaultArchiveRetention is how long terminal notifications stay out of the
// archive after their last update.
const DefaultArchiveRetention = 90 * 24 * time.Hour

// DefaultArchiveBatchLimit caps the records serialized per invocation to keep
// the job within Lambda limits.
const DefaultArchiveBatchLimit = 5000

// ArchiveStore selects terminal notifications for archival. Rows are read
// only; the pipeline never deletes notification records.
type ArchiveStore interface {
	SelectTerminalBefore(ctx context.Context, cutoff time.Time, limit int) ([]*types.NotificationRecord, error)
}

// SnapshotSink stores one compressed snapshot under the given key. File and
// object-storage implementations both satisfy this.
type SnapshotSink interface {
	Write(ctx context.Context, key string, data []byte) error
}

// ArchiveConfig tunes the archival job.
type ArchiveConfig struct {
	Retention  time.Duration
	BatchLimit int
}

// ArchiveResult reports one archival run.
type ArchiveResult struct {
	ArchivedCount int    `json:"archived_count"`
	SnapshotKey   string `json:"snapshot_key,omitempty"`
}

// Archiver snapshots terminal notifications (sent, cancelled, or failed with
// an exhausted retry budget) to cold storage as zstd-compressed JSON lines.
type Archiver struct {
	store  ArchiveStore
	sink   SnapshotSink
	clock  types.Clock
	cfg    ArchiveConfig
	logger types.Logger
}

// NewArchiver creates an Archiver, applying defaults for unset config values.
func NewArchiver(store ArchiveStore, sink SnapshotSink, clock types.Clock, cfg ArchiveConfig, logger types.Logger) *Archiver {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultArchiveRetention
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = DefaultArchiveBatchLimit
	}
	return &Archiver{
		store:  store,
		sink:   sink,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// ArchiveTerminal selects terminal notifications last updated before the
// retention cutoff and writes them to the sink as one timestamped snapshot.
// The source rows stay in place; runs are safe to repeat.
func (a *Archiver) ArchiveTerminal(ctx context.Context) (*ArchiveResult, error) {
	now := a.clock.Now()
	cutoff := now.Add(-a.cfg.Retention)

	records, err := a.store.SelectTerminalBefore(ctx, cutoff, a.cfg.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("selecting terminal notifications: %w", err)
	}
	if len(records) == 0 {
		a.logger.Info("no terminal notifications to archive",
			"cutoff", cutoff.Format(time.RFC3339),
		)
		return &ArchiveResult{}, nil
	}

	data, err := serializeJSONL(records)
	if err != nil {
		return nil, fmt.Errorf("serializing notification snapshot: %w", err)
	}

	compressed, err := compressSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("compressing notification snapshot: %w", err)
	}

	key := fmt.Sprintf("notifications/%04d/%02d/snapshot_%s.jsonl.zst",
		now.Year(), now.Month(), now.Format("20060102T150405Z"))

	if err := a.sink.Write(ctx, key, compressed); err != nil {
		return nil, fmt.Errorf("writing snapshot %s: %w", key, err)
	}

	a.logger.Info("terminal notifications archived",
		"count", len(records),
		"snapshot_key", key,
		"cutoff", cutoff.Format(time.RFC3339),
		"raw_bytes", len(data),
		"compressed_bytes", len(compressed),
	)

	return &ArchiveResult{
		ArchivedCount: len(records),
		SnapshotKey:   key,
	}, nil
}

// serializeJSONL renders records as newline-delimited JSON.
func serializeJSONL(records []*types.NotificationRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, n := range records {
		if err := enc.Encode(n); err != nil {
			return nil, fmt.Errorf("marshaling notification %s: %w", n.ID, err)
		}
	}
	return buf.Bytes(), nil
}

// compressSnapshot zstd-compresses the serialized snapshot.
func compressSnapshot(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}
