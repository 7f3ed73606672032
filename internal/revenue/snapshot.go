package revenue

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"revenueqa/internal/core"
	"revenueqa/internal/log"
)

// Source produces the rows of a revenue table.
type Source interface {
	ReadRevenue(ctx context.Context) ([]core.RevenueRecord, error)
}

// Snapshot is one loaded generation of the table together with its
// vocabulary. Snapshots are never modified once published.
type Snapshot struct {
	Table      *Table
	Vocabulary *Vocabulary
	Version    uint64
	LoadedAt   time.Time
}

// NewSnapshot builds a snapshot from rows that are already in memory.
func NewSnapshot(records []core.RevenueRecord, version uint64) *Snapshot {
	t := NewTable(records)
	return &Snapshot{
		Table:      t,
		Vocabulary: NewVocabulary(t),
		Version:    version,
		LoadedAt:   time.Now(),
	}
}

// Store publishes the current Snapshot. Readers call Current without
// locking; Reload swaps in a new snapshot atomically.
type Store struct {
	source  Source
	timeout time.Duration
	logger  *log.Logger

	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	group   singleflight.Group
}

// NewStore creates an empty store. A zero timeout disables the load deadline.
func NewStore(source Source, timeout time.Duration, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		source:  source,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentSnapshot),
	}
}

// Current returns the published snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Ready reports whether a snapshot has been published.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// Reload reads the source and publishes a new snapshot. Concurrent calls
// share one load. On failure the previous snapshot stays in place.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, shared := s.group.Do("reload", func() (any, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	snap := v.(*Snapshot)
	if shared {
		s.logger.DebugContext(ctx, "Reload shared with concurrent caller", log.FieldVersion, snap.Version)
	}
	return snap, nil
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	records, err := s.source.ReadRevenue(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load revenue table", log.FieldError, err)
		return nil, fmt.Errorf("load revenue table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("load revenue table: %w", core.ErrEmptyTable)
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("load revenue table: row %d: %w", i+1, err)
		}
	}

	snap := NewSnapshot(records, s.version.Add(1))
	s.current.Store(snap)

	fields := log.NewFields().
		WithOperation(log.OpReload).
		WithSnapshot(snap.Version, snap.Table.Len(), "")
	fields[log.FieldDuration] = time.Since(start).Milliseconds()
	s.logger.InfoContext(ctx, "Revenue table loaded", fields.ToSlice()...)
	return snap, nil
}

// StartAutoReload reloads every interval until ctx is done. Failures are
// logged and the previous snapshot keeps serving.
func (s *Store) StartAutoReload(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.Reload(ctx); err != nil {
					s.logger.Warn("Scheduled reload failed, keeping previous snapshot", log.FieldError, err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
