package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"revenueqa/internal/core"
	"revenueqa/internal/log"
	"revenueqa/internal/sheets"
)

// ImportSource is one named input of an import run.
type ImportSource struct {
	Name   string
	Reader sheets.RevenueReader
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	BatchID string
	Rows    int
	Sources []string
}

// ImportService copies revenue rows from one or more readers into a
// writable store as a single batch.
type ImportService struct {
	writer      sheets.RevenueWriter
	logger      *log.Logger
	parallelism int
}

func NewImportService(writer sheets.RevenueWriter, logger *log.Logger) *ImportService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ImportService{
		writer:      writer,
		logger:      logger.WithComponent(log.ComponentImport),
		parallelism: 4,
	}
}

// Import reads all sources concurrently and replaces the stored table with
// their rows, concatenated in source order. Nothing is written if any source
// fails or the combined table is empty.
func (s *ImportService) Import(ctx context.Context, sources []ImportSource) (ImportResult, error) {
	if len(sources) == 0 {
		return ImportResult{}, errors.New("no import sources")
	}

	parts := make([][]core.RevenueRecord, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, src := range sources {
		g.Go(func() error {
			records, err := src.Reader.ReadRevenue(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name, err)
			}
			parts[i] = records
			s.logger.DebugContext(gctx, "Source parsed", log.FieldSource, src.Name, log.FieldRows, len(records))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ImportResult{}, err
	}

	var all []core.RevenueRecord
	names := make([]string, len(sources))
	for i, part := range parts {
		all = append(all, part...)
		names[i] = sources[i].Name
	}
	if len(all) == 0 {
		return ImportResult{}, core.ErrEmptyTable
	}

	batchID, err := s.writer.ReplaceRevenue(ctx, strings.Join(names, ","), all)
	if err != nil {
		return ImportResult{}, fmt.Errorf("store import: %w", err)
	}

	fields := log.NewFields().
		WithOperation(log.OpImport).
		WithSnapshot(0, len(all), strings.Join(names, ","))
	fields["batch_id"] = batchID
	s.logger.InfoContext(ctx, "Import completed", fields.ToSlice()...)

	return ImportResult{BatchID: batchID, Rows: len(all), Sources: names}, nil
}

// Mirror repeats an import on a fixed interval, e.g. to keep a local SQLite
// copy of a shared spreadsheet.
type Mirror struct {
	service  *ImportService
	sources  []ImportSource
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirror(service *ImportService, sources []ImportSource, interval time.Duration) *Mirror {
	return &Mirror{service: service, sources: sources, interval: interval}
}

// Start runs one import immediately, then one per interval. Returns an error
// if already running.
func (m *Mirror) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("mirror is already running")
	}
	if m.interval <= 0 {
		m.mu.Unlock()
		return fmt.Errorf("invalid mirror interval %v", m.interval)
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	go m.runLoop(ctx)

	m.service.logger.InfoContext(ctx, "Mirror started", "interval", m.interval)
	return nil
}

// Stop signals the loop and waits for the current import to finish.
func (m *Mirror) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	select {
	case <-done:
		m.service.logger.InfoContext(ctx, "Mirror stopped gracefully")
		return nil
	case <-ctx.Done():
		m.service.logger.WarnContext(ctx, "Mirror stop timed out")
		return ctx.Err()
	}
}

func (m *Mirror) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Mirror) runLoop(ctx context.Context) {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.runOnce(ctx)

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runOnce(ctx)
		}
	}
}

func (m *Mirror) runOnce(ctx context.Context) {
	if _, err := m.service.Import(ctx, m.sources); err != nil {
		m.service.logger.ErrorContext(ctx, "Mirror import failed", log.FieldError, err)
	}
}
