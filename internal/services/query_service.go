package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"revenueqa/internal/cache"
	"revenueqa/internal/core"
	"revenueqa/internal/log"
	"revenueqa/internal/nlq"
	"revenueqa/internal/revenue"
)

// ErrNotReady is returned while no revenue table has been loaded.
var ErrNotReady = errors.New("revenue table not loaded yet")

// Snapshots is the part of revenue.Store the query service needs.
type Snapshots interface {
	Current() *revenue.Snapshot
	Reload(ctx context.Context) (*revenue.Snapshot, error)
}

// Answer is the outcome of one question.
type Answer struct {
	Question        string             `json:"question"`
	Text            string             `json:"answer"`
	Clauses         []nlq.ClauseResult `json:"clauses"`
	SnapshotVersion uint64             `json:"snapshot_version"`
	CacheHit        bool               `json:"cache_hit"`
}

// QueryService answers questions against the current revenue snapshot.
type QueryService struct {
	engine    *nlq.Engine
	snapshots Snapshots
	cache     cache.Cache[[]nlq.ClauseResult]
	logger    *log.StructuredLogger
}

// NewQueryService wires the engine to a snapshot store. answers may be nil
// to disable caching.
func NewQueryService(engine *nlq.Engine, snapshots Snapshots, answers cache.Cache[[]nlq.ClauseResult], logger *log.Logger) *QueryService {
	if logger == nil {
		logger = log.Discard()
	}
	return &QueryService{
		engine:    engine,
		snapshots: snapshots,
		cache:     answers,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentRouter)),
	}
}

// Ready reports whether a snapshot is available.
func (s *QueryService) Ready() bool {
	return s.snapshots.Current() != nil
}

// Ask answers question. Blank questions get nlq.MsgEmptyQuestion rather than
// an error.
func (s *QueryService) Ask(ctx context.Context, question string) (Answer, error) {
	snap := s.snapshots.Current()
	if snap == nil {
		return Answer{}, ErrNotReady
	}

	key := cacheKey(snap.Version, s.engine.Now().Format("2006-01-02"), question)
	clauses, hit := s.lookup(key)
	if !hit {
		clauses = s.engine.Explain(ctx, question, snap)
		if s.cache != nil {
			s.cache.Set(key, clauses)
		}
	}

	s.logger.LogAnswered(ctx, question, len(clauses), hit)

	return Answer{
		Question:        question,
		Text:            nlq.Join(clauses),
		Clauses:         clauses,
		SnapshotVersion: snap.Version,
		CacheHit:        hit,
	}, nil
}

func (s *QueryService) lookup(key string) ([]nlq.ClauseResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

// Reload loads a fresh table and drops cached answers. On failure the
// previous snapshot keeps serving.
func (s *QueryService) Reload(ctx context.Context) (*revenue.Snapshot, error) {
	snap, err := s.snapshots.Reload(ctx)
	if err != nil {
		s.logger.LogError(ctx, "Reload failed", err, log.OpReload, nil)
		return nil, err
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	return snap, nil
}

// Stats describes the current snapshot for health endpoints.
type Stats struct {
	Ready           bool   `json:"ready"`
	SnapshotVersion uint64 `json:"snapshot_version,omitempty"`
	Rows            int    `json:"rows,omitempty"`
	Customers       int    `json:"customers,omitempty"`
	Divisions       int    `json:"divisions,omitempty"`
	AccountOwners   int    `json:"account_owners,omitempty"`
	LoadedAt        string `json:"loaded_at,omitempty"`
}

func (s *QueryService) Stats() Stats {
	snap := s.snapshots.Current()
	if snap == nil {
		return Stats{}
	}
	return Stats{
		Ready:           true,
		SnapshotVersion: snap.Version,
		Rows:            snap.Table.Len(),
		Customers:       snap.Vocabulary.Customers.Len(),
		Divisions:       snap.Vocabulary.Divisions.Len(),
		AccountOwners:   snap.Vocabulary.Owners.Len(),
		LoadedAt:        snap.LoadedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// IsLoadError reports whether err came from loading the table rather than
// from the question.
func IsLoadError(err error) bool {
	return errors.Is(err, ErrNotReady) ||
		errors.Is(err, core.ErrEmptyTable) ||
		errors.Is(err, core.ErrMissingColumn)
}

func cacheKey(version uint64, day, question string) string {
	return fmt.Sprintf("%d|%s|%s", version, day, strings.ToLower(strings.TrimSpace(question)))
}
