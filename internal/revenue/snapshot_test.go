package revenue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"revenueqa/internal/core"
)

type fakeSource struct {
	mu      sync.Mutex
	records []core.RevenueRecord
	err     error
	calls   atomic.Int32
	delay   time.Duration
}

func (f *fakeSource) ReadRevenue(ctx context.Context) ([]core.RevenueRecord, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, f.err
}

func TestStoreReloadPublishes(t *testing.T) {
	src := &fakeSource{records: sampleTable().Records()}
	s := NewStore(src, time.Second, nil)
	if s.Ready() || s.Current() != nil {
		t.Fatalf("store should start empty")
	}
	snap, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if snap.Version != 1 || snap.Table.Len() != 5 || snap.Vocabulary.Customers.Len() != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if s.Current() != snap {
		t.Fatalf("current snapshot not published")
	}

	snap2, err := s.Reload(context.Background())
	if err != nil || snap2.Version != 2 {
		t.Fatalf("expected version 2, got %v (err=%v)", snap2, err)
	}
}

func TestStoreKeepsPreviousSnapshotOnFailure(t *testing.T) {
	src := &fakeSource{records: sampleTable().Records()}
	s := NewStore(src, time.Second, nil)
	first, err := s.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	src.mu.Lock()
	src.err = errors.New("sheet unavailable")
	src.mu.Unlock()
	if _, err := s.Reload(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if s.Current() != first {
		t.Fatalf("failed reload must not replace snapshot")
	}
}

func TestStoreRejectsBadTables(t *testing.T) {
	s := NewStore(&fakeSource{}, 0, nil)
	if _, err := s.Reload(context.Background()); !errors.Is(err, core.ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}

	bad := &fakeSource{records: []core.RevenueRecord{{Customer: "ACME"}}}
	s = NewStore(bad, 0, nil)
	if _, err := s.Reload(context.Background()); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestStoreLoadTimeout(t *testing.T) {
	src := &fakeSource{records: sampleTable().Records(), delay: time.Second}
	s := NewStore(src, 10*time.Millisecond, nil)
	_, err := s.Reload(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestStoreCoalescesConcurrentReloads(t *testing.T) {
	src := &fakeSource{records: sampleTable().Records(), delay: 50 * time.Millisecond}
	s := NewStore(src, time.Second, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Reload(context.Background()); err != nil {
				t.Errorf("reload: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := src.calls.Load(); n >= 8 {
		t.Fatalf("expected concurrent reloads to share loads, got %d calls", n)
	}
}
