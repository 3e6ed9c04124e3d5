package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-client/internal/domain"
	"github.com/spec-kit/helpdesk-client/internal/events"
	"github.com/spec-kit/helpdesk-client/internal/persistence"
	"github.com/spec-kit/helpdesk-client/pkg/util"
)

const (
	snapshotKeyCategories  = "helpdesk:refdata:categories"
	snapshotKeyTechnicians = "helpdesk:refdata:technicians"
)

// RefFetcher is the remote side of the reference-data cache.
type RefFetcher interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	ListTechnicians(ctx context.Context) ([]domain.Actor, error)
}

// refLatch is the loaded-once guard for one reference kind. While a fetch
// is in flight every other caller waits on the same channel instead of
// issuing a duplicate request. A failed fetch leaves loaded unset so the
// next call retries.
type refLatch struct {
	loaded   bool
	inflight chan struct{}
	err      error
}

// ReferenceData lazily caches the low-churn collections (categories,
// technicians) for the session. An optional Redis tier shares fetched
// snapshots across sessions with a short TTL; the cache works identically
// without it.
type ReferenceData struct {
	fetcher     RefFetcher
	snapshots   *persistence.Redis
	snapshotTTL time.Duration
	dispatcher  events.Dispatcher
	logger      *zap.Logger

	mu          sync.Mutex
	categories  []domain.Category
	technicians []domain.Actor
	catLatch    refLatch
	techLatch   refLatch
}

// NewReferenceData builds the cache. snapshots and dispatcher may be nil.
func NewReferenceData(fetcher RefFetcher, snapshots *persistence.Redis, snapshotTTL time.Duration, dispatcher events.Dispatcher, logger *zap.Logger) *ReferenceData {
	if logger == nil {
		logger = zap.NewNop()
	}
	if snapshotTTL <= 0 {
		snapshotTTL = 5 * time.Minute
	}
	return &ReferenceData{
		fetcher:     fetcher,
		snapshots:   snapshots,
		snapshotTTL: snapshotTTL,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Categories returns the category collection, fetching it at most once per
// session. Concurrent first callers coalesce onto a single remote fetch.
func (r *ReferenceData) Categories(ctx context.Context) ([]domain.Category, error) {
	for {
		r.mu.Lock()
		if r.catLatch.loaded {
			out := append([]domain.Category(nil), r.categories...)
			r.mu.Unlock()
			return out, nil
		}
		if ch := r.catLatch.inflight; ch != nil {
			r.mu.Unlock()
			select {
			case <-ch:
			case <-ctx.Done():
				return nil, util.NewTransport(ctx.Err())
			}
			r.mu.Lock()
			if r.catLatch.loaded {
				out := append([]domain.Category(nil), r.categories...)
				r.mu.Unlock()
				return out, nil
			}
			if r.catLatch.inflight != nil {
				r.mu.Unlock()
				continue
			}
			err := r.catLatch.err
			r.mu.Unlock()
			return nil, err
		}
		ch := make(chan struct{})
		r.catLatch.inflight = ch
		r.catLatch.err = nil
		r.mu.Unlock()

		data, err := r.fetchCategories(ctx, true)

		r.mu.Lock()
		r.catLatch.inflight = nil
		r.catLatch.err = err
		if err == nil {
			r.categories = data
			r.catLatch.loaded = true
		}
		r.mu.Unlock()
		close(ch)

		if err != nil {
			return nil, err
		}
		r.publishLoaded(ctx, "categories", len(data))
		return append([]domain.Category(nil), data...), nil
	}
}

// Technicians behaves like Categories for the technician collection.
func (r *ReferenceData) Technicians(ctx context.Context) ([]domain.Actor, error) {
	for {
		r.mu.Lock()
		if r.techLatch.loaded {
			out := append([]domain.Actor(nil), r.technicians...)
			r.mu.Unlock()
			return out, nil
		}
		if ch := r.techLatch.inflight; ch != nil {
			r.mu.Unlock()
			select {
			case <-ch:
			case <-ctx.Done():
				return nil, util.NewTransport(ctx.Err())
			}
			r.mu.Lock()
			if r.techLatch.loaded {
				out := append([]domain.Actor(nil), r.technicians...)
				r.mu.Unlock()
				return out, nil
			}
			if r.techLatch.inflight != nil {
				r.mu.Unlock()
				continue
			}
			err := r.techLatch.err
			r.mu.Unlock()
			return nil, err
		}
		ch := make(chan struct{})
		r.techLatch.inflight = ch
		r.techLatch.err = nil
		r.mu.Unlock()

		data, err := r.fetchTechnicians(ctx)

		r.mu.Lock()
		r.techLatch.inflight = nil
		r.techLatch.err = err
		if err == nil {
			r.technicians = data
			r.techLatch.loaded = true
		}
		r.mu.Unlock()
		close(ch)

		if err != nil {
			return nil, err
		}
		r.publishLoaded(ctx, "technicians", len(data))
		return append([]domain.Actor(nil), data...), nil
	}
}

// RefreshCategories bypasses the latch and the snapshot tier, replacing
// the cached collection from the remote service.
func (r *ReferenceData) RefreshCategories(ctx context.Context) ([]domain.Category, error) {
	data, err := r.fetcher.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}
	r.writeSnapshot(ctx, snapshotKeyCategories, data)
	r.mu.Lock()
	r.categories = data
	r.catLatch.loaded = true
	r.mu.Unlock()
	r.publishLoaded(ctx, "categories", len(data))
	return append([]domain.Category(nil), data...), nil
}

// RefreshTechnicians bypasses the latch for the technician collection.
func (r *ReferenceData) RefreshTechnicians(ctx context.Context) ([]domain.Actor, error) {
	data, err := r.fetcher.ListTechnicians(ctx)
	if err != nil {
		return nil, err
	}
	r.writeSnapshot(ctx, snapshotKeyTechnicians, data)
	r.mu.Lock()
	r.technicians = data
	r.techLatch.loaded = true
	r.mu.Unlock()
	r.publishLoaded(ctx, "technicians", len(data))
	return append([]domain.Actor(nil), data...), nil
}

// Invalidate drops everything, as on logout.
func (r *ReferenceData) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = nil
	r.technicians = nil
	r.catLatch = refLatch{inflight: r.catLatch.inflight}
	r.techLatch = refLatch{inflight: r.techLatch.inflight}
}

func (r *ReferenceData) fetchCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	if raw := r.readSnapshot(ctx, snapshotKeyCategories); raw != nil {
		var cached []domain.Category
		if err := json.Unmarshal(raw, &cached); err == nil && len(cached) > 0 {
			r.logger.Debug("categories served from snapshot")
			return cached, nil
		}
	}
	data, err := r.fetcher.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	r.writeSnapshot(ctx, snapshotKeyCategories, data)
	return data, nil
}

func (r *ReferenceData) fetchTechnicians(ctx context.Context) ([]domain.Actor, error) {
	if raw := r.readSnapshot(ctx, snapshotKeyTechnicians); raw != nil {
		var cached []domain.Actor
		if err := json.Unmarshal(raw, &cached); err == nil && len(cached) > 0 {
			r.logger.Debug("technicians served from snapshot")
			return cached, nil
		}
	}
	data, err := r.fetcher.ListTechnicians(ctx)
	if err != nil {
		return nil, err
	}
	r.writeSnapshot(ctx, snapshotKeyTechnicians, data)
	return data, nil
}

func (r *ReferenceData) publishLoaded(ctx context.Context, kind string, count int) {
	if r.dispatcher == nil {
		return
	}
	_ = r.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRefDataLoaded,
		Timestamp: time.Now(),
		Payload:   events.RefDataLoadedPayload{Kind: kind, Count: count},
	})
}

func (r *ReferenceData) readSnapshot(ctx context.Context, key string) []byte {
	if r.snapshots == nil {
		return nil
	}
	raw, err := r.snapshots.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	return raw
}

func (r *ReferenceData) writeSnapshot(ctx context.Context, key string, value any) {
	if r.snapshots == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.snapshots.Client.Set(ctx, key, raw, r.snapshotTTL).Err(); err != nil {
		r.logger.Debug("snapshot write failed", zap.String("key", key), zap.Error(err))
	}
}
