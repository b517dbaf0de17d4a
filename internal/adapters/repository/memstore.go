package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/watchrank/watchrank/internal/domain/model"
	"github.com/watchrank/watchrank/pkg/metrics"
)

// Hash-sharded, in-memory Store implementation.
//
// Each (userID, topicID) key maps to exactly one shard, so upserts for the
// same key serialize on that shard's mutex while upserts for keys on other
// shards proceed concurrently. Bulk reads lock one shard at a time with a
// read lock; they observe a consistent view per shard, not a global
// snapshot, which is the consistency the leaderboard contract asks for.

const (
	defaultShardCount            = 16
	defaultMetricsUpdateInterval = 5 * time.Second
)

type progressKey struct {
	userID  string
	topicID string
}

type shard struct {
	mu      sync.RWMutex
	records map[progressKey]model.ProgressRecord
}

// MemStore implements Store with sharded maps.
type MemStore struct {
	shards                []*shard
	shardCount            int
	metricsUpdateInterval time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemStore constructs an in-memory store with configuration options.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		shardCount:            defaultShardCount,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		now:                   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[progressKey]model.ProgressRecord)}
	}

	s.stopChan = make(chan struct{})
	metrics.UpdateRepositoryShardCount(s.shardCount)
	s.startMetricsUpdater(ctx)

	return s
}

// Close gracefully shuts down the background metrics goroutine.
func (s *MemStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

func (s *MemStore) shardFor(key progressKey) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.userID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key.topicID))
	return s.shards[int(h.Sum32())%s.shardCount]
}

// Upsert implements Store.Upsert. The write holds only the owning shard's
// lock, so unrelated keys and ranking reads on other shards are not blocked.
func (s *MemStore) Upsert(ctx context.Context, userID, topicID string, pct float64) (model.ProgressRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := model.ValidatePercentage(pct); err != nil {
		metrics.RecordErrorByComponent("repository", "validation")
		return model.ProgressRecord{}, fmt.Errorf("upsert %s/%s: %w", userID, topicID, err)
	}

	key := progressKey{userID: userID, topicID: topicID}
	sh := s.shardFor(key)

	sh.mu.Lock()
	rec, ok := sh.records[key]
	if ok {
		rec.Apply(pct, s.now())
	} else {
		rec = model.NewProgressRecord(userID, topicID, pct, s.now())
	}
	sh.records[key] = rec
	sh.mu.Unlock()

	if !ok {
		metrics.RecordProgressCreated()
	}
	metrics.RecordProgressUpdated()
	return rec, nil
}

// Get implements Store.Get.
func (s *MemStore) Get(ctx context.Context, userID, topicID string) (model.ProgressRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	key := progressKey{userID: userID, topicID: topicID}
	sh := s.shardFor(key)

	sh.mu.RLock()
	rec, ok := sh.records[key]
	sh.mu.RUnlock()

	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.ProgressRecord{}, fmt.Errorf("get %s/%s: %w", userID, topicID, ErrNotFound)
	}
	return rec, nil
}

// ListByTopics implements Store.ListByTopics.
func (s *MemStore) ListByTopics(ctx context.Context, topicIDs []string) ([]model.ProgressRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	want := make(map[string]struct{}, len(topicIDs))
	for _, id := range topicIDs {
		want[id] = struct{}{}
	}

	var out []model.ProgressRecord
	for _, sh := range s.shards {
		sh.mu.RLock()
		for key, rec := range sh.records {
			if _, ok := want[key.topicID]; ok {
				out = append(out, rec)
			}
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// ListAll implements Store.ListAll.
func (s *MemStore) ListAll(ctx context.Context) ([]model.ProgressRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	out := make([]model.ProgressRecord, 0, s.Count(ctx))
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.records {
			out = append(out, rec)
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// Count returns the total number of records across all shards.
func (s *MemStore) Count(ctx context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.records)
		sh.mu.RUnlock()
	}
	return total
}

// startMetricsUpdater starts a background goroutine that refreshes
// repository gauges until Close is called or ctx is canceled.
func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemStore) updateMetrics() {
	total := 0
	for i, sh := range s.shards {
		sh.mu.RLock()
		n := len(sh.records)
		sh.mu.RUnlock()

		total += n
		metrics.UpdateRepositoryRecordsPerShard("shard_"+strconv.Itoa(i), n)
	}
	metrics.UpdateRepositoryRecordsTotal(total)
}
