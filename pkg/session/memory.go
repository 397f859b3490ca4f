package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultShardCount = 32

type shard struct {
	mu      sync.Mutex
	records map[string]*Record
}

// MemoryStore is an in-process Session Store. Session records are sharded
// by session id into independent locks so unrelated sessions never
// contend; the (subscriber, channel) secondary index is guarded by its
// own mutex, always acquired before a shard's.
type MemoryStore struct {
	shards []*shard

	indexMu sync.Mutex
	index   map[string]string // indexKey -> session id

	now func() time.Time
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	shards := make([]*shard, defaultShardCount)
	for i := range shards {
		shards[i] = &shard{records: make(map[string]*Record)}
	}
	return &MemoryStore{
		shards: shards,
		index:  make(map[string]string),
		now:    time.Now,
	}
}

func (s *MemoryStore) shardFor(sessionID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

func (s *MemoryStore) Create(_ context.Context, channel Channel, subscriber string, initialData map[string]any, ttl time.Duration) (*Record, error) {
	key := indexKey(channel, subscriber)

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	if existingID, ok := s.index[key]; ok {
		if existing := s.peek(existingID); existing != nil && existing.Active {
			return nil, ErrSessionConflict
		}
	}

	now := s.now()
	data := make(map[string]any, len(initialData))
	for k, v := range initialData {
		data[k] = v
	}

	rec := &Record{
		SessionID:      uuid.NewString(),
		Channel:        channel,
		Subscriber:     subscriber,
		Data:           data,
		CreatedAt:      now,
		LastActivityAt: now,
		Active:         true,
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		rec.ExpiresAt = &exp
	}

	sh := s.shardFor(rec.SessionID)
	sh.mu.Lock()
	sh.records[rec.SessionID] = rec
	sh.mu.Unlock()

	s.index[key] = rec.SessionID
	return rec.clone(), nil
}

// peek reads a record without the expiry/active transition side effect,
// used only while already holding indexMu to decide Create conflicts.
func (s *MemoryStore) peek(sessionID string) *Record {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	r := sh.records[sessionID]
	if r == nil {
		return nil
	}
	if r.expired(s.now()) {
		r.Active = false
	}
	return r
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Record, error) {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	r := sh.records[sessionID]
	if r == nil {
		return nil, nil
	}
	if r.expired(s.now()) {
		r.Active = false
	}
	if !r.Active {
		return nil, nil
	}
	return r.clone(), nil
}

func (s *MemoryStore) FindActive(_ context.Context, subscriber string, channel Channel) (*Record, error) {
	key := indexKey(channel, subscriber)

	s.indexMu.Lock()
	sessionID, ok := s.index[key]
	s.indexMu.Unlock()
	if !ok {
		return nil, nil
	}

	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	r := sh.records[sessionID]
	if r == nil {
		return nil, nil
	}
	if r.expired(s.now()) {
		r.Active = false
	}
	if !r.Active {
		return nil, nil
	}
	return r.clone(), nil
}

func (s *MemoryStore) UpdateData(_ context.Context, sessionID string, partial map[string]any) (*Record, error) {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	r := sh.records[sessionID]
	if r == nil {
		return nil, ErrSessionNotFound
	}
	if r.expired(s.now()) {
		r.Active = false
	}
	if !r.Active {
		return nil, ErrSessionNotFound
	}

	if r.Data == nil {
		r.Data = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		r.Data[k] = v
	}
	r.LastActivityAt = s.now()
	return r.clone(), nil
}

func (s *MemoryStore) Touch(_ context.Context, sessionID string) error {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	r := sh.records[sessionID]
	if r == nil {
		return nil
	}
	if r.expired(s.now()) {
		r.Active = false
		return nil
	}
	if !r.Active {
		return nil
	}
	r.LastActivityAt = s.now()
	return nil
}

func (s *MemoryStore) End(_ context.Context, sessionID string) error {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	r := sh.records[sessionID]
	if r == nil {
		sh.mu.Unlock()
		return nil
	}
	r.Active = false
	key := indexKey(r.Channel, r.Subscriber)
	sh.mu.Unlock()

	s.indexMu.Lock()
	if s.index[key] == sessionID {
		delete(s.index, key)
	}
	s.indexMu.Unlock()
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	now := s.now()
	count := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, r := range sh.records {
			if r.Active && r.expired(now) {
				r.Active = false
				count++
			}
		}
		sh.mu.Unlock()
	}
	return count, nil
}

func (s *MemoryStore) HealthCheck(_ context.Context) error {
	return nil
}
