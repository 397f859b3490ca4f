package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "wfe:session:"
	indexKeyPrefix   = "wfe:session-idx:"
)

// RedisStore is a Redis-backed Session Store, for deployments that run
// more than one engine process against the same session state.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisStore connects to addr and verifies reachability before
// returning, mirroring the queue trigger's connect-then-ping lifecycle.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: connecting to redis: %w", err)
	}

	return &RedisStore{client: client, now: time.Now}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sessionRedisKey(id string) string {
	return sessionKeyPrefix + id
}

func indexRedisKey(channel Channel, subscriber string) string {
	return indexKeyPrefix + string(channel) + ":" + subscriber
}

func ttlFor(rec *Record, now time.Time) time.Duration {
	if rec.ExpiresAt == nil {
		return 0
	}
	remaining := rec.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return time.Millisecond
	}
	return remaining
}

func (s *RedisStore) readRaw(ctx context.Context, sessionID string) (*Record, error) {
	raw, err := s.client.Get(ctx, sessionRedisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) persist(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionRedisKey(rec.SessionID), raw, ttlFor(rec, s.now())).Err()
}

func (s *RedisStore) Create(ctx context.Context, channel Channel, subscriber string, initialData map[string]any, ttl time.Duration) (*Record, error) {
	idxKey := indexRedisKey(channel, subscriber)

	existingID, err := s.client.Get(ctx, idxKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	if existingID != "" {
		existing, err := s.readRaw(ctx, existingID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.Active && !existing.expired(s.now()) {
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

	if err := s.persist(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, idxKey, rec.SessionID, ttl).Err(); err != nil {
		return nil, err
	}
	return rec.clone(), nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	rec, err := s.readRaw(ctx, sessionID)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.expired(s.now()) && rec.Active {
		rec.Active = false
		_ = s.persist(ctx, rec)
	}
	if !rec.Active {
		return nil, nil
	}
	return rec.clone(), nil
}

func (s *RedisStore) FindActive(ctx context.Context, subscriber string, channel Channel) (*Record, error) {
	sessionID, err := s.client.Get(ctx, indexRedisKey(channel, subscriber)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

func (s *RedisStore) UpdateData(ctx context.Context, sessionID string, partial map[string]any) (*Record, error) {
	rec, err := s.readRaw(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.expired(s.now()) || !rec.Active {
		return nil, ErrSessionNotFound
	}

	if rec.Data == nil {
		rec.Data = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		rec.Data[k] = v
	}
	rec.LastActivityAt = s.now()

	if err := s.persist(ctx, rec); err != nil {
		return nil, err
	}
	return rec.clone(), nil
}

func (s *RedisStore) Touch(ctx context.Context, sessionID string) error {
	rec, err := s.readRaw(ctx, sessionID)
	if err != nil || rec == nil {
		return err
	}
	if rec.expired(s.now()) || !rec.Active {
		return nil
	}
	rec.LastActivityAt = s.now()
	return s.persist(ctx, rec)
}

func (s *RedisStore) End(ctx context.Context, sessionID string) error {
	rec, err := s.readRaw(ctx, sessionID)
	if err != nil || rec == nil {
		return err
	}
	rec.Active = false
	if err := s.persist(ctx, rec); err != nil {
		return err
	}

	idxKey := indexRedisKey(rec.Channel, rec.Subscriber)
	current, err := s.client.Get(ctx, idxKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if current == sessionID {
		return s.client.Del(ctx, idxKey).Err()
	}
	return nil
}

func (s *RedisStore) Sweep(ctx context.Context) (int, error) {
	count := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			return count, err
		}
		for _, key := range keys {
			id := key[len(sessionKeyPrefix):]
			rec, err := s.readRaw(ctx, id)
			if err != nil || rec == nil {
				continue
			}
			if rec.Active && rec.expired(s.now()) {
				rec.Active = false
				if err := s.persist(ctx, rec); err == nil {
					count++
				}
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return count, nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
