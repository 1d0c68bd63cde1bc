package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session records in the backend.
const keyPrefix = "sessions:"

const (
	setModeNX = "NX"
	setModeXX = "XX"
)

// RedisStore persists session records as JSON blobs with a backend TTL
// matching the record's computed expiry. Records are keyed by the one-way
// hash of the identifier, so the raw cookie value never reaches the backend.
type RedisStore[Data any] struct {
	client redis.UniversalClient
	newID  func() (ID, error)
}

// NewRedisStore creates a redis-backed session store. The identifier
// generator is seeded from OS entropy once, at construction.
func NewRedisStore[Data any](client redis.UniversalClient) (*RedisStore[Data], error) {
	// Force the process RNG to initialize now so an unreadable entropy
	// source surfaces at startup instead of on the first request.
	if _, err := NewID(); err != nil {
		return nil, err
	}

	return &RedisStore[Data]{
		client: client,
		newID:  NewID,
	}, nil
}

func (s *RedisStore[Data]) key(id ID) string {
	return keyPrefix + id.Hash()
}

// set writes the record with the given existence mode (NX or XX) and
// refreshes the backend TTL to the record's absolute expiry in the same
// command. Returns false when the existence condition was not met.
func (s *RedisStore[Data]) set(ctx context.Context, id ID, rec *Record[Data], mode string) (bool, error) {
	blob, err := json.Marshal(rec)
	if err != nil {
		return false, errors.Join(ErrEncodeRecord, err)
	}

	err = s.client.SetArgs(ctx, s.key(id), blob, redis.SetArgs{
		Mode:     mode,
		ExpireAt: rec.Expiry.ExpiresAt(),
	}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis set: %w", err)
	}

	return true, nil
}

// Create writes rec under a fresh identifier with must-not-exist semantics.
// On the cryptographically near-impossible collision it regenerates and
// retries. The loop is deliberately uncapped: a cap would trade an
// impossible hang for a possible spurious failure, and in a 128-bit space
// the retry is effectively free.
func (s *RedisStore[Data]) Create(ctx context.Context, rec *Record[Data]) (ID, error) {
	for {
		id, err := s.newID()
		if err != nil {
			return ID{}, err
		}

		ok, err := s.set(ctx, id, rec, setModeNX)
		if err != nil {
			return ID{}, err
		}
		if ok {
			return id, nil
		}
	}
}

// Save updates the record under id with must-already-exist semantics. A
// record that vanished between load and save surfaces as ErrSessionVanished,
// never as a silent create.
func (s *RedisStore[Data]) Save(ctx context.Context, id ID, rec *Record[Data]) error {
	ok, err := s.set(ctx, id, rec, setModeXX)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionVanished
	}
	return nil
}

// Load fetches the record under id. A missing key returns (nil, nil); a
// record that exists but cannot be decoded is an error, since conflating it
// with a miss would silently discard data.
func (s *RedisStore[Data]) Load(ctx context.Context, id ID) (*Record[Data], error) {
	blob, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	rec := new(Record[Data])
	if err := json.Unmarshal(blob, rec); err != nil {
		return nil, errors.Join(ErrDecodeRecord, err)
	}

	return rec, nil
}

// Delete removes the record under id. Deleting an absent key is not an
// error.
func (s *RedisStore[Data]) Delete(ctx context.Context, id ID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
