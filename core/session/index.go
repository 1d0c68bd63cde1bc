package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// userKeyPrefix namespaces the per-user session index.
const userKeyPrefix = "user_sessions:"

// UserIndex tracks which session records belong to a user, so flows like a
// password change can revoke the user's other sessions. It is best-effort by
// design: entries are not updated transactionally with the records they
// point at, and the session store itself provides no cross-request
// concurrency control. The index holds hashed identifiers only.
type UserIndex struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewUserIndex creates a user-session index over client. The per-user set
// expires ttl after its last addition; a non-positive ttl falls back to the
// backend cap used for session records.
func NewUserIndex(client redis.UniversalClient, ttl time.Duration) *UserIndex {
	if ttl <= 0 {
		ttl = sessionEndCap
	}
	return &UserIndex{client: client, ttl: ttl}
}

func (ix *UserIndex) key(userID uuid.UUID) string {
	return userKeyPrefix + userID.String()
}

// Add records that the session identified by id belongs to userID and
// refreshes the set's TTL.
func (ix *UserIndex) Add(ctx context.Context, userID uuid.UUID, id ID) error {
	key := ix.key(userID)

	pipe := ix.client.TxPipeline()
	pipe.SAdd(ctx, key, id.Hash())
	pipe.Expire(ctx, key, ix.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}

	return nil
}

// HashedIDs returns the hashed identifiers currently indexed for userID.
func (ix *UserIndex) HashedIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	hashes, err := ix.client.SMembers(ctx, ix.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return hashes, nil
}

// Revoke deletes every indexed session record for userID except those named
// in keep (typically the session performing the revocation), pruning the
// index as it goes.
func (ix *UserIndex) Revoke(ctx context.Context, userID uuid.UUID, keep ...ID) error {
	hashes, err := ix.HashedIDs(ctx, userID)
	if err != nil {
		return err
	}

	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id.Hash()] = struct{}{}
	}

	key := ix.key(userID)
	for _, hash := range hashes {
		if _, ok := kept[hash]; ok {
			continue
		}

		pipe := ix.client.TxPipeline()
		pipe.Del(ctx, keyPrefix+hash)
		pipe.SRem(ctx, key, hash)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}

	return nil
}
