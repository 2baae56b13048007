package session

import (
	"context"
	"encoding/json"
	"time"

	commonerrors "pediatric-triage/internal/common/errors"
	"pediatric-triage/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "triage:session:"

// RedisStore keeps slot state in a Redis hash per conversation, for
// deployments running more than one service instance. The merge invariant
// comes out of HSET directly: empty incoming values are filtered before the
// write, non-empty fields overwrite, untouched fields stay. The HSET runs in
// a MULTI/EXEC pipeline with the read-back, so a merge is one atomic step in
// Redis arrival order.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "session-redis"}),
	}
}

func sessionKey(conversationID string) string {
	return sessionKeyPrefix + conversationID
}

func (s *RedisStore) MergeEntities(ctx context.Context, conversationID string, entities Slots) (Slots, error) {
	fields := make(map[string]interface{}, len(entities))
	for k, v := range entities {
		if isEmpty(v) {
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			s.logger.Warn("skipping unencodable slot value", map[string]interface{}{
				"conversationId": conversationID,
				"slot":           k,
			})
			continue
		}
		fields[k] = string(encoded)
	}

	key := sessionKey(conversationID)
	pipe := s.client.TxPipeline()
	if len(fields) > 0 {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.ttl)
	}
	getAll := pipe.HGetAll(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, commonerrors.NewSessionStoreUnavailableError(conversationID, err)
	}

	return decodeSlots(getAll.Val()), nil
}

func (s *RedisStore) GetEntities(ctx context.Context, conversationID string) (Slots, error) {
	raw, err := s.client.HGetAll(ctx, sessionKey(conversationID)).Result()
	if err != nil {
		return nil, commonerrors.NewSessionStoreUnavailableError(conversationID, err)
	}
	return decodeSlots(raw), nil
}

func (s *RedisStore) ClearEntities(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, sessionKey(conversationID)).Err(); err != nil {
		return commonerrors.NewSessionStoreUnavailableError(conversationID, err)
	}
	return nil
}

// decodeSlots turns a Redis hash back into slot values. Numbers come back as
// float64, matching what the in-memory store holds after extraction.
func decodeSlots(raw map[string]string) Slots {
	slots := make(Slots, len(raw))
	for k, v := range raw {
		var decoded interface{}
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			slots[k] = v
			continue
		}
		slots[k] = decoded
	}
	return slots
}
