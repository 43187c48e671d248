package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "scamtrap"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps each conversation as a single JSON document whose TTL is
// refreshed on every save. Operations that hit a connectivity or timeout error
// are served by an embedded LocalStore instead; other redis errors are
// returned to the caller. Data written to the fallback is not replayed to
// redis when connectivity returns, so conversations touched during an outage
// can diverge between the two backends.
type RedisStore struct {
	client   redis.UniversalClient
	ttl      time.Duration
	fallback *LocalStore
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:   client,
		ttl:      ttl,
		fallback: NewLocalStore(),
	}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:conversation:%s", keyNamespace, id)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Conversation, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		if !isConnectivityError(err) {
			return nil, fmt.Errorf("failed to load conversation %s: %w", id, err)
		}
		slog.Warn("Redis get failed, using local fallback",
			"conversation_id", id,
			"error", err)
		return s.fallback.Get(ctx, id)
	}

	var conversation Conversation
	if err = json.Unmarshal([]byte(data), &conversation); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", id, err)
	}

	return &conversation, nil
}

func (s *RedisStore) Save(ctx context.Context, conversation *Conversation) error {
	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to encode conversation %s: %w", conversation.ID, err)
	}

	if err = s.client.Set(ctx, s.key(conversation.ID), data, s.ttl).Err(); err != nil {
		if !isConnectivityError(err) {
			return fmt.Errorf("failed to store conversation %s: %w", conversation.ID, err)
		}
		slog.Warn("Redis set failed, using local fallback",
			"conversation_id", conversation.ID,
			"error", err)
		return s.fallback.Save(ctx, conversation)
	}

	return nil
}

// isConnectivityError reports whether err is a network or timeout failure, as
// opposed to a redis-level error like a wrong-type reply. Only the former
// redirect to the local fallback.
func isConnectivityError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// AppendTurn reads the whole record, mutates it in memory and writes it back.
// Concurrent writers to the same conversation can lose updates (last write
// wins).
func (s *RedisStore) AppendTurn(ctx context.Context, id string, turn Turn) error {
	conversation, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if conversation == nil {
		conversation = NewConversation(id)
	}

	conversation.Turns = append(conversation.Turns, turn)
	conversation.LastUpdated = time.Now().UTC()

	return s.Save(ctx, conversation)
}

func (s *RedisStore) UpdateAgentState(ctx context.Context, id string, state AgentState) error {
	conversation, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("conversation %s not found", id)
	}

	conversation.AgentState = state
	conversation.LastUpdated = time.Now().UTC()

	return s.Save(ctx, conversation)
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
