// Package repo holds the Redis-backed session history.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/erpbot/server/internal/agent/model"
	errx "github.com/erpbot/server/internal/core/error"
	logx "github.com/erpbot/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "conversation"

// SessionStore keeps each session as a Redis list of JSON-encoded eino
// messages under <prefix>:<session>:messages.
type SessionStore struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

type SessionStoreOption func(*SessionStore)

// WithKeyPrefix replaces the leading key segment.
func WithKeyPrefix(prefix string) SessionStoreOption {
	return func(s *SessionStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewSessionStore returns a store whose keys expire ttl after the last
// append. A zero ttl keeps sessions forever.
func NewSessionStore(rdb redis.Cmdable, ttl time.Duration, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{rdb: rdb, ttl: ttl, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) key(sessionID string) string {
	return fmt.Sprintf("%s:%s:messages", s.prefix, sessionID)
}

// AddMessage pushes the message and refreshes the TTL in one MULTI/EXEC.
func (s *SessionStore) AddMessage(ctx context.Context, sessionID string, message *schema.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	key := s.key(sessionID)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("append session message failed")
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *SessionStore) LoadHistory(ctx context.Context, sessionID string) (*model.History, error) {
	key := s.key(sessionID)
	rows, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil && err != redis.Nil {
		logx.Error().Err(err).Str("key", key).Msg("load session history failed")
		return nil, errx.WrapRedis(err)
	}

	msgs, err := decodeMessages(rows)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("session history is corrupt")
		return nil, err
	}
	return &model.History{SessionID: sessionID, Messages: msgs}, nil
}

func decodeMessages(rows []string) ([]*schema.Message, error) {
	msgs := make([]*schema.Message, len(rows))
	for i, row := range rows {
		msgs[i] = new(schema.Message)
		if err := json.Unmarshal([]byte(row), msgs[i]); err != nil {
			return nil, fmt.Errorf("decode message at index %d: %w", i, err)
		}
	}
	return msgs, nil
}

func (s *SessionStore) ClearHistory(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	logx.Debug().Str("session_id", sessionID).Msg("session history cleared")
	return nil
}

func (s *SessionStore) GetMessageCount(ctx context.Context, sessionID string) (int, error) {
	n, err := s.rdb.LLen(ctx, s.key(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.ConversationRepository = (*SessionStore)(nil)
