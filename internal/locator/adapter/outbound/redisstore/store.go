package redisstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/anthanhphan/go-token-locator/internal/locator/domain"
	"github.com/anthanhphan/go-token-locator/internal/locator/port"
	"github.com/anthanhphan/go-token-locator/pkg/locator"
)

const (
	keyPrefix   = "locator:local:"
	fieldHostID = "host_id"
	fieldTokens = "tokens"
)

// RedisStore keeps the local node state in a Redis hash keyed by endpoint.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

var _ port.NodeStateStore = (*RedisStore)(nil)

func NewRedisStore(client redis.Cmdable, endpoint locator.Endpoint) *RedisStore {
	return &RedisStore{
		client: client,
		key:    keyPrefix + string(endpoint),
	}
}

func (s *RedisStore) LoadLocalState(ctx context.Context) (domain.LocalNodeState, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return domain.LocalNodeState{}, fmt.Errorf("failed to load local state: %w", err)
	}
	if len(fields) == 0 {
		return domain.LocalNodeState{}, domain.ErrStateNotFound
	}
	return decodeState(fields)
}

func (s *RedisStore) SaveLocalState(ctx context.Context, state domain.LocalNodeState) error {
	if err := s.client.HSet(ctx, s.key, encodeState(state)).Err(); err != nil {
		return fmt.Errorf("failed to save local state: %w", err)
	}
	return nil
}

func encodeState(state domain.LocalNodeState) map[string]interface{} {
	tokens := make([]string, len(state.Tokens))
	for i, t := range state.Tokens {
		tokens[i] = t.String()
	}
	return map[string]interface{}{
		fieldHostID: state.HostID.String(),
		fieldTokens: strings.Join(tokens, ","),
	}
}

func decodeState(fields map[string]string) (domain.LocalNodeState, error) {
	var state domain.LocalNodeState

	id, err := uuid.Parse(fields[fieldHostID])
	if err != nil {
		return state, fmt.Errorf("invalid stored host_id: %w", err)
	}
	state.HostID = id

	raw := fields[fieldTokens]
	if raw == "" {
		return state, nil
	}
	for _, part := range strings.Split(raw, ",") {
		t, err := locator.ParseToken(part)
		if err != nil {
			return state, fmt.Errorf("invalid stored token %q: %w", part, err)
		}
		state.Tokens = append(state.Tokens, t)
	}
	return state, nil
}
