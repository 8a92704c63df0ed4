package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/impactility/vc-api/internal/workflow/exchange"
	"github.com/impactility/vc-api/internal/workflow/models"
)

const (
	workflowKeyPrefix = "vcapi:workflow:"
	exchangeKeyPrefix = "vcapi:exchange:"
)

// RedisStore persists workflows and exchanges as JSON values in Redis.
// Exchange saves use WATCH so the version check and the write are atomic;
// a concurrent writer invalidates the transaction and loses with
// ErrConflict.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func workflowKey(workflowID string) string {
	return workflowKeyPrefix + workflowID
}

func redisExchangeKey(workflowID, exchangeID string) string {
	return exchangeKeyPrefix + workflowID + ":" + exchangeID
}

func (s *RedisStore) InsertWorkflow(ctx context.Context, def models.WorkflowDefinition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}
	ok, err := s.client.SetNX(ctx, workflowKey(def.WorkflowID), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (s *RedisStore) FindWorkflow(ctx context.Context, workflowID string) (models.WorkflowDefinition, error) {
	raw, err := s.client.Get(ctx, workflowKey(workflowID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.WorkflowDefinition{}, ErrNotFound
	}
	if err != nil {
		return models.WorkflowDefinition{}, fmt.Errorf("find workflow: %w", err)
	}
	var def models.WorkflowDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return models.WorkflowDefinition{}, fmt.Errorf("unmarshal workflow: %w", err)
	}
	return def, nil
}

func (s *RedisStore) InsertExchange(ctx context.Context, ex *exchange.Exchange) error {
	raw, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal exchange: %w", err)
	}
	ok, err := s.client.SetNX(ctx, redisExchangeKey(ex.WorkflowID, ex.ExchangeID), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (s *RedisStore) FindExchange(ctx context.Context, workflowID, exchangeID string) (*exchange.Exchange, error) {
	raw, err := s.client.Get(ctx, redisExchangeKey(workflowID, exchangeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find exchange: %w", err)
	}
	var ex exchange.Exchange
	if err := json.Unmarshal(raw, &ex); err != nil {
		return nil, fmt.Errorf("unmarshal exchange: %w", err)
	}
	return &ex, nil
}

func (s *RedisStore) SaveExchange(ctx context.Context, ex *exchange.Exchange) error {
	key := redisExchangeKey(ex.WorkflowID, ex.ExchangeID)
	next := *ex
	next.Version = ex.Version + 1

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load exchange: %w", err)
		}
		var stored exchange.Exchange
		if err := json.Unmarshal(raw, &stored); err != nil {
			return fmt.Errorf("unmarshal exchange: %w", err)
		}
		if stored.Version != ex.Version {
			return ErrConflict
		}

		updated, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("marshal exchange: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	if err != nil {
		return err
	}

	ex.Version = next.Version
	return nil
}
