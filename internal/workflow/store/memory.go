package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/impactility/vc-api/internal/workflow/exchange"
	"github.com/impactility/vc-api/internal/workflow/models"
)

// InMemoryStore is an in-memory implementation of Store for tests or local
// use. It is safe for concurrent access but does not persist across process
// restarts. Records are held as serialized JSON so callers never alias the
// stored state, mirroring the blob persistence of the durable backends.
type InMemoryStore struct {
	mu        sync.RWMutex
	workflows map[string][]byte
	exchanges map[string][]byte
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		workflows: make(map[string][]byte),
		exchanges: make(map[string][]byte),
	}
}

func exchangeKey(workflowID, exchangeID string) string {
	return workflowID + "/" + exchangeID
}

// InsertWorkflow stores a workflow definition, failing on id collision.
func (s *InMemoryStore) InsertWorkflow(_ context.Context, def models.WorkflowDefinition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.workflows[def.WorkflowID]; exists {
		return ErrConflict
	}
	s.workflows[def.WorkflowID] = raw
	return nil
}

// FindWorkflow retrieves a workflow definition by id or returns ErrNotFound.
func (s *InMemoryStore) FindWorkflow(_ context.Context, workflowID string) (models.WorkflowDefinition, error) {
	s.mu.RLock()
	raw, ok := s.workflows[workflowID]
	s.mu.RUnlock()
	if !ok {
		return models.WorkflowDefinition{}, ErrNotFound
	}

	var def models.WorkflowDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return models.WorkflowDefinition{}, fmt.Errorf("unmarshal workflow: %w", err)
	}
	return def, nil
}

// InsertExchange stores a new exchange, failing on id collision.
func (s *InMemoryStore) InsertExchange(_ context.Context, ex *exchange.Exchange) error {
	raw, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal exchange: %w", err)
	}

	key := exchangeKey(ex.WorkflowID, ex.ExchangeID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.exchanges[key]; exists {
		return ErrConflict
	}
	s.exchanges[key] = raw
	return nil
}

// FindExchange retrieves an exchange by (workflowId, exchangeId) or returns
// ErrNotFound.
func (s *InMemoryStore) FindExchange(_ context.Context, workflowID, exchangeID string) (*exchange.Exchange, error) {
	s.mu.RLock()
	raw, ok := s.exchanges[exchangeKey(workflowID, exchangeID)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var ex exchange.Exchange
	if err := json.Unmarshal(raw, &ex); err != nil {
		return nil, fmt.Errorf("unmarshal exchange: %w", err)
	}
	return &ex, nil
}

// SaveExchange persists a mutated exchange with a compare-and-swap on its
// version. The losing writer of a concurrent update gets ErrConflict.
func (s *InMemoryStore) SaveExchange(_ context.Context, ex *exchange.Exchange) error {
	key := exchangeKey(ex.WorkflowID, ex.ExchangeID)

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.exchanges[key]
	if !ok {
		return ErrNotFound
	}
	var stored exchange.Exchange
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("unmarshal exchange: %w", err)
	}
	if stored.Version != ex.Version {
		return ErrConflict
	}

	ex.Version++
	updated, err := json.Marshal(ex)
	if err != nil {
		ex.Version--
		return fmt.Errorf("marshal exchange: %w", err)
	}
	s.exchanges[key] = updated
	return nil
}
