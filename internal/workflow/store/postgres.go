package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/impactility/vc-api/internal/workflow/exchange"
	"github.com/impactility/vc-api/internal/workflow/models"
)

// PostgresStore persists workflows and exchanges in PostgreSQL. The exchange
// step history is a single JSONB column; the version column carries the
// compare-and-swap token.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertWorkflow(ctx context.Context, def models.WorkflowDefinition) error {
	stepsJSON, err := json.Marshal(def.Steps)
	if err != nil {
		return fmt.Errorf("marshal workflow steps: %w", err)
	}
	query := `
		INSERT INTO workflows (workflow_id, initial_step, steps)
		VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, def.WorkflowID, def.InitialStep, stepsJSON); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindWorkflow(ctx context.Context, workflowID string) (models.WorkflowDefinition, error) {
	query := `
		SELECT workflow_id, initial_step, steps
		FROM workflows
		WHERE workflow_id = $1`
	var def models.WorkflowDefinition
	var stepsJSON []byte
	err := s.db.QueryRowContext(ctx, query, workflowID).Scan(&def.WorkflowID, &def.InitialStep, &stepsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkflowDefinition{}, ErrNotFound
	}
	if err != nil {
		return models.WorkflowDefinition{}, fmt.Errorf("find workflow: %w", err)
	}
	if err := json.Unmarshal(stepsJSON, &def.Steps); err != nil {
		return models.WorkflowDefinition{}, fmt.Errorf("unmarshal workflow steps: %w", err)
	}
	return def, nil
}

func (s *PostgresStore) InsertExchange(ctx context.Context, ex *exchange.Exchange) error {
	stepsJSON, err := json.Marshal(ex.Steps)
	if err != nil {
		return fmt.Errorf("marshal exchange steps: %w", err)
	}
	query := `
		INSERT INTO exchanges (exchange_id, workflow_id, state, steps, version)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, query, ex.ExchangeID, ex.WorkflowID, string(ex.State), stepsJSON, ex.Version); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindExchange(ctx context.Context, workflowID, exchangeID string) (*exchange.Exchange, error) {
	query := `
		SELECT exchange_id, workflow_id, state, steps, version
		FROM exchanges
		WHERE workflow_id = $1 AND exchange_id = $2`
	var ex exchange.Exchange
	var state string
	var stepsJSON []byte
	err := s.db.QueryRowContext(ctx, query, workflowID, exchangeID).
		Scan(&ex.ExchangeID, &ex.WorkflowID, &state, &stepsJSON, &ex.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find exchange: %w", err)
	}
	ex.State = models.ExchangeState(state)
	if err := json.Unmarshal(stepsJSON, &ex.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal exchange steps: %w", err)
	}
	return &ex, nil
}

func (s *PostgresStore) SaveExchange(ctx context.Context, ex *exchange.Exchange) error {
	stepsJSON, err := json.Marshal(ex.Steps)
	if err != nil {
		return fmt.Errorf("marshal exchange steps: %w", err)
	}
	query := `
		UPDATE exchanges
		SET state = $1, steps = $2, version = version + 1
		WHERE workflow_id = $3 AND exchange_id = $4 AND version = $5`
	res, err := s.db.ExecContext(ctx, query, string(ex.State), stepsJSON, ex.WorkflowID, ex.ExchangeID, ex.Version)
	if err != nil {
		return fmt.Errorf("save exchange: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save exchange: %w", err)
	}
	if affected == 0 {
		// The caller loaded this record, so a zero-row update means the
		// version guard failed rather than the record being absent.
		return ErrConflict
	}
	ex.Version++
	return nil
}

// isUniqueViolation detects a primary key collision (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
