// Package store persists workflow definitions and exchange aggregates.
// Exchanges are stored as opaque JSON blobs with a monotonic version
// counter; saves are compare-and-swap so the read-modify-write cycle of the
// protocol engine cannot lose transitions to a concurrent writer.
package store

import (
	"context"

	"github.com/impactility/vc-api/internal/workflow/exchange"
	"github.com/impactility/vc-api/internal/workflow/models"
	dErrors "github.com/impactility/vc-api/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

	// ErrConflict reports an insert collision or a lost compare-and-swap.
	ErrConflict = dErrors.New(dErrors.CodeConflict, "record was modified concurrently")
)

// Store is the persistence contract for workflow and exchange aggregates.
//
// InsertWorkflow and InsertExchange fail with ErrConflict when the id
// already exists. SaveExchange succeeds only when the persisted version
// matches ex.Version; on success the stored and in-memory versions are both
// incremented, otherwise ErrConflict is returned and the aggregate is left
// untouched.
type Store interface {
	InsertWorkflow(ctx context.Context, def models.WorkflowDefinition) error
	FindWorkflow(ctx context.Context, workflowID string) (models.WorkflowDefinition, error)

	InsertExchange(ctx context.Context, ex *exchange.Exchange) error
	FindExchange(ctx context.Context, workflowID, exchangeID string) (*exchange.Exchange, error)
	SaveExchange(ctx context.Context, ex *exchange.Exchange) error
}
