package customers

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordStore is the abstract per-tenant record store the import pipeline
// writes through. The importer loads the tenant snapshot once per batch and
// issues per-row writes; it never scans the store row by row.
type RecordStore interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Record, error)
	Insert(ctx context.Context, record *Record) (uuid.UUID, error)
	UpdateByID(ctx context.Context, id uuid.UUID, record *Record) error
	ReplaceByID(ctx context.Context, id uuid.UUID, record *Record) error
}

// CustomFieldDirectory materializes dynamic field definitions. Consulted
// once per distinct proposed field per import; creation is idempotent at
// the call site via FindByTenantAndName.
type CustomFieldDirectory interface {
	FindByTenantAndName(ctx context.Context, tenantID uuid.UUID, name string) (*CustomFieldDefinition, error)
	Create(ctx context.Context, def *CustomFieldDefinition) (uuid.UUID, error)
}

// ImportJobStore tracks import invocations for auditing and retention.
type ImportJobStore interface {
	CreateJob(ctx context.Context, job *ImportJob) error
	FinishJob(ctx context.Context, id uuid.UUID, status string, imported, failed int, errMsg *string) error
	PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
