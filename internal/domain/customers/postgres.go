package customers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repositories use. pgxmock's
// PgxPoolIface satisfies it, so repository tests run against a mock pool.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository implements RecordStore, CustomFieldDirectory, and
// ImportJobStore over a pgx pool. Structured fields (tags, custom fields,
// ownership history) are stored as JSONB.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository creates the repository.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const recordColumns = `id, tenant_id, name, phone, address, email,
	secondary_contact_name, secondary_contact_phone, customer_type,
	account_number, created_date, last_activity, tags, custom_fields,
	ownership_history, created_at, updated_at`

// ListByTenant loads the tenant's full record snapshot, ordered by creation
// time so duplicate resolution is deterministic.
func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM customers WHERE tenant_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Insert writes a new record and returns its id.
func (r *PostgresRepository) Insert(ctx context.Context, record *Record) (uuid.UUID, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	tags, customFields, ownership, err := marshalRecordJSON(record)
	if err != nil {
		return uuid.Nil, err
	}

	query := `
		INSERT INTO customers (id, tenant_id, name, phone, address, email,
			secondary_contact_name, secondary_contact_phone, customer_type,
			account_number, created_date, last_activity, tags, custom_fields,
			ownership_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = r.pool.Exec(ctx, query,
		record.ID, record.TenantID, record.Name, record.Phone, record.Address,
		record.Email, record.SecondaryContactName, record.SecondaryContactPhone,
		record.CustomerType, record.AccountNumber, record.CreatedDate,
		record.LastActivity, tags, customFields, ownership,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert customer: %w", err)
	}
	return record.ID, nil
}

// UpdateByID writes the merged record back under its existing id, keeping
// the original created_at.
func (r *PostgresRepository) UpdateByID(ctx context.Context, id uuid.UUID, record *Record) error {
	tags, customFields, ownership, err := marshalRecordJSON(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE customers
		SET name = $2, phone = $3, address = $4, email = $5,
			secondary_contact_name = $6, secondary_contact_phone = $7,
			customer_type = $8, account_number = $9, created_date = $10,
			last_activity = $11, tags = $12, custom_fields = $13,
			ownership_history = $14, updated_at = $15
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		id, record.Name, record.Phone, record.Address, record.Email,
		record.SecondaryContactName, record.SecondaryContactPhone,
		record.CustomerType, record.AccountNumber, record.CreatedDate,
		record.LastActivity, tags, customFields, ownership, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceByID overwrites every field of the record at the existing id,
// including created_at (the overwrite policy refreshes it).
func (r *PostgresRepository) ReplaceByID(ctx context.Context, id uuid.UUID, record *Record) error {
	tags, customFields, ownership, err := marshalRecordJSON(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE customers
		SET name = $2, phone = $3, address = $4, email = $5,
			secondary_contact_name = $6, secondary_contact_phone = $7,
			customer_type = $8, account_number = $9, created_date = $10,
			last_activity = $11, tags = $12, custom_fields = $13,
			ownership_history = $14, created_at = $15, updated_at = $16
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		id, record.Name, record.Phone, record.Address, record.Email,
		record.SecondaryContactName, record.SecondaryContactPhone,
		record.CustomerType, record.AccountNumber, record.CreatedDate,
		record.LastActivity, tags, customFields, ownership,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to replace customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByTenantAndName looks up a custom field definition by its unique
// per-tenant name. Returns nil when absent.
func (r *PostgresRepository) FindByTenantAndName(ctx context.Context, tenantID uuid.UUID, name string) (*CustomFieldDefinition, error) {
	query := `
		SELECT id, tenant_id, name, type, options, created_at
		FROM custom_field_definitions
		WHERE tenant_id = $1 AND name = $2`

	def := &CustomFieldDefinition{}
	var options []byte
	err := r.pool.QueryRow(ctx, query, tenantID, name).Scan(
		&def.ID, &def.TenantID, &def.Name, &def.Type, &options, &def.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find custom field: %w", err)
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &def.Options); err != nil {
			return nil, fmt.Errorf("failed to decode custom field options: %w", err)
		}
	}
	return def, nil
}

// Create materializes a custom field definition.
func (r *PostgresRepository) Create(ctx context.Context, def *CustomFieldDefinition) (uuid.UUID, error) {
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}

	options, err := json.Marshal(def.Options)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode custom field options: %w", err)
	}

	query := `
		INSERT INTO custom_field_definitions (id, tenant_id, name, type, options)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err = r.pool.QueryRow(ctx, query, def.ID, def.TenantID, def.Name, def.Type, options).
		Scan(&def.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create custom field: %w", err)
	}
	return def.ID, nil
}

// CreateJob inserts a running import job row.
func (r *PostgresRepository) CreateJob(ctx context.Context, job *ImportJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	query := `
		INSERT INTO import_jobs (id, tenant_id, status, rows_total)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, job.ID, job.TenantID, job.Status, job.RowsTotal).
		Scan(&job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

// FinishJob records the terminal status and counts of an import job.
func (r *PostgresRepository) FinishJob(ctx context.Context, id uuid.UUID, status string, imported, failed int, errMsg *string) error {
	query := `
		UPDATE import_jobs
		SET status = $2, rows_imported = $3, rows_failed = $4,
			error_message = $5, finished_at = now()
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, status, imported, failed, errMsg)
	if err != nil {
		return fmt.Errorf("failed to finish import job: %w", err)
	}
	return nil
}

// PurgeFinishedBefore deletes finished jobs older than the cutoff and
// returns how many were removed.
func (r *PostgresRepository) PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM import_jobs WHERE finished_at IS NOT NULL AND finished_at < $1`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge import jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func marshalRecordJSON(record *Record) (tags, customFields, ownership []byte, err error) {
	if tags, err = json.Marshal(record.Tags); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	if customFields, err = json.Marshal(record.CustomFields); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode custom fields: %w", err)
	}
	if ownership, err = json.Marshal(record.OwnershipHistory); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode ownership history: %w", err)
	}
	return tags, customFields, ownership, nil
}

func scanRecord(rows pgx.Rows) (*Record, error) {
	record := &Record{}
	var tags, customFields, ownership []byte

	err := rows.Scan(
		&record.ID, &record.TenantID, &record.Name, &record.Phone,
		&record.Address, &record.Email, &record.SecondaryContactName,
		&record.SecondaryContactPhone, &record.CustomerType,
		&record.AccountNumber, &record.CreatedDate, &record.LastActivity,
		&tags, &customFields, &ownership, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &record.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}
	if len(customFields) > 0 {
		if err := json.Unmarshal(customFields, &record.CustomFields); err != nil {
			return nil, fmt.Errorf("failed to decode custom fields: %w", err)
		}
	}
	if len(ownership) > 0 {
		if err := json.Unmarshal(ownership, &record.OwnershipHistory); err != nil {
			return nil, fmt.Errorf("failed to decode ownership history: %w", err)
		}
	}
	return record, nil
}
