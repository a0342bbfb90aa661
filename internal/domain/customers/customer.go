// Package customers holds the customer-directory domain model and its
// persistence layer: the tenant record store, the dynamic custom-field
// directory, and import job bookkeeping.
package customers

import (
	"time"

	"github.com/google/uuid"
)

// Placeholder values used when lenient import fills a missing required
// field rather than discarding an otherwise-useful row.
const (
	PlaceholderPhone = "No phone provided"
	PlaceholderEmail = "no-email@placeholder.invalid"
)

// OwnershipEntry records one owner in a customer's ownership history.
type OwnershipEntry struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Current   bool      `json:"current,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// Record is one customer in a tenant's directory. Address is always a
// single reconstructed string; the import pipeline never stores separate
// address components.
type Record struct {
	ID                    uuid.UUID         `json:"id"`
	TenantID              uuid.UUID         `json:"tenant_id"`
	Name                  string            `json:"name"`
	Phone                 string            `json:"phone"`
	Address               string            `json:"address"`
	Email                 string            `json:"email,omitempty"`
	SecondaryContactName  string            `json:"secondary_contact_name,omitempty"`
	SecondaryContactPhone string            `json:"secondary_contact_phone,omitempty"`
	CustomerType          string            `json:"customer_type,omitempty"`
	AccountNumber         string            `json:"account_number,omitempty"`
	CreatedDate           string            `json:"created_date,omitempty"`
	LastActivity          string            `json:"last_activity,omitempty"`
	Tags                  []string          `json:"tags"`
	CustomFields          map[string]any    `json:"custom_fields"`
	OwnershipHistory      []OwnershipEntry  `json:"ownership_history"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// CustomFieldDefinition is a tenant-scoped dynamic field materialized the
// first time an import proposes it. Field names are unique per tenant.
type CustomFieldDefinition struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Options   []string  `json:"options,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportJob tracks one import invocation for auditing and retention.
type ImportJob struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	Status       string     `json:"status"` // running | succeeded | failed
	RowsTotal    int        `json:"rows_total"`
	RowsImported int        `json:"rows_imported"`
	RowsFailed   int        `json:"rows_failed"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Merge copies the non-identifier fields of src onto r, preserving r's ID
// and original creation timestamp. Used by the update duplicate policy.
func (r *Record) Merge(src *Record, now time.Time) {
	if src.Name != "" {
		r.Name = src.Name
	}
	if src.Phone != "" && src.Phone != PlaceholderPhone {
		r.Phone = src.Phone
	}
	if src.Address != "" {
		r.Address = src.Address
	}
	if src.Email != "" && src.Email != PlaceholderEmail {
		r.Email = src.Email
	}
	if src.SecondaryContactName != "" {
		r.SecondaryContactName = src.SecondaryContactName
	}
	if src.SecondaryContactPhone != "" {
		r.SecondaryContactPhone = src.SecondaryContactPhone
	}
	if src.CustomerType != "" {
		r.CustomerType = src.CustomerType
	}
	if src.AccountNumber != "" {
		r.AccountNumber = src.AccountNumber
	}
	if src.CreatedDate != "" {
		r.CreatedDate = src.CreatedDate
	}
	if src.LastActivity != "" {
		r.LastActivity = src.LastActivity
	}
	if len(src.Tags) > 0 {
		r.Tags = append(r.Tags, src.Tags...)
	}
	if len(src.CustomFields) > 0 {
		if r.CustomFields == nil {
			r.CustomFields = make(map[string]any, len(src.CustomFields))
		}
		for k, v := range src.CustomFields {
			r.CustomFields[k] = v
		}
	}
	if len(src.OwnershipHistory) > 0 {
		r.OwnershipHistory = src.OwnershipHistory
	}
	r.UpdatedAt = now
}
