package builder

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hmartins/customer-directory/internal/domain/customers"
	"github.com/hmartins/customer-directory/internal/domain/imports/analyzer"
	"github.com/hmartins/customer-directory/internal/domain/imports/normalizer"
	"github.com/hmartins/customer-directory/internal/domain/imports/parser"
)

// RowError ties one validation problem to its source row so callers can
// report per-row detail without aborting the batch.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// createdDateLayouts are tried in order when synthesizing an ownership
// timestamp from a mapped created-date column.
var createdDateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"1-2-2006",
	"1/2/06",
}

// addressComponentOrder fixes the reassembly order of address parts.
var addressComponentOrder = []string{"address1", "address2", "city", "state", "zip"}

// Build converts one raw row plus an effective field mapping into a
// customer record. Every value is sanitized by its target type, address
// components are reassembled into a single string, and an ownership entry
// is synthesized when no ownership column was mapped.
//
// A row without a usable name cannot become a record; Build returns a nil
// record and the errors. All other problems are repaired with placeholders
// and the best-effort record is returned alongside any errors.
func Build(row parser.RawRow, mapping map[string]string, tenantID uuid.UUID, now time.Time) (*customers.Record, []RowError) {
	record := &customers.Record{
		TenantID:     tenantID,
		Tags:         []string{},
		CustomFields: map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var errs []RowError
	addressParts := map[string]string{}

	for header, raw := range row.Values {
		// Empty headers never enter the mapping and carry no usable key.
		if header == "" {
			continue
		}
		target, ok := mapping[header]
		if !ok || target == "" {
			// Mapping totality should prevent this; keep the data anyway.
			target = analyzer.CustomPrefix + header
		}
		if target == analyzer.Skip {
			continue
		}

		if name, isCustom := strings.CutPrefix(target, analyzer.CustomPrefix); isCustom {
			if value := normalizer.CleanText(raw); value != "" {
				record.CustomFields[name] = value
			}
			continue
		}

		switch target {
		case "name":
			record.Name = normalizer.CleanText(raw)
		case "phone":
			phone, hasDigit := normalizer.CleanPhone(raw)
			if hasDigit {
				record.Phone = phone
			}
		case "email":
			email, valid := normalizer.CleanEmail(raw)
			switch {
			case valid:
				record.Email = email
			case strings.TrimSpace(raw) != "":
				record.Email = customers.PlaceholderEmail
				errs = append(errs, RowError{
					Row:     row.Line,
					Field:   "email",
					Message: "invalid email " + strings.TrimSpace(raw) + " replaced with placeholder",
				})
			}
		case "address1", "address2", "city", "state", "zip":
			addressParts[target] = normalizer.CleanText(raw)
		case "secondaryContactName":
			record.SecondaryContactName = normalizer.CleanText(raw)
		case "secondaryContactPhone":
			if phone, hasDigit := normalizer.CleanPhone(raw); hasDigit {
				record.SecondaryContactPhone = phone
			}
		case "customerType":
			record.CustomerType = normalizer.CleanText(raw)
		case "accountNumber":
			record.AccountNumber = normalizer.CleanText(raw)
		case "createdDate":
			record.CreatedDate = strings.TrimSpace(raw)
		case "lastActivity":
			record.LastActivity = strings.TrimSpace(raw)
		case "tags":
			record.Tags = append(record.Tags, normalizer.ParseTags(raw)...)
		case "notes":
			if value := normalizer.CleanText(raw); value != "" {
				record.CustomFields["notes"] = value
			}
		case "ownershipHistory":
			if owner := normalizer.CleanText(raw); owner != "" {
				record.OwnershipHistory = append(record.OwnershipHistory, customers.OwnershipEntry{
					Name:      owner,
					Timestamp: now,
					Current:   true,
				})
			}
		default:
			// Unrecognized target key. Never lose data silently.
			if value := normalizer.CleanText(raw); value != "" {
				record.CustomFields[header] = value
			}
		}
	}

	record.Address = assembleAddress(addressParts)

	if record.Name == "" {
		errs = append(errs, RowError{Row: row.Line, Field: "name", Message: "missing customer name"})
		return nil, errs
	}

	if record.Phone == "" {
		record.Phone = customers.PlaceholderPhone
	}

	if len(record.OwnershipHistory) == 0 {
		record.OwnershipHistory = append(record.OwnershipHistory, customers.OwnershipEntry{
			Name:      record.Name,
			Timestamp: ownershipTimestamp(record.CreatedDate, now),
			Current:   true,
		})
	}

	return record, errs
}

// assembleAddress joins the present components in a fixed order with ", ".
// A lone address1 value passes through unchanged.
func assembleAddress(parts map[string]string) string {
	var present []string
	for _, key := range addressComponentOrder {
		if value := parts[key]; value != "" {
			present = append(present, value)
		}
	}
	return strings.Join(present, ", ")
}

func ownershipTimestamp(createdDate string, now time.Time) time.Time {
	createdDate = strings.TrimSpace(createdDate)
	if createdDate == "" {
		return now
	}
	for _, layout := range createdDateLayouts {
		if ts, err := time.Parse(layout, createdDate); err == nil {
			return ts
		}
	}
	return now
}
