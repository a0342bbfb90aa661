package service

import (
	"strings"

	"github.com/hmartins/customer-directory/internal/domain/customers"
	"github.com/hmartins/customer-directory/internal/domain/imports/normalizer"
)

// duplicateIndex holds the tenant's records keyed by every match rule.
// It is built once per batch and updated as rows resolve, so duplicates
// within the same file are caught without re-reading the store.
type duplicateIndex struct {
	byRawPhone    map[string]*customers.Record
	byDigitsPhone map[string]*customers.Record
	byName        map[string]*customers.Record
	byEmail       map[string]*customers.Record
}

func newDuplicateIndex(existing []*customers.Record) *duplicateIndex {
	index := &duplicateIndex{
		byRawPhone:    map[string]*customers.Record{},
		byDigitsPhone: map[string]*customers.Record{},
		byName:        map[string]*customers.Record{},
		byEmail:       map[string]*customers.Record{},
	}
	for _, record := range existing {
		index.add(record)
	}
	return index
}

// add registers the record under every usable match key. Earlier entries
// win so the first record with a given key stays the match target.
func (ix *duplicateIndex) add(record *customers.Record) {
	if phone := strings.TrimSpace(record.Phone); phone != "" && phone != customers.PlaceholderPhone {
		setIfAbsent(ix.byRawPhone, phone, record)
		if digits := normalizer.DigitsOnly(phone); digits != "" {
			setIfAbsent(ix.byDigitsPhone, digits, record)
		}
	}
	if name := strings.ToLower(strings.TrimSpace(record.Name)); name != "" {
		setIfAbsent(ix.byName, name, record)
	}
	if email := strings.ToLower(strings.TrimSpace(record.Email)); email != "" && email != customers.PlaceholderEmail {
		setIfAbsent(ix.byEmail, email, record)
	}
}

// match applies the duplicate rules in priority order, first match wins:
// raw phone equality, digits-only phone equality, case-insensitive name
// equality, then email equality when both sides carry one.
func (ix *duplicateIndex) match(record *customers.Record) *customers.Record {
	if phone := strings.TrimSpace(record.Phone); phone != "" && phone != customers.PlaceholderPhone {
		if found, ok := ix.byRawPhone[phone]; ok {
			return found
		}
		if digits := normalizer.DigitsOnly(phone); digits != "" {
			if found, ok := ix.byDigitsPhone[digits]; ok {
				return found
			}
		}
	}
	if name := strings.ToLower(strings.TrimSpace(record.Name)); name != "" {
		if found, ok := ix.byName[name]; ok {
			return found
		}
	}
	if email := strings.ToLower(strings.TrimSpace(record.Email)); email != "" && email != customers.PlaceholderEmail {
		if found, ok := ix.byEmail[email]; ok {
			return found
		}
	}
	return nil
}

func setIfAbsent(m map[string]*customers.Record, key string, record *customers.Record) {
	if _, ok := m[key]; !ok {
		m[key] = record
	}
}
