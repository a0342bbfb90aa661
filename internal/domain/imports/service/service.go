package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/hmartins/customer-directory/internal/domain/customers"
	"github.com/hmartins/customer-directory/internal/domain/imports/analyzer"
	"github.com/hmartins/customer-directory/internal/domain/imports/builder"
	"github.com/hmartins/customer-directory/internal/domain/imports/normalizer"
	"github.com/hmartins/customer-directory/internal/domain/imports/parser"
	"github.com/hmartins/customer-directory/internal/domain/imports/sniffer"
)

// Policy decides what happens when an incoming row matches an existing
// customer record.
type Policy string

const (
	PolicySkip      Policy = "skip"
	PolicyUpdate    Policy = "update"
	PolicyOverwrite Policy = "overwrite"
)

// near-duplicate name warnings use this edit-distance ceiling.
const fuzzyNameDistance = 2

const previewRowCount = 5

// ImportOptions configures one import invocation.
type ImportOptions struct {
	// Overrides maps source headers to user corrections: a standard field
	// key, "custom", or "skip".
	Overrides map[string]string
	Policy    Policy
	// Strict fails rows with no usable phone instead of inserting the
	// placeholder.
	Strict bool
}

// Settings carries deployment-level defaults and ceilings applied to every
// invocation. Zero values disable the corresponding bound.
type Settings struct {
	// DefaultPolicy applies when ImportOptions does not pick one.
	DefaultPolicy Policy
	// StrictPhones makes every import fail placeholder-phone rows; per-call
	// ImportOptions.Strict can only tighten, never relax, this.
	StrictPhones bool
	// MaxFileSizeBytes caps the raw size of a workbook upload.
	MaxFileSizeBytes int
	// MaxContentLength caps the decoded text handed to the normalizer.
	MaxContentLength int
	// MaxPerRowErrors truncates Outcome.PerRowErrors; counts stay exact.
	MaxPerRowErrors int
}

// CSVAnalysis is the read-only result of the analysis phase. It carries
// everything a caller needs to render a mapping-confirmation step before
// any write occurs.
type CSVAnalysis struct {
	Headers        []string                       `json:"headers"`
	DetectedFormat string                         `json:"detected_format"`
	FieldMapping   map[string]string              `json:"field_mapping"`
	CustomFields   []analyzer.CustomFieldProposal `json:"custom_fields"`
	SkippedFields  []string                       `json:"skipped_fields"`
	Issues         []string                       `json:"issues"`
	Preview        [][]string                     `json:"preview"`
	RowCount       int                            `json:"row_count"`
}

// Outcome aggregates the result of one import invocation.
type Outcome struct {
	ImportedCount            int               `json:"imported_count"`
	UpdatedCount             int               `json:"updated_count"`
	OverwrittenCount         int               `json:"overwritten_count"`
	SkippedDuplicateCount    int               `json:"skipped_duplicate_count"`
	FailedCount              int               `json:"failed_count"`
	CustomFieldsCreatedCount int               `json:"custom_fields_created_count"`
	PerRowErrors             []builder.RowError `json:"per_row_errors"`
	Warnings                 []string          `json:"warnings"`
}

// Searcher receives the records written by an import so the directory
// index stays current. Indexing is best-effort; failures are logged, never
// surfaced to the caller.
type Searcher interface {
	IndexRecords(records []*customers.Record) error
}

// ImportService runs the full pipeline: normalize, tokenize, detect,
// analyze, apply overrides, build records, resolve duplicates, persist.
type ImportService struct {
	records  customers.RecordStore
	fields   customers.CustomFieldDirectory
	jobs     customers.ImportJobStore
	search   Searcher
	formats  *sniffer.Registry
	settings Settings
	logger   *slog.Logger
}

// NewImportService creates the service. jobs and search may be nil; the
// corresponding side effects are skipped. An unrecognized default policy in
// settings falls back to skip.
func NewImportService(
	records customers.RecordStore,
	fields customers.CustomFieldDirectory,
	jobs customers.ImportJobStore,
	search Searcher,
	settings Settings,
	logger *slog.Logger,
) *ImportService {
	switch settings.DefaultPolicy {
	case PolicySkip, PolicyUpdate, PolicyOverwrite:
	case "":
		settings.DefaultPolicy = PolicySkip
	default:
		logger.Warn("unrecognized default duplicate policy, using skip",
			slog.String("policy", string(settings.DefaultPolicy)))
		settings.DefaultPolicy = PolicySkip
	}
	return &ImportService{
		records:  records,
		fields:   fields,
		jobs:     jobs,
		search:   search,
		formats:  sniffer.NewRegistry(),
		settings: settings,
		logger:   logger,
	}
}

// AnalyzeContent runs the analysis phase over raw CSV text. Nothing is
// written; the result lets a caller confirm or correct the mapping before
// committing.
func (s *ImportService) AnalyzeContent(_ context.Context, tenantID uuid.UUID, content string) (*CSVAnalysis, error) {
	doc, err := s.parseDocument(content)
	if err != nil {
		return nil, err
	}
	analysis := s.analyzeDocument(doc, nil)

	s.logger.Info("analyzed import file",
		slog.String("tenant_id", tenantID.String()),
		slog.String("format", analysis.DetectedFormat),
		slog.Int("headers", len(doc.Headers)),
		slog.Int("rows", len(doc.Rows)))

	return s.buildAnalysisResult(doc, analysis), nil
}

// Import runs the full pipeline over raw CSV text and persists the result.
func (s *ImportService) Import(ctx context.Context, tenantID uuid.UUID, content string, opts ImportOptions) (*Outcome, error) {
	doc, err := s.parseDocument(content)
	if err != nil {
		return nil, err
	}
	return s.importDocument(ctx, tenantID, doc, opts)
}

// ImportWorkbook runs the same pipeline over an XLSX upload.
func (s *ImportService) ImportWorkbook(ctx context.Context, tenantID uuid.UUID, r io.Reader, opts ImportOptions) (*Outcome, error) {
	if max := s.settings.MaxFileSizeBytes; max > 0 {
		data, err := io.ReadAll(io.LimitReader(r, int64(max)+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read workbook: %w", err)
		}
		if len(data) > max {
			return nil, fmt.Errorf("workbook exceeds the %d byte upload limit", max)
		}
		r = bytes.NewReader(data)
	}
	doc, err := parser.ParseWorkbook(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return s.importDocument(ctx, tenantID, doc, opts)
}

func (s *ImportService) parseDocument(content string) (*parser.Document, error) {
	if max := s.settings.MaxContentLength; max > 0 && len(content) > max {
		return nil, fmt.Errorf("import content exceeds the %d byte limit", max)
	}
	normalized := normalizer.NormalizeContent(content)
	doc, err := parser.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	return doc, nil
}

func (s *ImportService) analyzeDocument(doc *parser.Document, overrides map[string]string) *analyzer.Analysis {
	profile := s.formats.Detect(doc.Headers)
	analysis := analyzer.Analyze(doc, profile)
	if len(overrides) > 0 {
		analysis = analyzer.ApplyOverrides(doc, analysis, overrides, s.logger)
	}
	return analysis
}

func (s *ImportService) buildAnalysisResult(doc *parser.Document, analysis *analyzer.Analysis) *CSVAnalysis {
	return &CSVAnalysis{
		Headers:        doc.Headers,
		DetectedFormat: analysis.DetectedFormat,
		FieldMapping:   analysis.FieldMapping,
		CustomFields:   analysis.CustomFields,
		SkippedFields:  analysis.SkippedFields,
		Issues:         analysis.Issues,
		Preview:        doc.Preview(previewRowCount),
		RowCount:       len(doc.Rows),
	}
}

func (s *ImportService) importDocument(ctx context.Context, tenantID uuid.UUID, doc *parser.Document, opts ImportOptions) (*Outcome, error) {
	if opts.Policy == "" {
		opts.Policy = s.settings.DefaultPolicy
	}
	if s.settings.StrictPhones {
		opts.Strict = true
	}

	analysis := s.analyzeDocument(doc, opts.Overrides)

	outcome := &Outcome{Warnings: append([]string{}, analysis.Issues...)}

	job := s.startJob(ctx, tenantID, len(doc.Rows))

	// Custom fields are materialized once per distinct proposal before any
	// row is processed. Failures drop the field from the created count but
	// never block rows; their values still land as plain custom entries.
	outcome.CustomFieldsCreatedCount = s.materializeCustomFields(ctx, tenantID, analysis.CustomFields)

	existing, err := s.records.ListByTenant(ctx, tenantID)
	if err != nil {
		s.finishJob(ctx, job, outcome, err)
		return nil, fmt.Errorf("failed to load existing customers: %w", err)
	}
	index := newDuplicateIndex(existing)

	now := time.Now()
	var written []*customers.Record

	for _, row := range doc.Rows {
		record, rowErrs := builder.Build(row, analysis.FieldMapping, tenantID, now)
		outcome.PerRowErrors = append(outcome.PerRowErrors, rowErrs...)
		if record == nil {
			outcome.FailedCount++
			continue
		}
		if opts.Strict && record.Phone == customers.PlaceholderPhone {
			outcome.PerRowErrors = append(outcome.PerRowErrors, builder.RowError{
				Row: row.Line, Field: "phone", Message: "no usable phone number",
			})
			outcome.FailedCount++
			continue
		}

		match := index.match(record)
		if match == nil {
			s.warnNearDuplicates(outcome, index, record, row.Line)
			id, err := s.records.Insert(ctx, record)
			if err != nil {
				s.failRow(outcome, row.Line, err)
				continue
			}
			record.ID = id
			index.add(record)
			written = append(written, record)
			outcome.ImportedCount++
			continue
		}

		switch opts.Policy {
		case PolicySkip:
			outcome.SkippedDuplicateCount++
		case PolicyUpdate:
			match.Merge(record, now)
			if err := s.records.UpdateByID(ctx, match.ID, match); err != nil {
				s.failRow(outcome, row.Line, err)
				continue
			}
			index.add(match)
			written = append(written, match)
			outcome.UpdatedCount++
		case PolicyOverwrite:
			record.ID = match.ID
			record.CreatedAt = now
			if err := s.records.ReplaceByID(ctx, match.ID, record); err != nil {
				s.failRow(outcome, row.Line, err)
				continue
			}
			index.add(record)
			written = append(written, record)
			outcome.OverwrittenCount++
		default:
			s.failRow(outcome, row.Line, fmt.Errorf("unknown duplicate policy %q", opts.Policy))
		}
	}

	if max := s.settings.MaxPerRowErrors; max > 0 && len(outcome.PerRowErrors) > max {
		suppressed := len(outcome.PerRowErrors) - max
		outcome.PerRowErrors = outcome.PerRowErrors[:max]
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf(
			"%d additional row errors were recorded but not shown", suppressed))
	}

	s.reindex(written)
	s.finishJob(ctx, job, outcome, nil)

	s.logger.Info("import finished",
		slog.String("tenant_id", tenantID.String()),
		slog.String("policy", string(opts.Policy)),
		slog.Int("imported", outcome.ImportedCount),
		slog.Int("updated", outcome.UpdatedCount),
		slog.Int("overwritten", outcome.OverwrittenCount),
		slog.Int("skipped", outcome.SkippedDuplicateCount),
		slog.Int("failed", outcome.FailedCount))

	return outcome, nil
}

func (s *ImportService) failRow(outcome *Outcome, line int, err error) {
	outcome.PerRowErrors = append(outcome.PerRowErrors, builder.RowError{
		Row: line, Field: "", Message: err.Error(),
	})
	outcome.FailedCount++
}

// materializeCustomFields creates one definition per distinct proposed
// field, reusing any definition of the same name the tenant already has.
func (s *ImportService) materializeCustomFields(ctx context.Context, tenantID uuid.UUID, proposals []analyzer.CustomFieldProposal) int {
	created := 0
	for _, proposal := range proposals {
		existing, err := s.fields.FindByTenantAndName(ctx, tenantID, proposal.Name)
		if err != nil {
			s.logger.Warn("custom field lookup failed",
				slog.String("field", proposal.Name), slog.Any("error", err))
			continue
		}
		if existing != nil {
			continue
		}

		def := &customers.CustomFieldDefinition{
			TenantID: tenantID,
			Name:     proposal.Name,
			Type:     string(proposal.Type),
		}
		if proposal.Type == analyzer.FieldTypeSelect {
			def.Options = distinctValues(proposal.SampleValues)
		}
		if _, err := s.fields.Create(ctx, def); err != nil {
			s.logger.Warn("custom field creation failed",
				slog.String("field", proposal.Name), slog.Any("error", err))
			continue
		}
		created++
	}
	return created
}

func (s *ImportService) warnNearDuplicates(outcome *Outcome, index *duplicateIndex, record *customers.Record, line int) {
	name := strings.ToLower(strings.TrimSpace(record.Name))
	for existingName, existing := range index.byName {
		if existingName == name {
			continue
		}
		if fuzzy.LevenshteinDistance(name, existingName) <= fuzzyNameDistance {
			outcome.Warnings = append(outcome.Warnings, fmt.Sprintf(
				"row %d: %q closely resembles existing customer %q", line, record.Name, existing.Name))
			return
		}
	}
}

func (s *ImportService) startJob(ctx context.Context, tenantID uuid.UUID, rows int) *customers.ImportJob {
	if s.jobs == nil {
		return nil
	}
	job := &customers.ImportJob{TenantID: tenantID, Status: "running", RowsTotal: rows}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		s.logger.Warn("failed to record import job", slog.Any("error", err))
		return nil
	}
	return job
}

func (s *ImportService) finishJob(ctx context.Context, job *customers.ImportJob, outcome *Outcome, fatal error) {
	if s.jobs == nil || job == nil {
		return
	}
	status := "succeeded"
	var errMsg *string
	if fatal != nil {
		status = "failed"
		msg := fatal.Error()
		errMsg = &msg
	}
	imported := outcome.ImportedCount + outcome.UpdatedCount + outcome.OverwrittenCount
	if err := s.jobs.FinishJob(ctx, job.ID, status, imported, outcome.FailedCount, errMsg); err != nil {
		s.logger.Warn("failed to finish import job", slog.Any("error", err))
	}
}

func (s *ImportService) reindex(written []*customers.Record) {
	if s.search == nil || len(written) == 0 {
		return
	}
	if err := s.search.IndexRecords(written); err != nil {
		s.logger.Warn("failed to refresh search index", slog.Any("error", err))
	}
}

func distinctValues(values []string) []string {
	seen := map[string]bool{}
	var distinct []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		distinct = append(distinct, v)
	}
	sort.Strings(distinct)
	return distinct
}
