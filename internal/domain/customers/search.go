package customers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
)

// SearchDocument is the searchable projection of a customer record.
type SearchDocument struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	CustomerType  string `json:"customer_type"`
	AccountNumber string `json:"account_number"`
	Tags          string `json:"tags"`
}

// SearchHit pairs a matched document with its relevance score.
type SearchHit struct {
	Document SearchDocument
	Score    float64
	RecordID uuid.UUID
}

// SearchIndex provides full-text search over the customer directory using
// Bleve. It supports fuzzy matching and relevance scoring; queries are
// always scoped to one tenant.
type SearchIndex struct {
	index   bleve.Index
	indexMu sync.RWMutex
	path    string // empty for in-memory
}

// NewSearchIndex creates a search index. If path is empty the index lives
// in memory; otherwise it is created or reopened on disk.
func NewSearchIndex(path string) (*SearchIndex, error) {
	si := &SearchIndex{path: path}

	var index bleve.Index
	var err error

	indexMapping := buildIndexMapping()

	if path == "" {
		index, err = bleve.NewMemOnly(indexMapping)
	} else {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
				return nil, fmt.Errorf("failed to create index directory: %w", mkdirErr)
			}
			index, err = bleve.New(path, indexMapping)
		} else {
			index, err = bleve.Open(path)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	si.index = index
	return si, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("tenant_id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("phone", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("email", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("address", textFieldMapping)
	docMapping.AddFieldMappingsAt("customer_type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("account_number", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("tags", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name

	return indexMapping
}

// IndexRecords upserts the given records into the index in one batch.
func (si *SearchIndex) IndexRecords(records []*Record) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	batch := si.index.NewBatch()

	for _, record := range records {
		doc := SearchDocument{
			ID:            record.ID.String(),
			TenantID:      record.TenantID.String(),
			Name:          record.Name,
			Phone:         record.Phone,
			Email:         record.Email,
			Address:       record.Address,
			CustomerType:  record.CustomerType,
			AccountNumber: record.AccountNumber,
			Tags:          strings.Join(record.Tags, " "),
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to index customer %s: %w", record.ID, err)
		}
	}

	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

// Delete removes one record from the index.
func (si *SearchIndex) Delete(id uuid.UUID) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	return si.index.Delete(id.String())
}

// Search performs a tenant-scoped full-text search with typo tolerance.
func (si *SearchIndex) Search(tenantID uuid.UUID, query string, limit int) ([]SearchHit, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	tenantQuery := bleve.NewTermQuery(tenantID.String())
	tenantQuery.SetField("tenant_id")

	boolQuery := bleve.NewBooleanQuery()
	boolQuery.AddMust(matchQuery)
	boolQuery.AddMust(tenantQuery)

	searchRequest := bleve.NewSearchRequest(boolQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return convertHits(searchResults)
}

// SearchWithPrefix performs a tenant-scoped prefix search for
// autocomplete-style lookups.
func (si *SearchIndex) SearchWithPrefix(tenantID uuid.UUID, prefix string, limit int) ([]SearchHit, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	prefixQuery := bleve.NewPrefixQuery(strings.ToLower(prefix))

	tenantQuery := bleve.NewTermQuery(tenantID.String())
	tenantQuery.SetField("tenant_id")

	boolQuery := bleve.NewBooleanQuery()
	boolQuery.AddMust(prefixQuery)
	boolQuery.AddMust(tenantQuery)

	searchRequest := bleve.NewSearchRequest(boolQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("prefix search failed: %w", err)
	}

	return convertHits(searchResults)
}

func convertHits(searchResults *bleve.SearchResult) ([]SearchHit, error) {
	hits := make([]SearchHit, 0, len(searchResults.Hits))

	for _, hit := range searchResults.Hits {
		doc := SearchDocument{ID: hit.ID}

		if tenantID, ok := hit.Fields["tenant_id"].(string); ok {
			doc.TenantID = tenantID
		}
		if name, ok := hit.Fields["name"].(string); ok {
			doc.Name = name
		}
		if phone, ok := hit.Fields["phone"].(string); ok {
			doc.Phone = phone
		}
		if email, ok := hit.Fields["email"].(string); ok {
			doc.Email = email
		}
		if address, ok := hit.Fields["address"].(string); ok {
			doc.Address = address
		}
		if customerType, ok := hit.Fields["customer_type"].(string); ok {
			doc.CustomerType = customerType
		}
		if accountNumber, ok := hit.Fields["account_number"].(string); ok {
			doc.AccountNumber = accountNumber
		}
		if tags, ok := hit.Fields["tags"].(string); ok {
			doc.Tags = tags
		}

		result := SearchHit{Document: doc, Score: hit.Score}
		if recordID, err := uuid.Parse(hit.ID); err == nil {
			result.RecordID = recordID
		}

		hits = append(hits, result)
	}

	return hits, nil
}

// Close closes the underlying index.
func (si *SearchIndex) Close() error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	if si.index != nil {
		return si.index.Close()
	}
	return nil
}
