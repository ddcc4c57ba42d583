// internal/knowledge/retriever.go
package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/metrics"
)

// Config controls retrieval behavior.
type Config struct {
	Index       string
	FactsTable  string
	MaxSnippets int
	Timeout     time.Duration
}

// MultiRetriever queries the search index and the facts table concurrently
// and merges whatever came back. Retrieval is best-effort: a failing source
// is logged and skipped, never surfaced to the calling flow.
type MultiRetriever struct {
	config   *Config
	db       *sql.DB
	esClient *elasticsearch.Client
	logger   logger.Logger
}

func NewMultiRetriever(config *Config, db *sql.DB, esClient *elasticsearch.Client, log logger.Logger) *MultiRetriever {
	return &MultiRetriever{
		config:   config,
		db:       db,
		esClient: esClient,
		logger: log.With(map[string]interface{}{
			"component": "knowledge",
		}),
	}
}

// Retrieve performs a fresh lookup across both sources. Index hits come
// first, facts rows after, capped at MaxSnippets. Returns an empty slice
// when both sources fail; the error return stays nil so callers fall
// through to unaugmented generation.
func (r *MultiRetriever) Retrieve(ctx context.Context, question string) ([]Snippet, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var indexed, facts []Snippet

	if r.esClient != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snippets, err := r.queryIndex(ctx, question)
			if err != nil {
				metrics.KnowledgeLookups.WithLabelValues("elasticsearch", "error").Inc()
				r.logger.Warn("index lookup failed, degrading", map[string]interface{}{
					"error": err.Error(),
				})
				return
			}
			metrics.KnowledgeLookups.WithLabelValues("elasticsearch", "success").Inc()
			mu.Lock()
			indexed = snippets
			mu.Unlock()
		}()
	}

	if r.db != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snippets, err := r.queryFacts(ctx, question)
			if err != nil {
				metrics.KnowledgeLookups.WithLabelValues("postgres", "error").Inc()
				r.logger.Warn("facts lookup failed, degrading", map[string]interface{}{
					"error": err.Error(),
				})
				return
			}
			metrics.KnowledgeLookups.WithLabelValues("postgres", "success").Inc()
			mu.Lock()
			facts = snippets
			mu.Unlock()
		}()
	}

	wg.Wait()

	merged := append(indexed, facts...)
	if len(merged) > r.config.MaxSnippets {
		merged = merged[:r.config.MaxSnippets]
	}

	r.logger.Debug("retrieval completed", map[string]interface{}{
		"indexHits": len(indexed),
		"factRows":  len(facts),
		"returned":  len(merged),
	})

	return merged, nil
}

func (r *MultiRetriever) queryIndex(ctx context.Context, question string) ([]Snippet, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"text": question,
			},
		},
		"size": r.config.MaxSnippets,
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{r.config.Index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					Source string `json:"source"`
					Text   string `json:"text"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	snippets := make([]Snippet, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if strings.TrimSpace(hit.Source.Text) == "" {
			continue
		}
		source := hit.Source.Source
		if source == "" {
			source = r.config.Index
		}
		snippets = append(snippets, Snippet{Source: source, Text: hit.Source.Text})
	}
	return snippets, nil
}

func (r *MultiRetriever) queryFacts(ctx context.Context, question string) ([]Snippet, error) {
	keywords := extractKeywords(question)
	if len(keywords) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(keywords))
	args := make([]interface{}, len(keywords))
	for i, kw := range keywords {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = "%" + kw + "%"
	}

	query := `SELECT source, fact FROM ` + r.config.FactsTable +
		` WHERE fact ILIKE ANY(ARRAY[` + strings.Join(placeholders, ",") + `]) LIMIT $` + strconv.Itoa(len(keywords)+1)
	args = append(args, r.config.MaxSnippets)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snippets []Snippet
	for rows.Next() {
		var source, fact string
		if err := rows.Scan(&source, &fact); err != nil {
			return nil, err
		}
		snippets = append(snippets, Snippet{Source: source, Text: fact})
	}
	return snippets, rows.Err()
}

// extractKeywords keeps the words worth matching on. Short filler words
// produce ILIKE patterns that match everything.
func extractKeywords(question string) []string {
	var keywords []string
	for _, word := range strings.Fields(question) {
		word = strings.Trim(strings.ToLower(word), ".,?!\"'()")
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// NoopRetriever is used when knowledge augmentation is disabled.
type NoopRetriever struct{}

func (NoopRetriever) Retrieve(ctx context.Context, question string) ([]Snippet, error) {
	return nil, nil
}
