// internal/services/journal/elasticsearch.go - refresh audit sink
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"passbi-cache/config"
	"passbi-cache/internal/utils"
)

// RefreshEntry one refresh outcome indexed to the journal
type RefreshEntry struct {
	Timestamp string `json:"@timestamp"`
	Source    string `json:"source"`
	Operators int    `json:"operators"`
	DurationMs int64 `json:"durationMs"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// ElasticsearchJournal ships refresh outcomes to Elasticsearch. Optional:
// when disabled (no URL configured or unreachable) recording is a no-op,
// mirroring how the store layer degrades.
type ElasticsearchJournal struct {
	client    *elasticsearch.Client
	logger    *utils.Logger
	indexName string
}

// NewElasticsearchJournal creates the journal; returns nil (disabled)
// when no Elasticsearch URL is configured
func NewElasticsearchJournal(cfg *config.Config, logger *utils.Logger) *ElasticsearchJournal {
	if cfg.ElasticsearchURL == "" {
		logger.Debug("sync journal disabled: no Elasticsearch URL")
		return nil
	}

	esConfig := elasticsearch.Config{
		Addresses: []string{cfg.ElasticsearchURL},
	}
	if cfg.ElasticsearchUsername != "" {
		esConfig.Username = cfg.ElasticsearchUsername
		esConfig.Password = cfg.ElasticsearchPassword
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		logger.Errorf("creating Elasticsearch client failed, journal disabled: %v", err)
		return nil
	}

	return &ElasticsearchJournal{
		client:    client,
		logger:    logger,
		indexName: cfg.JournalIndex,
	}
}

// TestConnection verifies the Elasticsearch cluster is reachable
func (ej *ElasticsearchJournal) TestConnection() error {
	info, err := ej.client.Info()
	if err != nil {
		return fmt.Errorf("connexion echouee: %w", err)
	}
	defer info.Body.Close()

	if info.IsError() {
		return fmt.Errorf("erreur de connexion: %s", info.String())
	}
	return nil
}

// RecordRefresh indexes one refresh outcome; failures are logged, never
// propagated - the journal must not affect cache behavior
func (ej *ElasticsearchJournal) RecordRefresh(source string, operators int, duration time.Duration, refreshErr error) {
	if ej == nil {
		return
	}

	entry := RefreshEntry{
		Timestamp:  time.Now().Format(time.RFC3339),
		Source:     source,
		Operators:  operators,
		DurationMs: duration.Milliseconds(),
		Success:    refreshErr == nil,
	}
	if refreshErr != nil {
		entry.Error = refreshErr.Error()
	}

	doc, err := json.Marshal(entry)
	if err != nil {
		ej.logger.Errorf("encoding journal entry failed: %v", err)
		return
	}

	req := esapi.IndexRequest{
		Index: ej.indexName,
		Body:  bytes.NewReader(doc),
	}

	res, err := req.Do(context.Background(), ej.client)
	if err != nil {
		ej.logger.Warnf("indexing journal entry failed: %v", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		ej.logger.Warnf("journal index error [%s]: %s", res.Status(), string(body))
	}
}
