package es

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/doc_service/internal/config"
)

const documentMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "long"},
      "user_id":      {"type": "long"},
      "title":        {"type": "text"},
      "description":  {"type": "text"},
      "storage_key":  {"type": "keyword"},
      "url":          {"type": "keyword"},
      "content_type": {"type": "keyword"},
      "size":         {"type": "long"},
      "created_at":   {"type": "date"}
    }
  }
}`

// NewClient connects to Elasticsearch and makes sure the document index
// exists. A blank URL disables search indexing and returns a nil client.
func NewClient(ctx context.Context, cfg config.ESConfig, log *slog.Logger) (*elasticsearch.Client, error) {
	if cfg.URL == "" {
		log.Info("elasticsearch_disabled")
		return nil, nil
	}
	log.Info("elasticsearch_connecting", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: info: %s: %s", res.Status(), body)
	}

	if err := EnsureIndex(ctx, client, cfg.Index); err != nil {
		return nil, err
	}

	log.Info("elasticsearch_connected", "index", cfg.Index)
	return client, nil
}

func EnsureIndex(ctx context.Context, client *elasticsearch.Client, index string) error {
	res, err := client.Indices.Exists([]string{index}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = client.Indices.Create(index,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(strings.NewReader(documentMapping)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: create index: %w", err)
	}
	defer res.Body.Close()
	// 400 here means another instance created the index first
	if res.IsError() && res.StatusCode != 400 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch: create index: %s: %s", res.Status(), body)
	}
	return nil
}
