package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/doc_service/internal/models"
)

// Index keeps document metadata in Elasticsearch for owner-scoped full-text
// search.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{ES: es, Name: name}
}

func encode(body any) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search: encode: %w", err)
	}
	return &buf, nil
}

func check(res *esapi.Response, op string, allow ...int) error {
	if !res.IsError() {
		return nil
	}
	for _, code := range allow {
		if res.StatusCode == code {
			return nil
		}
	}
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("search: %s: %s: %s", op, res.Status(), body)
}

func (i *Index) Index(ctx context.Context, doc *models.Document) error {
	buf, err := encode(doc)
	if err != nil {
		return err
	}
	res, err := i.ES.Index(i.Name, buf,
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(strconv.FormatUint(uint64(doc.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	defer res.Body.Close()
	return check(res, "index")
}

func (i *Index) Delete(ctx context.Context, id uint) error {
	res, err := i.ES.Delete(i.Name, strconv.FormatUint(uint64(id), 10), i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete: %w", err)
	}
	defer res.Body.Close()
	return check(res, "delete", http.StatusNotFound)
}

func (i *Index) DeleteOwner(ctx context.Context, userID uint) error {
	buf, err := encode(map[string]any{
		"query": map[string]any{
			"term": map[string]any{"user_id": userID},
		},
	})
	if err != nil {
		return err
	}
	res, err := i.ES.DeleteByQuery([]string{i.Name}, buf, i.ES.DeleteByQuery.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete by query: %w", err)
	}
	defer res.Body.Close()
	return check(res, "delete by query", http.StatusNotFound)
}

func (i *Index) Search(ctx context.Context, userID uint, query string, from, size int) (int64, []models.Document, error) {
	buf, err := encode(map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"title^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
		"from": from,
		"size": size,
	})
	if err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if err := check(res, "query"); err != nil {
		return 0, nil, err
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode: %w", err)
	}

	docs := make([]models.Document, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		docs[n] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
