package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/doc_service/internal/models"
)

type recorded struct {
	Method string
	Path   string
	Body   map[string]any
}

func newFakeES(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*Index, func() []recorded) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := recorded{Method: r.Method, Path: r.URL.Path}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
		mu.Lock()
		reqs = append(reqs, rec)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return NewIndex(client, "documents"), func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()

	idx, reqs := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":3},"hits":[
			{"_source":{"id":5,"title":"Annual report","description":"d","user_id":9}},
			{"_source":{"id":6,"title":"Report draft","description":"d","user_id":9}}
		]}}`)
	})

	total, docs, err := idx.Search(context.Background(), 9, "report", 10, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, docs, 2)
	assert.Equal(t, uint(5), docs[0].ID)
	assert.Equal(t, "Report draft", docs[1].Title)

	got := reqs()
	require.Len(t, got, 1)
	assert.Equal(t, "/documents/_search", got[0].Path)
	assert.EqualValues(t, 10, got[0].Body["from"])
	assert.EqualValues(t, 2, got[0].Body["size"])

	filter := got[0].Body["query"].(map[string]any)["bool"].(map[string]any)["filter"].(map[string]any)
	assert.EqualValues(t, 9, filter["term"].(map[string]any)["user_id"])
}

func TestIndex_SearchError(t *testing.T) {
	t.Parallel()

	idx, _ := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	})

	_, _, err := idx.Search(context.Background(), 1, "q", 0, 10)
	require.Error(t, err)
}

func TestIndex_IndexAndDelete(t *testing.T) {
	t.Parallel()

	idx, reqs := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, &models.Document{ID: 7, Title: "t", Description: "d", UserID: 3}))
	require.NoError(t, idx.Delete(ctx, 7))
	require.NoError(t, idx.DeleteOwner(ctx, 3))

	got := reqs()
	require.Len(t, got, 3)
	assert.Equal(t, "/documents/_doc/7", got[0].Path)
	assert.Equal(t, "t", got[0].Body["title"])
	assert.EqualValues(t, 3, got[0].Body["user_id"])
	assert.Equal(t, "/documents/_doc/7", got[1].Path)
	assert.Equal(t, "/documents/_delete_by_query", got[2].Path)
}
