package service

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Skotchmaster/doc_service/internal/models"
)

type blobMock struct{ mock.Mock }

func (m *blobMock) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *blobMock) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type indexMock struct{ mock.Mock }

func (m *indexMock) Index(ctx context.Context, doc *models.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *indexMock) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *indexMock) DeleteOwner(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *indexMock) Search(ctx context.Context, userID uint, q string, from, size int) (int64, []models.Document, error) {
	args := m.Called(ctx, userID, q, from, size)
	docs, _ := args.Get(1).([]models.Document)
	return args.Get(0).(int64), docs, args.Error(2)
}

type workerMock struct{ mock.Mock }

func (m *workerMock) Ingest(ctx context.Context, documentID, jobID uint) (string, error) {
	args := m.Called(ctx, documentID, jobID)
	return args.String(0), args.Error(1)
}

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]any
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	e, _ := event.(map[string]any)
	cp := map[string]any{"_topic": topic, "_key": key}
	for k, v := range e {
		cp[k] = v
	}
	p.events = append(p.events, cp)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e["type"].(string))
	}
	return out
}
