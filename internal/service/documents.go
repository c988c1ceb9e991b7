package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/models"
	"github.com/Skotchmaster/doc_service/internal/repo"
	"github.com/Skotchmaster/doc_service/internal/util"
)

const (
	defaultDocumentTitle       = "Title"
	defaultDocumentDescription = "Uploaded document"
)

type BlobStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (url string, err error)
	Remove(ctx context.Context, key string) error
}

type DocumentIndex interface {
	Index(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id uint) error
	DeleteOwner(ctx context.Context, userID uint) error
	Search(ctx context.Context, userID uint, q string, from, size int) (int64, []models.Document, error)
}

type DocumentService struct {
	Repo   *repo.GormRepo
	Blobs  BlobStorage
	Index  DocumentIndex
	Events EventPublisher
}

type FileInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type SearchResult struct {
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
	Items []models.Document `json:"items"`
}

func storageKey(userID uint, filename string) string {
	return fmt.Sprintf("documents/%d/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
}

func (s *DocumentService) putFile(ctx context.Context, userID uint, f *FileInput) (key, url string, err error) {
	key = storageKey(userID, f.Filename)
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err = s.Blobs.Put(ctx, key, f.Body, f.Size, contentType)
	if err != nil {
		return "", "", fmt.Errorf("store blob: %w", err)
	}
	return key, url, nil
}

func (s *DocumentService) index(ctx context.Context, doc *models.Document) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, doc); err != nil {
		logging.FromContext(ctx).Warn("index_failed", "document_id", doc.ID, "error", err)
	}
}

func (s *DocumentService) Upload(ctx context.Context, userID uint, f *FileInput, title, description string) (*models.Document, error) {
	l := logging.FromContext(ctx).With("svc", "documents.upload")

	if f == nil || f.Body == nil {
		return nil, fmt.Errorf("%w: file is required", ErrValidation)
	}
	if title == "" {
		title = defaultDocumentTitle
	}
	if description == "" {
		description = defaultDocumentDescription
	}

	key, url, err := s.putFile(ctx, userID, f)
	if err != nil {
		l.Error("upload_error", "status", 500, "error", err)
		return nil, err
	}

	doc := &models.Document{
		Title:       title,
		Description: description,
		StorageKey:  key,
		URL:         url,
		ContentType: f.ContentType,
		Size:        f.Size,
		UserID:      userID,
	}
	if err := s.Repo.CreateDocument(ctx, doc); err != nil {
		l.Error("upload_error", "status", 500, "error", err)
		if rmErr := s.Blobs.Remove(ctx, key); rmErr != nil {
			l.Warn("blob_remove_failed", "key", key, "error", rmErr)
		}
		return nil, err
	}
	s.index(ctx, doc)

	publish(ctx, s.Events, TopicDocumentEvents, doc.ID, map[string]any{
		"type":       "document_uploaded",
		"documentID": doc.ID,
		"userID":     userID,
	})
	l.Info("document_uploaded", "document_id", doc.ID, "size", doc.Size)
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, userID uint) ([]models.Document, error) {
	return s.Repo.ListDocuments(ctx, userID)
}

func (s *DocumentService) Get(ctx context.Context, id, userID uint) (*models.Document, error) {
	doc, err := s.Repo.GetDocument(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: document not found or access denied", ErrNotFound)
		}
		return nil, err
	}
	return doc, nil
}

// Update changes the non-empty metadata fields and, when f is given, replaces
// the stored file. The previous blob is removed only after the new one is
// persisted.
func (s *DocumentService) Update(ctx context.Context, id, userID uint, title, description string, f *FileInput) (*models.Document, error) {
	l := logging.FromContext(ctx).With("svc", "documents.update")

	doc, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if title != "" {
		doc.Title = title
	}
	if description != "" {
		doc.Description = description
	}

	var oldKey string
	if f != nil && f.Body != nil {
		key, url, err := s.putFile(ctx, userID, f)
		if err != nil {
			l.Error("update_error", "status", 500, "error", err)
			return nil, err
		}
		oldKey = doc.StorageKey
		doc.StorageKey, doc.URL = key, url
		doc.ContentType, doc.Size = f.ContentType, f.Size
	}

	if err := s.Repo.SaveDocument(ctx, doc); err != nil {
		l.Error("update_error", "status", 500, "error", err)
		return nil, err
	}
	if oldKey != "" {
		if err := s.Blobs.Remove(ctx, oldKey); err != nil {
			l.Warn("blob_remove_failed", "key", oldKey, "error", err)
		}
	}
	s.index(ctx, doc)

	publish(ctx, s.Events, TopicDocumentEvents, doc.ID, map[string]any{
		"type":        "document_updated",
		"documentID":  doc.ID,
		"fileChanged": oldKey != "",
	})
	l.Info("document_updated", "document_id", doc.ID)
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, id, userID uint) error {
	l := logging.FromContext(ctx).With("svc", "documents.delete")

	doc, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteDocument(ctx, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: document not found or access denied", ErrNotFound)
		}
		l.Error("delete_error", "status", 500, "error", err)
		return err
	}

	if doc.StorageKey != "" {
		if err := s.Blobs.Remove(ctx, doc.StorageKey); err != nil {
			l.Warn("blob_remove_failed", "key", doc.StorageKey, "error", err)
		}
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("index_remove_failed", "document_id", id, "error", err)
		}
	}

	publish(ctx, s.Events, TopicDocumentEvents, id, map[string]any{
		"type":       "document_deleted",
		"documentID": id,
	})
	l.Info("document_deleted", "document_id", id)
	return nil
}

// Search runs the query through the search index and falls back to the
// database when no index is configured or the index call fails.
func (s *DocumentService) Search(ctx context.Context, userID uint, q string, page, size int) (*SearchResult, error) {
	l := logging.FromContext(ctx).With("svc", "documents.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	from, limit := util.Calculate(page, size)
	page = from/limit + 1

	if s.Index != nil {
		total, docs, err := s.Index.Search(ctx, userID, q, from, limit)
		if err == nil {
			return &SearchResult{Total: total, Page: page, Size: limit, Items: docs}, nil
		}
		l.Warn("index_search_failed", "error", err)
	}

	total, docs, err := s.Repo.SearchDocuments(ctx, userID, q, from, limit)
	if err != nil {
		l.Error("search_error", "status", 500, "error", err)
		return nil, err
	}
	return &SearchResult{Total: total, Page: page, Size: limit, Items: docs}, nil
}
