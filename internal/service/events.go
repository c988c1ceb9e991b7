package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/doc_service/internal/logging"
)

const (
	TopicUserEvents      = "user_events"
	TopicDocumentEvents  = "document_events"
	TopicIngestionEvents = "ingestion_events"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// publish is best-effort: a broker failure is logged and never fails the
// calling operation.
func publish(ctx context.Context, p EventPublisher, topic string, key uint, event map[string]any) {
	if p == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.PublishEvent(pubCtx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
