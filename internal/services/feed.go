package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"eventbooking/internal/domain"
)

// publish sends v to live subscribers of topic. A failed publish is logged and never fails
// the write that caused it.
func publish(ctx context.Context, feed domain.ChangeFeed, logger *slog.Logger, topic string, v any) {
	if feed == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		logger.ErrorContext(ctx, "encode change", "topic", topic, "err", err)
		return
	}
	if err := feed.Publish(ctx, topic, payload); err != nil {
		logger.WarnContext(ctx, "publish change", "topic", topic, "err", err)
	}
}
