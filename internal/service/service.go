package service

import (
	"context"
	"errors"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrSearchUnavailable = errors.New("search unavailable") // 503
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Indexer interface {
	IndexOrder(ctx context.Context, orderID string, order map[string]any) error
	SearchOrders(ctx context.Context, query string, from, size int) (int64, []map[string]any, error)
}

// Notifier pushes a change to live subscribers. It must not block.
type Notifier interface {
	Notify(ctx context.Context, kind string, data any)
}
