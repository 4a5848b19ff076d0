package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/models"
	"github.com/Skotchmaster/sweethome/internal/mykafka"
	"github.com/Skotchmaster/sweethome/internal/repo"
)

const sideEffectTimeout = 5 * time.Second

type OrderService struct {
	Repo      *repo.FileRepo
	Publisher Publisher
	// Indexer is optional; without it search reports ErrSearchUnavailable.
	Indexer Indexer
	Live    Notifier
}

func (s *OrderService) ListOrders(ctx context.Context) []models.Order {
	recs := s.Repo.Orders.List(ctx)
	orders := make([]models.Order, len(recs))
	for i, r := range recs {
		orders[i] = models.Order(r)
	}
	return orders
}

// CreateOrder appends the order body as submitted and returns its orderID.
func (s *OrderService) CreateOrder(ctx context.Context, order models.Order) (string, error) {
	if order == nil {
		return "", fmt.Errorf("order body required: %w", ErrValidation)
	}
	if err := s.Repo.Orders.Append(ctx, repo.Record(order)); err != nil {
		return "", fmt.Errorf("save order: %w", err)
	}

	id := order.OrderID()
	s.publish(ctx, id, map[string]any{
		"type":    "order_created",
		"orderID": id,
		"order":   order,
	})
	s.index(ctx, id, order)
	s.notify(ctx, "order_created", order)
	return id, nil
}

// UpdateStatus sets the status of the first order carrying orderID.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Errorf("status required: %w", ErrValidation)
	}

	var updated models.Order
	found, err := s.Repo.Orders.UpdateFirst(ctx,
		func(r repo.Record) bool { return models.Order(r).OrderID() == orderID },
		func(r repo.Record) {
			r["status"] = status
			updated = models.Order(r)
		},
	)
	if err != nil {
		return fmt.Errorf("update order %s: %w", orderID, err)
	}
	if !found {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	s.publish(ctx, orderID, map[string]any{
		"type":    "order_status_updated",
		"orderID": orderID,
		"status":  status,
	})
	s.index(ctx, orderID, updated)
	s.notify(ctx, "order_status_updated", map[string]any{"orderID": orderID, "status": status})
	return nil
}

func (s *OrderService) SearchOrders(ctx context.Context, query string, from, size int) (int64, []map[string]any, error) {
	if s.Indexer == nil {
		return 0, nil, ErrSearchUnavailable
	}
	if strings.TrimSpace(query) == "" {
		return 0, nil, fmt.Errorf("query required: %w", ErrValidation)
	}
	return s.Indexer.SearchOrders(ctx, query, from, size)
}

func (s *OrderService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Publisher == nil {
		return
	}
	event["event_id"] = uuid.NewString()
	event["at"] = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := s.Publisher.PublishEvent(ctx, mykafka.TopicOrderEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "topic", mykafka.TopicOrderEvents, "type", event["type"], "error", err)
	}
}

func (s *OrderService) index(ctx context.Context, orderID string, order models.Order) {
	if s.Indexer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := s.Indexer.IndexOrder(ctx, orderID, order); err != nil {
		logging.FromContext(ctx).Error("order_index_failed", "orderID", orderID, "error", err)
	}
}

func (s *OrderService) notify(ctx context.Context, kind string, data any) {
	if s.Live != nil {
		s.Live.Notify(ctx, kind, data)
	}
}
