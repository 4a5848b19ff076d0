package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/models"
	"github.com/Skotchmaster/sweethome/internal/mykafka"
	"github.com/Skotchmaster/sweethome/internal/repo"
)

type ChatService struct {
	Repo      *repo.FileRepo
	Publisher Publisher
	Live      Notifier
}

func (s *ChatService) ListMessages(ctx context.Context) []models.ChatMessage {
	recs := s.Repo.ChatMessages.List(ctx)
	msgs := make([]models.ChatMessage, len(recs))
	for i, r := range recs {
		msgs[i] = models.ChatMessage(r)
	}
	return msgs
}

func (s *ChatService) PostMessage(ctx context.Context, msg models.ChatMessage) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("message body required: %w", ErrValidation)
	}
	if err := s.Repo.ChatMessages.Append(ctx, repo.Record(msg)); err != nil {
		return "", fmt.Errorf("save message: %w", err)
	}

	id := msg.MessageID()
	if s.Live != nil {
		s.Live.Notify(ctx, "chat_message_created", msg)
	}
	if s.Publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		defer cancel()
		event := map[string]any{
			"event_id":  uuid.NewString(),
			"type":      "chat_message_created",
			"messageId": id,
			"message":   msg,
			"at":        time.Now().UTC(),
		}
		if err := s.Publisher.PublishEvent(pubCtx, mykafka.TopicChatEvents, id, event); err != nil {
			logging.FromContext(ctx).Error("kafka_publish_failed", "topic", mykafka.TopicChatEvents, "error", err)
		}
	}
	return id, nil
}
