// Package chat keeps per-session expert-agent transcripts in redis. The
// backend is stateless per turn, so the gateway is the only place the
// conversation survives a page reload.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tradepulse/gateway/internal/ids"
	"tradepulse/gateway/internal/models"
)

type TranscriptStore struct {
	redis       *redis.Client
	ttl         time.Duration
	maxMessages int
}

func NewTranscriptStore(client *redis.Client, ttl time.Duration, maxMessages int) *TranscriptStore {
	if maxMessages <= 0 {
		maxMessages = 200
	}
	return &TranscriptStore{
		redis:       client,
		ttl:         ttl,
		maxMessages: maxMessages,
	}
}

func transcriptKey(subjectID string) string {
	return "chat:transcript:" + subjectID
}

// Append records one message and refreshes the transcript TTL. The list is
// trimmed from the front so long conversations keep only the newest turns.
func (s *TranscriptStore) Append(ctx context.Context, subjectID string, role models.ChatRole, content string) (models.ChatMessage, error) {
	msg := models.ChatMessage{
		ID:        ids.New(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("marshal chat message: %w", err)
	}

	key := transcriptKey(subjectID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.maxMessages), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.ChatMessage{}, fmt.Errorf("store chat message: %w", err)
	}

	return msg, nil
}

// History returns the transcript oldest-first. A missing key is an empty
// conversation, not an error.
func (s *TranscriptStore) History(ctx context.Context, subjectID string) ([]models.ChatMessage, error) {
	raw, err := s.redis.LRange(ctx, transcriptKey(subjectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue // skip entries written by older formats
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Clear drops the transcript, used at logout.
func (s *TranscriptStore) Clear(ctx context.Context, subjectID string) error {
	return s.redis.Del(ctx, transcriptKey(subjectID)).Err()
}
