package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
)

const chatCacheTTL = 5 * time.Minute

// ChatCache is a read-through Redis cache keyed by chat id. It is a pure
// optimization: the store stays authoritative and every chat mutation must
// invalidate the entry. Cache failures degrade to direct reads.
type ChatCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewChatCache builds the cache. A nil redis handle yields a disabled cache.
func NewChatCache(r *Redis, logger *zap.Logger) *ChatCache {
	if r == nil {
		return &ChatCache{logger: logger}
	}
	return &ChatCache{client: r.Client, logger: logger}
}

// Get returns the cached chat or (nil, false) on miss or error.
func (c *ChatCache) Get(ctx context.Context, chatID string) (*domain.Chat, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, chatKey(chatID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("chat cache read failed", zap.String("chat_id", chatID), zap.Error(err))
		}
		return nil, false
	}
	var chat domain.Chat
	if err := json.Unmarshal(raw, &chat); err != nil {
		c.logger.Warn("chat cache decode failed", zap.String("chat_id", chatID), zap.Error(err))
		return nil, false
	}
	return &chat, true
}

// Set stores the chat with a bounded TTL.
func (c *ChatCache) Set(ctx context.Context, chat *domain.Chat) {
	if c == nil || c.client == nil || chat == nil {
		return
	}
	raw, err := json.Marshal(chat)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, chatKey(chat.ID), raw, chatCacheTTL).Err(); err != nil {
		c.logger.Warn("chat cache write failed", zap.String("chat_id", chat.ID), zap.Error(err))
	}
}

// Invalidate drops the cached entry for the chat.
func (c *ChatCache) Invalidate(ctx context.Context, chatID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, chatKey(chatID)).Err(); err != nil {
		c.logger.Warn("chat cache invalidate failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}

func chatKey(id string) string {
	return "chat:" + id
}
