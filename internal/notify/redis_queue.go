package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisClient — узкий интерфейс над go-redis, чтобы в тестах была фейковая реализация.
type redisClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// RedisQueue — список в Redis как брокер заданий (LPUSH при постановке,
// BRPOP в воркере).
type RedisQueue struct {
	client redisClient
	key    string
}

func NewRedisQueue(client redisClient, key string) (*RedisQueue, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if key == "" {
		key = "dm:notifications"
	}

	return &RedisQueue{client: client, key: key}, nil
}

func NewTask(telegramURL, senderName, text string) Task {
	return Task{
		ID:          uuid.NewString(),
		TelegramURL: telegramURL,
		SenderName:  senderName,
		Text:        text,
	}
}

func (q *RedisQueue) Submit(ctx context.Context, t Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}

	return nil
}

// Receive блокируется до появления задания или отмены контекста.
func (q *RedisQueue) Receive(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		return nil, err
	}
	// BRPop возвращает пару [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected brpop reply: %v", res)
	}

	var t Task
	if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
		return nil, fmt.Errorf("unmarshal task: %w", err)
	}

	return &t, nil
}
