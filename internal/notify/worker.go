package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sender — транспорт доставки уведомления.
type Sender interface {
	Send(ctx context.Context, t *Task) error
}

// Worker разбирает очередь уведомлений. Ошибки доставки логируются и
// проглатываются: у отправителя нет канала обратной связи для них.
type Worker struct {
	queue       *RedisQueue
	sender      Sender
	popTimeout  time.Duration
	sendTimeout time.Duration
}

func NewWorker(queue *RedisQueue, sender Sender) *Worker {
	return &Worker{
		queue:       queue,
		sender:      sender,
		popTimeout:  5 * time.Second,
		sendTimeout: 15 * time.Second,
	}
}

// Run крутится до отмены контекста.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			slog.Info("notification worker stopped")
			return
		default:
		}

		t, err := w.queue.Receive(ctx, w.popTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			// redis.Nil — таймаут BRPOP, очередь пуста
			if errors.Is(err, redis.Nil) {
				continue
			}
			slog.Warn("notify.receive failed", slog.Any("err", err))
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
		if err := w.sender.Send(sendCtx, t); err != nil {
			slog.Warn("notify.send failed",
				slog.String("task_id", t.ID),
				slog.Any("err", err))
		} else {
			slog.Debug("notification sent", slog.String("task_id", t.ID))
		}
		cancel()
	}
}
