// Package notify — асинхронные уведомления «вам пришло сообщение»
// для получателей без живого подключения. Очередь в Redis, доставка
// в Telegram фоновым воркером.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Task — одно задание на уведомление.
type Task struct {
	ID          string `json:"id"`
	TelegramURL string `json:"telegram_url"`
	SenderName  string `json:"sender_name"`
	Text        string `json:"text"`
}

// Queue — брокер заданий. Submit должен быть быстрым (одна запись в очередь).
type Queue interface {
	Submit(ctx context.Context, t Task) error
}

// Notifier — то, что видит relay: отправил и забыл.
type Notifier interface {
	Notify(telegramURL, senderName, text string)
}

// AsyncNotifier кладет задание в очередь в отдельной горутине.
// Ошибки логируются и никогда не влияют на сессию отправителя.
type AsyncNotifier struct {
	queue   Queue
	timeout time.Duration
}

func NewAsyncNotifier(queue Queue, timeout time.Duration) *AsyncNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &AsyncNotifier{queue: queue, timeout: timeout}
}

func (n *AsyncNotifier) Notify(telegramURL, senderName, text string) {
	t := NewTask(telegramURL, senderName, text)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.queue.Submit(ctx, t); err != nil {
			slog.Warn("notify.submit failed",
				slog.String("task_id", t.ID),
				slog.Any("err", err))
		}
	}()
}
