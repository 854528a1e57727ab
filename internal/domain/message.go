package domain

import "time"

type MessageID int64

// Message — одно личное сообщение. После создания не изменяется.
type Message struct {
	ID          MessageID
	SenderID    UserID
	RecipientID UserID
	Text        string
	Timestamp   time.Time
}
