package ws

import "time"

// Payload — исходящий кадр для обеих сторон диалога.
type Payload struct {
	Text       string `json:"text"`
	SenderName string `json:"sender_name"`
	Timestamp  string `json:"timestamp"`
}

func NewPayload(text, senderName string, ts time.Time) Payload {
	return Payload{
		Text:       text,
		SenderName: senderName,
		Timestamp:  ts.Format(time.RFC3339),
	}
}
