package http

import (
	"time"

	"github.com/cwrk-planet/dm-service/internal/domain"
)

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type CreateUserRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	TelegramURL *string `json:"telegram_url,omitempty"`
	Password    string  `json:"password"`
	Role        string  `json:"role,omitempty"`
}

type UpdateUserRequest struct {
	NewUsername    *string `json:"new_username,omitempty"`
	NewEmail       *string `json:"new_email,omitempty"`
	NewTelegramURL *string `json:"new_telegram_url,omitempty"`
	NewPassword    *string `json:"new_password,omitempty"`
	NewRole        *string `json:"new_role,omitempty"`
}

type UserItem struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	TelegramURL *string `json:"telegram_url,omitempty"`
	Role        string  `json:"role"`
	CreatedAt   int64   `json:"created_at_unix"`
}

type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id"`
	Text        string `json:"text"`
}

type MessageItem struct {
	ID          int64  `json:"id"`
	SenderID    int64  `json:"sender_id"`
	RecipientID int64  `json:"recipient_id"`
	Text        string `json:"text"`
	Timestamp   string `json:"timestamp"`
}

func toUserItem(u *domain.User) UserItem {
	return UserItem{
		ID:          int64(u.ID),
		Username:    u.Username,
		Email:       u.Email,
		TelegramURL: u.TelegramURL,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt.Unix(),
	}
}

func toUserItems(users []domain.User) []UserItem {
	out := make([]UserItem, 0, len(users))
	for i := range users {
		out = append(out, toUserItem(&users[i]))
	}

	return out
}

func toMessageItem(m *domain.Message) MessageItem {
	return MessageItem{
		ID:          int64(m.ID),
		SenderID:    int64(m.SenderID),
		RecipientID: int64(m.RecipientID),
		Text:        m.Text,
		Timestamp:   m.Timestamp.Format(time.RFC3339),
	}
}

func toMessageItems(msgs []domain.Message) []MessageItem {
	out := make([]MessageItem, 0, len(msgs))
	for i := range msgs {
		out = append(out, toMessageItem(&msgs[i]))
	}

	return out
}
