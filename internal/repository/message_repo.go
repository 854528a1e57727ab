package repository

import (
	"context"

	"github.com/cwrk-planet/dm-service/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) (domain.MessageID, error)
	GetByID(ctx context.Context, id domain.MessageID) (*domain.Message, error)

	// ListBetween — история переписки двух пользователей, timestamp ASC.
	ListBetween(ctx context.Context, a, b domain.UserID) ([]domain.Message, error)
	ListBySender(ctx context.Context, senderID domain.UserID) ([]domain.Message, error)
	// ListByParticipant — все сообщения, где userID отправитель или получатель.
	ListByParticipant(ctx context.Context, userID domain.UserID) ([]domain.Message, error)

	Delete(ctx context.Context, id domain.MessageID) error
}
