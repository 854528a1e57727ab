package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cwrk-planet/dm-service/internal/domain"
	"github.com/cwrk-planet/dm-service/internal/errs"
	"github.com/cwrk-planet/dm-service/internal/repository"
)

// Максимальная длина текста сообщения.
const maxTextLen = 4000

type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewMessageService(messages repository.MessageRepository, users repository.UserRepository, now func() time.Time) *MessageService {
	if now == nil {
		now = time.Now
	}

	return &MessageService{
		messages: messages,
		users:    users,
		now:      now,
	}
}

// Create валидирует и сохраняет сообщение.
// Пустой текст, сообщение самому себе и несуществующий получатель отклоняются.
func (s *MessageService) Create(ctx context.Context, senderID, recipientID domain.UserID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if len(text) > maxTextLen {
		return nil, domain.ErrTextTooLong
	}
	if senderID == recipientID {
		return nil, domain.ErrSelfMessage
	}

	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	m := &domain.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		Timestamp:   s.now(),
	}

	id, err := s.messages.Create(ctx, m)
	if err != nil {
		slog.Error("message.create failed",
			slog.Int64("sender", int64(senderID)),
			slog.Int64("recipient", int64(recipientID)),
			slog.Any("err", err))
		return nil, err
	}
	m.ID = id

	return m, nil
}

// Dialog — все сообщения, где userID отправитель или получатель.
func (s *MessageService) Dialog(ctx context.Context, userID domain.UserID) ([]domain.Message, error) {
	return s.messages.ListByParticipant(ctx, userID)
}

// Between — история между двумя пользователями, timestamp ASC.
func (s *MessageService) Between(ctx context.Context, a, b domain.UserID) ([]domain.Message, error) {
	return s.messages.ListBetween(ctx, a, b)
}

func (s *MessageService) GetByID(ctx context.Context, id domain.MessageID) (*domain.Message, error) {
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}

	return m, nil
}

func (s *MessageService) ListBySender(ctx context.Context, senderID domain.UserID) ([]domain.Message, error) {
	return s.messages.ListBySender(ctx, senderID)
}

// Delete — удалить может только отправитель.
func (s *MessageService) Delete(ctx context.Context, actor *domain.Identity, id domain.MessageID) error {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.SenderID != actor.ID {
		return errs.ErrForbidden
	}

	if err := s.messages.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrMessageNotFound
		}
		return err
	}

	return nil
}
