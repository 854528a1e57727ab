package repository

import (
	"context"

	"github.com/cwrk-planet/dm-service/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (domain.UserID, error)
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id domain.UserID) error

	// ContactIDs возвращает id всех пользователей, с которыми userID
	// когда-либо обменивался сообщениями (в любую сторону), без самого userID.
	ContactIDs(ctx context.Context, userID domain.UserID) ([]domain.UserID, error)
	GetByIDs(ctx context.Context, ids []domain.UserID) ([]domain.User, error)
}
