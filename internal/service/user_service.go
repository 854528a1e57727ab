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
	"github.com/cwrk-planet/dm-service/internal/security"

	"github.com/samber/lo"
)

type CreateUserInput struct {
	Username    string
	Email       string
	TelegramURL *string
	Password    string
	Role        domain.Role
}

type UpdateUserInput struct {
	NewUsername    *string
	NewEmail       *string
	NewTelegramURL *string
	NewPassword    *string
	NewRole        *domain.Role
}

type UserService struct {
	users      repository.UserRepository
	passPolicy security.BcryptConfig
	now        func() time.Time
}

func NewUserService(users repository.UserRepository, passPolicy security.BcryptConfig, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}

	return &UserService{
		users:      users,
		passPolicy: passPolicy,
		now:        now,
	}
}

// Register — публичная регистрация; роль всегда user.
func (s *UserService) Register(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	in.Role = domain.RoleUser
	return s.create(ctx, in)
}

// Create — создание пользователя от имени actor; admin-роль может выдать только админ.
func (s *UserService) Create(ctx context.Context, actor *domain.Identity, in CreateUserInput) (*domain.User, error) {
	if in.Role == domain.RoleAdmin && (actor == nil || actor.Role != domain.RoleAdmin) {
		return nil, errs.ErrForbidden
	}

	return s.create(ctx, in)
}

func (s *UserService) create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if taken, err := s.users.ExistsByUsername(ctx, in.Username); err != nil {
		slog.Error("user.create.existsByUsername failed", slog.Any("err", err))
		return nil, err
	} else if taken {
		return nil, domain.ErrUsernameTaken
	}

	if taken, err := s.users.ExistsByEmail(ctx, in.Email); err != nil {
		slog.Error("user.create.existsByEmail failed", slog.Any("err", err))
		return nil, err
	} else if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := security.HashPassword(in.Password, &s.passPolicy)
	if err != nil {
		return nil, err
	}

	now := s.now()
	opts := []domain.UserOption{domain.WithRole(in.Role)}
	if in.TelegramURL != nil {
		opts = append(opts, domain.WithTelegramURL(*in.TelegramURL))
	}

	u, err := domain.NewUser(in.Username, in.Email, hash, now, opts...)
	if err != nil {
		return nil, err
	}

	id, err := s.users.Create(ctx, u)
	if err != nil {
		slog.Error("user.create failed", slog.Any("err", err))
		return nil, err
	}
	u.ID = id

	return u, nil
}

// Get — профиль по id; смотреть чужой профиль может только админ.
func (s *UserService) Get(ctx context.Context, actor *domain.Identity, id domain.UserID) (*domain.User, error) {
	if actor.ID != id && actor.Role != domain.RoleAdmin {
		return nil, errs.ErrForbidden
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}

	return u, nil
}

// List — админ видит всех, обычный пользователь только себя.
func (s *UserService) List(ctx context.Context, actor *domain.Identity) ([]domain.User, error) {
	if actor.Role == domain.RoleAdmin {
		return s.users.List(ctx)
	}

	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	return []domain.User{*u}, nil
}

func (s *UserService) Update(ctx context.Context, actor *domain.Identity, id domain.UserID, in UpdateUserInput) (*domain.User, error) {
	if actor.ID != id && actor.Role != domain.RoleAdmin {
		return nil, errs.ErrForbidden
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}

	now := s.now()

	if in.NewUsername != nil {
		name := strings.TrimSpace(*in.NewUsername)
		if name != "" && name != u.Username {
			if taken, err := s.users.ExistsByUsername(ctx, name); err != nil {
				return nil, err
			} else if taken {
				return nil, domain.ErrUsernameTaken
			}
			u.Username = name
			u.UpdatedAt = now
		}
	}

	if in.NewEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*in.NewEmail))
		if email != "" && email != u.Email {
			if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
				return nil, err
			} else if taken {
				return nil, domain.ErrEmailTaken
			}
			u.Email = email
			u.UpdatedAt = now
		}
	}

	if in.NewTelegramURL != nil {
		u.SetTelegramURL(in.NewTelegramURL, now)
	}

	if in.NewPassword != nil {
		hash, err := security.HashPassword(*in.NewPassword, &s.passPolicy)
		if err != nil {
			return nil, err
		}
		if err := u.SetPasswordHash(hash, now); err != nil {
			return nil, err
		}
	}

	if in.NewRole != nil {
		// роль меняет только админ
		if actor.Role != domain.RoleAdmin {
			return nil, errs.ErrForbidden
		}
		u.SetRole(*in.NewRole, now)
	}

	if err := s.users.Update(ctx, u); err != nil {
		slog.Error("user.update failed", slog.Any("err", err))
		return nil, mapUserErr(err)
	}

	return u, nil
}

func (s *UserService) Delete(ctx context.Context, actor *domain.Identity, id domain.UserID) error {
	if actor.ID != id && actor.Role != domain.RoleAdmin {
		return errs.ErrForbidden
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return mapUserErr(err)
	}

	return nil
}

// GetByID — без проверки прав; используется relay-ем для резолва получателя.
func (s *UserService) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}

	return u, nil
}

// Contacts возвращает всех, с кем пользователь обменивался сообщениями.
func (s *UserService) Contacts(ctx context.Context, userID domain.UserID) ([]domain.User, error) {
	ids, err := s.users.ContactIDs(ctx, userID)
	if err != nil {
		slog.Error("user.contacts.contactIDs failed", slog.Any("err", err))
		return nil, err
	}

	// SQL уже отдает distinct, но страхуемся от дублей и самого userID
	ids = lo.Uniq(ids)
	ids = lo.Without(ids, userID)
	if len(ids) == 0 {
		return nil, nil
	}

	return s.users.GetByIDs(ctx, ids)
}

func mapUserErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrUserNotFound
	}

	return err
}
