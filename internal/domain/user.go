package domain

import (
	"strings"
	"time"
)

type UserID int64

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) Role {
	if Role(strings.TrimSpace(s)) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

type User struct {
	ID           UserID
	Username     string
	Email        string
	TelegramURL  *string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Создает нового пользователя
// Ожидает уже посчитанный хеш пароля
func NewUser(username, email, passwordHash string, now time.Time, opts ...UserOption) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, ErrEmptyPasswordHash
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(user)
	}

	return user, nil
}

func (u *User) SetPasswordHash(hash string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrEmptyPasswordHash
	}
	u.PasswordHash = hash
	u.UpdatedAt = now

	return nil
}

func (u *User) SetTelegramURL(url *string, now time.Time) {
	u.TelegramURL = trimPtr(url)
	u.UpdatedAt = now
}

func (u *User) SetRole(r Role, now time.Time) {
	u.Role = r
	u.UpdatedAt = now
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Identity — представление пользователя из access-токена.
// Живет ровно столько, сколько живет одно подключение/запрос.
type Identity struct {
	ID          UserID
	Username    string
	Email       string
	Role        Role
	TelegramURL *string
}

// Options конструктора
type UserOption func(*User)

func WithTelegramURL(url string) UserOption {
	return func(u *User) { u.TelegramURL = trimPtr(&url) }
}

func WithRole(r Role) UserOption {
	return func(u *User) { u.Role = r }
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	t := strings.TrimSpace(*p)
	if t == "" {
		return nil
	}

	return &t
}
