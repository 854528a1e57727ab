package service

import (
	"context"

	"github.com/cwrk-planet/dm-service/internal/domain"
	"github.com/cwrk-planet/dm-service/internal/repository"
)

// In-memory реализации репозиториев для тестов сервисного слоя.

type memUserRepo struct {
	users    map[domain.UserID]*domain.User
	contacts map[domain.UserID][]domain.UserID
	nextID   domain.UserID
	err      error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users:    make(map[domain.UserID]*domain.User),
		contacts: make(map[domain.UserID][]domain.UserID),
	}
}

func (r *memUserRepo) add(u domain.User) *domain.User {
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = &u
	return &u
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (domain.UserID, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.nextID++
	cp := *u
	cp.ID = r.nextID
	r.users[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id domain.UserID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) ContactIDs(_ context.Context, userID domain.UserID) ([]domain.UserID, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.contacts[userID], nil
}

func (r *memUserRepo) GetByIDs(_ context.Context, ids []domain.UserID) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type memMessageRepo struct {
	messages map[domain.MessageID]*domain.Message
	nextID   domain.MessageID
	err      error
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[domain.MessageID]*domain.Message)}
}

func (r *memMessageRepo) Create(_ context.Context, m *domain.Message) (domain.MessageID, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.nextID++
	cp := *m
	cp.ID = r.nextID
	r.messages[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memMessageRepo) GetByID(_ context.Context, id domain.MessageID) (*domain.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMessageRepo) ListBetween(_ context.Context, a, b domain.UserID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) ListBySender(_ context.Context, senderID domain.UserID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.SenderID == senderID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) ListByParticipant(_ context.Context, userID domain.UserID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.RecipientID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) Delete(_ context.Context, id domain.MessageID) error {
	if _, ok := r.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.messages, id)
	return nil
}
