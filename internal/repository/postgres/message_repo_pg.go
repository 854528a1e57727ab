package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/dm-service/internal/domain"
	"github.com/cwrk-planet/dm-service/internal/repository"
	"github.com/cwrk-planet/dm-service/internal/repository/queries"

	"github.com/jackc/pgx/v5"
)

type MessageRepo struct {
	q querier
}

func NewMessageRepoFromPool(q querier) *MessageRepo {
	return &MessageRepo{q: q}
}

func NewMessageRepoFromTx(tx pgx.Tx) *MessageRepo {
	return &MessageRepo{q: tx}
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) (domain.MessageID, error) {
	var id int64
	err := r.q.QueryRow(
		ctx,
		queries.QueryCreateMessage,
		int64(m.SenderID),
		int64(m.RecipientID),
		m.Text,
		m.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}

	return domain.MessageID(id), nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id domain.MessageID) (*domain.Message, error) {
	m, err := scanMessage(r.q.QueryRow(ctx, queries.QueryGetMessageByID, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapPgError(err)
	}

	return m, nil
}

func (r *MessageRepo) ListBetween(ctx context.Context, a, b domain.UserID) ([]domain.Message, error) {
	return r.list(ctx, queries.QueryListMessagesBetween, int64(a), int64(b))
}

func (r *MessageRepo) ListBySender(ctx context.Context, senderID domain.UserID) ([]domain.Message, error) {
	return r.list(ctx, queries.QueryListMessagesBySender, int64(senderID))
}

func (r *MessageRepo) ListByParticipant(ctx context.Context, userID domain.UserID) ([]domain.Message, error) {
	return r.list(ctx, queries.QueryListMessagesByParticipant, int64(userID))
}

func (r *MessageRepo) Delete(ctx context.Context, id domain.MessageID) error {
	tag, err := r.q.Exec(ctx, queries.QueryDeleteMessage, int64(id))
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *MessageRepo) list(ctx context.Context, sql string, args ...any) ([]domain.Message, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}

	return out, rows.Err()
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var (
		m         domain.Message
		id        int64
		sender    int64
		recipient int64
	)
	if err := row.Scan(&id, &sender, &recipient, &m.Text, &m.Timestamp); err != nil {
		return nil, err
	}
	m.ID = domain.MessageID(id)
	m.SenderID = domain.UserID(sender)
	m.RecipientID = domain.UserID(recipient)

	return &m, nil
}
