package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/cwrk-planet/dm-service/internal/domain"
	"github.com/cwrk-planet/dm-service/internal/repository"
	"github.com/cwrk-planet/dm-service/internal/repository/queries"

	"github.com/jackc/pgx/v5"
)

type UserRepo struct {
	q querier
}

// NewUserRepoFromPool - конструктор от пула (*pgxpool.Pool)
func NewUserRepoFromPool(q querier) *UserRepo {
	return &UserRepo{q: q}
}

// NewUserRepoFromTx - конструктор от транзакции (pgx.Tx), удобно для составных операций
func NewUserRepoFromTx(tx pgx.Tx) *UserRepo {
	return &UserRepo{q: tx}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (domain.UserID, error) {
	var id int64
	err := r.q.QueryRow(
		ctx,
		queries.QueryCreateUser,
		u.Username,
		u.Email,
		toNullStringPtr(u.TelegramURL),
		u.PasswordHash,
		string(u.Role),
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}

	return domain.UserID(id), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return r.getOne(ctx, queries.QueryGetUserByID, int64(id))
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, queries.QueryGetUserByUsername, strings.TrimSpace(username))
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.Query(ctx, queries.QueryListUsers)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []domain.UserID) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}

	rows, err := r.q.Query(ctx, queries.QueryGetUsersByIDs, raw)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, queries.QueryExistsUserByUsername, strings.TrimSpace(username))
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, queries.QueryExistsUserByEmail, strings.TrimSpace(email))
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	tag, err := r.q.Exec(
		ctx,
		queries.QueryUpdateUser,
		int64(u.ID),
		u.Username,
		u.Email,
		toNullStringPtr(u.TelegramURL),
		u.PasswordHash,
		string(u.Role),
		u.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id domain.UserID) error {
	tag, err := r.q.Exec(ctx, queries.QueryDeleteUser, int64(id))
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepo) ContactIDs(ctx context.Context, userID domain.UserID) ([]domain.UserID, error) {
	rows, err := r.q.Query(ctx, queries.QueryContactIDs, int64(userID))
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []domain.UserID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, domain.UserID(id))
	}

	return out, rows.Err()
}

func (r *UserRepo) getOne(ctx context.Context, sql string, arg any) (*domain.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapPgError(err)
	}

	return u, nil
}

func (r *UserRepo) exists(ctx context.Context, sql string, arg any) (bool, error) {
	var one int
	err := r.q.QueryRow(ctx, sql, arg).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, mapPgError(err)
	}

	return true, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		id   int64
		role string
	)
	if err := row.Scan(&id, &u.Username, &u.Email, &u.TelegramURL, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = domain.UserID(id)
	u.Role = domain.ParseRole(role)

	return &u, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}

	return out, rows.Err()
}
