package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
	"github.com/aussiebroadwan/tally/pkg/idx"
)

type userRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const userColumns = `id, username, email, password_hash, created_at, updated_at`

type usersRepo struct {
	q sqlx.ExtContext
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *usersRepo) FindByUsernameOrEmail(
	ctx context.Context,
	username, email string,
) (domain.User, error) {
	return r.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ? ORDER BY created_at LIMIT 1`,
		username, email,
	)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = idx.NewAt(now).String()
	}
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := sqlx.NamedExecContext(ctx, r.q,
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		 VALUES (:id, :username, :email, :password_hash, :created_at, :updated_at)`,
		userRow{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		},
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}
	return u, nil
}

func (r *usersRepo) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}
