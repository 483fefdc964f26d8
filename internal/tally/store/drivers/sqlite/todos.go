package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
	"github.com/aussiebroadwan/tally/internal/tally/store"
)

type todoRow struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	IsComplete bool      `db:"is_complete"`
	CreatedBy  string    `db:"created_by"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r todoRow) toDomain() domain.Todo {
	return domain.Todo{
		ID:         r.ID,
		Name:       r.Name,
		IsComplete: r.IsComplete,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

const todoColumns = `id, name, is_complete, created_by, created_at, updated_at`

type todosRepo struct {
	q sqlx.ExtContext
}

func (r *todosRepo) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	return r.list(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
}

func (r *todosRepo) ListCompleteTodos(ctx context.Context) ([]domain.Todo, error) {
	return r.list(ctx, `SELECT `+todoColumns+` FROM todos WHERE is_complete = 1 ORDER BY id`)
}

func (r *todosRepo) GetTodo(ctx context.Context, id int64) (domain.Todo, error) {
	var row todoRow
	err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	if err != nil {
		return domain.Todo{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *todosRepo) CreateTodo(ctx context.Context, t domain.Todo) (domain.Todo, error) {
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO todos (name, is_complete, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.Name, t.IsComplete, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return domain.Todo{}, err
	}

	t.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Todo{}, err
	}
	return t, nil
}

func (r *todosRepo) UpdateTodo(ctx context.Context, id int64, name string, isComplete bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE todos SET name = ?, is_complete = ?, updated_at = ? WHERE id = ?`,
		name, isComplete, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *todosRepo) DeleteTodo(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *todosRepo) list(ctx context.Context, query string) ([]domain.Todo, error) {
	var rows []todoRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query); err != nil {
		return nil, err
	}

	out := make([]domain.Todo, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffected) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
