package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
	"github.com/aussiebroadwan/tally/internal/tally/store"
)

const todoColumns = `id, name, is_complete, created_by, created_at, updated_at`

type todosRepo struct {
	q querier
}

func (r *todosRepo) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	return r.list(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
}

func (r *todosRepo) ListCompleteTodos(ctx context.Context) ([]domain.Todo, error) {
	return r.list(ctx, `SELECT `+todoColumns+` FROM todos WHERE is_complete ORDER BY id`)
}

func (r *todosRepo) GetTodo(ctx context.Context, id int64) (domain.Todo, error) {
	t, err := scanTodo(r.q.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
	if err != nil {
		return domain.Todo{}, mapNotFound(err)
	}
	return t, nil
}

func (r *todosRepo) CreateTodo(ctx context.Context, t domain.Todo) (domain.Todo, error) {
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	err := r.q.QueryRow(ctx,
		`INSERT INTO todos (name, is_complete, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		t.Name, t.IsComplete, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return domain.Todo{}, oops.With("operation", "create todo").Wrap(err)
	}
	return t, nil
}

func (r *todosRepo) UpdateTodo(ctx context.Context, id int64, name string, isComplete bool) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE todos SET name = $1, is_complete = $2, updated_at = $3 WHERE id = $4`,
		name, isComplete, time.Now().UTC(), id,
	)
	if err != nil {
		return oops.With("operation", "update todo").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *todosRepo) DeleteTodo(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return oops.With("operation", "delete todo").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *todosRepo) list(ctx context.Context, query string) ([]domain.Todo, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, oops.With("operation", "list todos").Wrap(err)
	}
	defer rows.Close()

	out := make([]domain.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, oops.With("operation", "scan todo row").Wrap(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate todos").Wrap(err)
	}
	return out, nil
}

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var t domain.Todo
	err := row.Scan(&t.ID, &t.Name, &t.IsComplete, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
