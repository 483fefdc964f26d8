package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
	"github.com/aussiebroadwan/tally/internal/tally/store"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock, NewStoreWithPool(mock)
}

var userCols = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("get by username", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", "alice", "a@x.io", "digest", now, now))

		u, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", u.ID)
		require.Equal(t, "digest", u.PasswordHash)
		require.Equal(t, now, u.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows(userCols))

		_, err := s.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("find by username or email", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1 OR email = \$2`).
			WithArgs("bob", "a@x.io").
			WillReturnRows(pgxmock.NewRows(userCols).
				AddRow("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", "alice", "a@x.io", "digest", now, now))

		u, err := s.Users().FindByUsernameOrEmail(ctx, "bob", "a@x.io")
		require.NoError(t, err)
		require.Equal(t, "alice", u.Username)
	})

	t.Run("create assigns id", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "alice", "a@x.io", "digest", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		u, err := s.Users().CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io", PasswordHash: "digest"})
		require.NoError(t, err)
		require.Len(t, u.ID, 26)
		require.False(t, u.CreatedAt.IsZero())
	})

	t.Run("create unique violation", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "alice", "a@x.io", "digest", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"})

		_, err := s.Users().CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io", PasswordHash: "digest"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("create other error", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "alice", "a@x.io", "digest", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		_, err := s.Users().CreateUser(ctx, domain.User{Username: "alice", Email: "a@x.io", PasswordHash: "digest"})
		require.Error(t, err)
		require.NotErrorIs(t, err, store.ErrAlreadyExists)
	})
}

var todoCols = []string{"id", "name", "is_complete", "created_by", "created_at", "updated_at"}

func TestTodosRepo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("list", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM todos ORDER BY id`).
			WillReturnRows(pgxmock.NewRows(todoCols).
				AddRow(int64(1), "milk", false, "u1", now, now).
				AddRow(int64(2), "eggs", true, "u2", now, now))

		todos, err := s.Todos().ListTodos(ctx)
		require.NoError(t, err)
		require.Len(t, todos, 2)
		require.Equal(t, "eggs", todos[1].Name)
		require.True(t, todos[1].IsComplete)
	})

	t.Run("list complete empty", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM todos WHERE is_complete ORDER BY id`).
			WillReturnRows(pgxmock.NewRows(todoCols))

		todos, err := s.Todos().ListCompleteTodos(ctx)
		require.NoError(t, err)
		require.NotNil(t, todos)
		require.Empty(t, todos)
	})

	t.Run("list error", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM todos`).
			WillReturnError(errors.New("connection refused"))

		_, err := s.Todos().ListTodos(ctx)
		require.ErrorContains(t, err, "connection refused")
	})

	t.Run("get missing", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM todos WHERE id = \$1`).
			WithArgs(int64(9)).
			WillReturnRows(pgxmock.NewRows(todoCols))

		_, err := s.Todos().GetTodo(ctx, 9)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("create returns id", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`INSERT INTO todos`).
			WithArgs("milk", false, "u1", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		got, err := s.Todos().CreateTodo(ctx, domain.Todo{Name: "milk", CreatedBy: "u1"})
		require.NoError(t, err)
		require.Equal(t, int64(42), got.ID)
	})

	t.Run("update missing", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectExec(`UPDATE todos SET`).
			WithArgs("x", true, pgxmock.AnyArg(), int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		require.ErrorIs(t, s.Todos().UpdateTodo(ctx, 7, "x", true), store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectExec(`DELETE FROM todos WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, s.Todos().DeleteTodo(ctx, 3))
	})
}

func TestWithTxRollback(t *testing.T) {
	ctx := context.Background()
	mock, s := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM todos`).
		WithArgs(int64(1)).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Todos().DeleteTodo(ctx, 1)
	})
	require.ErrorContains(t, err, "boom")
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@h/db", migrateURL("postgres://u:p@h/db"))
	require.Equal(t, "pgx5://u:p@h/db", migrateURL("postgresql://u:p@h/db"))
	require.Equal(t, "pgx5://u:p@h/db", migrateURL("pgx5://u:p@h/db"))
}

func TestApplyMigrationsWithoutURL(t *testing.T) {
	_, s := newMock(t)
	require.Error(t, s.ApplyMigrations())
}
