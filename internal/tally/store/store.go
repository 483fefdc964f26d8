package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so that a transaction hands out the same repositories without
// letting callers start another transaction from inside it.
type Store interface {
	Users() Users
	Todos() Todos

	ApplyMigrations() error

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx exposes the repositories bound to a single transaction.
type Tx interface {
	Users() Users
	Todos() Todos
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login. Matching is exact.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// FindByUsernameOrEmail returns the first user whose username or email
	// matches, used to reject duplicate registrations early.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error)

	// CreateUser inserts a new user. An empty ID is filled with a ULID and the
	// timestamps are set by the store. Returns ErrAlreadyExists when the
	// username or email is taken.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
}

type Todos interface {
	// ListTodos returns every todo ordered by id.
	ListTodos(ctx context.Context) ([]domain.Todo, error)

	// ListCompleteTodos returns completed todos ordered by id.
	ListCompleteTodos(ctx context.Context) ([]domain.Todo, error)

	GetTodo(ctx context.Context, id int64) (domain.Todo, error)

	// CreateTodo inserts t and returns it with the generated id and timestamps.
	CreateTodo(ctx context.Context, t domain.Todo) (domain.Todo, error)

	// UpdateTodo replaces name and completion state and bumps updated_at.
	UpdateTodo(ctx context.Context, id int64, name string, isComplete bool) error

	DeleteTodo(ctx context.Context, id int64) error
}
