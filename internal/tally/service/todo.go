package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
	"github.com/aussiebroadwan/tally/internal/tally/store"
)

// TodoService manages the shared todo list. Every authenticated user sees and
// edits the same items.
type TodoService struct {
	Store store.Store
}

func (s *TodoService) List(ctx context.Context) ([]domain.Todo, error) {
	return s.Store.Todos().ListTodos(ctx)
}

func (s *TodoService) ListComplete(ctx context.Context) ([]domain.Todo, error) {
	return s.Store.Todos().ListCompleteTodos(ctx)
}

func (s *TodoService) Get(ctx context.Context, id int64) (domain.Todo, error) {
	t, err := s.Store.Todos().GetTodo(ctx, id)
	return t, mapNotFound(err)
}

// Create adds a todo on behalf of createdBy.
func (s *TodoService) Create(
	ctx context.Context,
	name string,
	isComplete bool,
	createdBy string,
) (domain.Todo, error) {
	return s.Store.Todos().CreateTodo(ctx, domain.Todo{
		Name:       name,
		IsComplete: isComplete,
		CreatedBy:  createdBy,
	})
}

func (s *TodoService) Update(ctx context.Context, id int64, name string, isComplete bool) error {
	return mapNotFound(s.Store.Todos().UpdateTodo(ctx, id, name, isComplete))
}

func (s *TodoService) Delete(ctx context.Context, id int64) error {
	return mapNotFound(s.Store.Todos().DeleteTodo(ctx, id))
}

func mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
