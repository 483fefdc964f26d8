package tallysdk

import (
	"context"
	"net/http"
	"strconv"
)

// Session performs requests on behalf of one authenticated user. Tokens are
// not refreshed; once it expires every call returns a 401 APIError.
type Session struct {
	client *Client
	token  string
}

// Token returns the bearer token carried by the session.
func (s *Session) Token() string { return s.token }

// Me returns the authenticated user.
func (s *Session) Me(ctx context.Context) (MeResponse, error) {
	var out MeResponse
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/auth/me", s.token, nil)
	if err != nil {
		return out, err
	}
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

// ListTodos returns every todo.
func (s *Session) ListTodos(ctx context.Context) ([]TodoItem, error) {
	return s.listTodos(ctx, "/todoitems")
}

// ListCompleteTodos returns only completed todos.
func (s *Session) ListCompleteTodos(ctx context.Context) ([]TodoItem, error) {
	return s.listTodos(ctx, "/todoitems/complete")
}

func (s *Session) listTodos(ctx context.Context, path string) ([]TodoItem, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil)
	if err != nil {
		return nil, err
	}
	var out []TodoItem
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTodo fetches a single todo.
func (s *Session) GetTodo(ctx context.Context, id int64) (TodoItem, error) {
	var out TodoItem
	resp, err := s.client.doRequest(ctx, http.MethodGet, todoPath(id), s.token, nil)
	if err != nil {
		return out, err
	}
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

// CreateTodo creates a todo; the id on the input is ignored.
func (s *Session) CreateTodo(ctx context.Context, name string, isComplete bool) (TodoItem, error) {
	var out TodoItem
	resp, err := s.client.doRequest(ctx, http.MethodPost, "/todoitems", s.token, TodoItem{
		Name:       name,
		IsComplete: isComplete,
	})
	if err != nil {
		return out, err
	}
	err = decodeJSON(resp, &out, http.StatusCreated)
	return out, err
}

// UpdateTodo replaces the name and completion state of a todo.
func (s *Session) UpdateTodo(ctx context.Context, item TodoItem) error {
	resp, err := s.client.doRequest(ctx, http.MethodPut, todoPath(item.ID), s.token, item)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

// DeleteTodo removes a todo.
func (s *Session) DeleteTodo(ctx context.Context, id int64) error {
	resp, err := s.client.doRequest(ctx, http.MethodDelete, todoPath(id), s.token, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

func todoPath(id int64) string {
	return "/todoitems/" + strconv.FormatInt(id, 10)
}
