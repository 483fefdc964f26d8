package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
	"github.com/aussiebroadwan/tally/internal/tally/service"
	"github.com/aussiebroadwan/tally/pkg/httpx"
	"github.com/aussiebroadwan/tally/pkg/slogx"
	"github.com/aussiebroadwan/tally/pkg/tallysdk"
)

// A null name is stored as the empty string.
var todoSchema = func() *bodySchema {
	b := newBodySchema("todo.json", &tallysdk.TodoItem{})
	b.extend = nullable("name")
	return b
}()

type TodoHandler struct {
	TodoService *service.TodoService
}

// HandleList returns every todo.
//
//	@Summary	List todos
//	@Tags		Todos
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	tallysdk.TodoItem
//	@Router		/todoitems [get].
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	todos, err := h.TodoService.List(r.Context())
	h.writeList(w, r, todos, err)
}

// HandleListComplete returns completed todos.
//
//	@Summary	List completed todos
//	@Tags		Todos
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	tallysdk.TodoItem
//	@Router		/todoitems/complete [get].
func (h *TodoHandler) HandleListComplete(w http.ResponseWriter, r *http.Request) {
	todos, err := h.TodoService.ListComplete(r.Context())
	h.writeList(w, r, todos, err)
}

// HandleGet returns one todo.
//
//	@Summary	Get a todo
//	@Tags		Todos
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Todo ID"
//	@Success	200	{object}	tallysdk.TodoItem
//	@Failure	400	{object}	tallysdk.ErrorResponse
//	@Failure	404	"Not found"
//	@Router		/todoitems/{id} [get].
func (h *TodoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	t, err := h.TodoService.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toItem(t))
}

// HandleCreate adds a todo owned by the caller.
//
//	@Summary	Create a todo
//	@Tags		Todos
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		tallysdk.TodoItem	true	"name, isComplete"
//	@Success	201		{object}	tallysdk.TodoItem
//	@Failure	400		{object}	tallysdk.ErrorResponse
//	@Router		/todoitems [post].
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req tallysdk.TodoItem
	if err := todoSchema.Decode(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	caller, _ := httpx.IdentityFromContext(r.Context())
	t, err := h.TodoService.Create(r.Context(), req.Name, req.IsComplete, caller.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/todoitems/"+strconv.FormatInt(t.ID, 10))
	httpx.WriteJSON(w, http.StatusCreated, toItem(t))
}

// HandleUpdate replaces a todo's name and completion state.
//
//	@Summary	Update a todo
//	@Tags		Todos
//	@Security	BearerAuth
//	@Accept		json
//	@Param		id		path	int					true	"Todo ID"
//	@Param		request	body	tallysdk.TodoItem	true	"name, isComplete"
//	@Success	204
//	@Failure	400	{object}	tallysdk.ErrorResponse
//	@Failure	404	"Not found"
//	@Router		/todoitems/{id} [put].
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req tallysdk.TodoItem
	if err := todoSchema.Decode(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	if err := h.TodoService.Update(r.Context(), id, req.Name, req.IsComplete); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes a todo.
//
//	@Summary	Delete a todo
//	@Tags		Todos
//	@Security	BearerAuth
//	@Param		id	path	int	true	"Todo ID"
//	@Success	204
//	@Failure	400	{object}	tallysdk.ErrorResponse
//	@Failure	404	"Not found"
//	@Router		/todoitems/{id} [delete].
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.TodoService.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TodoHandler) writeList(w http.ResponseWriter, r *http.Request, todos []domain.Todo, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]tallysdk.TodoItem, 0, len(todos))
	for _, t := range todos {
		items = append(items, toItem(t))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *TodoHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	slogx.FromContext(r.Context()).Error("todo operation failed", "err", err)
	httpx.WriteMessage(w, http.StatusInternalServerError, msgInternal)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

func toItem(t domain.Todo) tallysdk.TodoItem {
	return tallysdk.TodoItem{ID: t.ID, Name: t.Name, IsComplete: t.IsComplete}
}
