package todo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/ayush/todolist/backend/internal/auth"
	"github.com/ayush/todolist/backend/internal/httpjson"
	"github.com/ayush/todolist/backend/internal/models"
)

// Store defines the owner-scoped todo persistence used by the handlers.
type Store interface {
	List(ctx context.Context, owner string) ([]models.Todo, error)
	Create(ctx context.Context, owner, text string, createdAt *time.Time) (*models.Todo, error)
	Update(ctx context.Context, owner, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, owner, id string) error
	ClearAll(ctx context.Context, owner string) (int64, error)
	ClearByDay(ctx context.Context, owner, date string) (int64, error)
}

// ClearResponse is returned by DELETE /api/todos/clear.
type ClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// Handler holds the todo HTTP handlers.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// owner returns the caller's email or writes 401.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := auth.CurrentUser(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
	}
	return email, ok
}

// decode reads and validates the body, writing 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, req interface{ Validate() error }) bool {
	if err := httpjson.Decode(r, req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	if err := req.Validate(); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// fail maps a store error to a response. Store failures are logged and
// reported without detail.
func fail(w http.ResponseWriter, r *http.Request, op, email string, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		httpjson.Error(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "Todo not found")
	default:
		logFor(r).Error().Err(err).Str("op", op).Str("owner", email).Msg("todo store failure")
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func logFor(r *http.Request) *zerolog.Logger {
	return hlog.FromRequest(r)
}

// List returns the caller's todos, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email, ok := owner(w, r)
	if !ok {
		return
	}
	todos, err := h.store.List(r.Context(), email)
	if err != nil {
		fail(w, r, "list", email, err)
		return
	}
	httpjson.Write(w, http.StatusOK, todos)
}

// Create stores a new todo for the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := owner(w, r)
	if !ok {
		return
	}
	var req models.CreateTodoRequest
	if !decode(w, r, &req) {
		return
	}
	todo, err := h.store.Create(r.Context(), email, req.Text, req.CreatedAt)
	if err != nil {
		fail(w, r, "create", email, err)
		return
	}
	httpjson.Write(w, http.StatusOK, todo)
}

// Update applies a partial update to one of the caller's todos.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	email, ok := owner(w, r)
	if !ok {
		return
	}
	var req models.UpdateTodoRequest
	if !decode(w, r, &req) {
		return
	}
	todo, err := h.store.Update(r.Context(), email, req.ID, req.Patch())
	if err != nil {
		fail(w, r, "update", email, err)
		return
	}
	httpjson.Write(w, http.StatusOK, todo)
}

// Delete removes one of the caller's todos. Unknown ids succeed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	email, ok := owner(w, r)
	if !ok {
		return
	}
	var req models.DeleteTodoRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.Delete(r.Context(), email, req.ID); err != nil {
		fail(w, r, "delete", email, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Todo deleted"})
}

// Clear removes all of the caller's todos, or those created on one day.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	email, ok := owner(w, r)
	if !ok {
		return
	}
	var req models.ClearRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		n   int64
		err error
		msg = "Successfully cleared todos"
	)
	if req.Block == models.ClearAll {
		n, err = h.store.ClearAll(r.Context(), email)
	} else {
		n, err = h.store.ClearByDay(r.Context(), email, req.Block)
		msg = fmt.Sprintf("Successfully cleared todos for %s", req.Block)
	}
	if err != nil {
		fail(w, r, "clear", email, err)
		return
	}

	logFor(r).Info().Str("owner", email).Str("block", req.Block).Int64("deleted", n).Msg("cleared todos")
	httpjson.Write(w, http.StatusOK, ClearResponse{Success: true, Message: msg, Deleted: n})
}
