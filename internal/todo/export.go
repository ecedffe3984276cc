package todo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/todolist/backend/internal/httpjson"
	"github.com/ayush/todolist/backend/internal/models"
	"github.com/ayush/todolist/backend/internal/store"
)

// FileStore defines the object storage used for exports.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
}

// Lister is the part of Store the exporter needs.
type Lister interface {
	List(ctx context.Context, owner string) ([]models.Todo, error)
}

// Export is the document written to object storage.
type Export struct {
	Owner      string        `json:"user"`
	ExportedAt time.Time     `json:"exportedAt"`
	Todos      []models.Todo `json:"todos"`
}

// ExportResponse is returned by POST /api/todos/export.
type ExportResponse struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ExportHandler snapshots a user's list into object storage. Objects live
// under the owner's email so one user can never address another's files.
type ExportHandler struct {
	todos Lister
	files FileStore
	now   func() time.Time
}

func NewExportHandler(todos Lister, files FileStore) *ExportHandler {
	return &ExportHandler{todos: todos, files: files, now: time.Now}
}

// Create uploads the caller's current list.
func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := owner(w, r)
	if !ok {
		return
	}
	todos, err := h.todos.List(r.Context(), email)
	if err != nil {
		fail(w, r, "export", email, err)
		return
	}

	exportedAt := h.now().UTC()
	data, err := json.MarshalIndent(Export{Owner: email, ExportedAt: exportedAt, Todos: todos}, "", "  ")
	if err != nil {
		fail(w, r, "export", email, err)
		return
	}

	name := "todos-" + exportedAt.Format("20060102T150405Z") + ".json"
	key := email + "/" + name
	if err := h.files.Upload(r.Context(), key, data); err != nil {
		fail(w, r, "export", email, err)
		return
	}
	httpjson.Write(w, http.StatusOK, ExportResponse{Key: key, Name: name, Count: len(todos)})
}

// Download streams one of the caller's exports.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	email, ok := owner(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		httpjson.Error(w, http.StatusBadRequest, "Invalid export name")
		return
	}

	data, err := h.files.Download(r.Context(), email+"/"+name)
	if errors.Is(err, store.ErrObjectNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Export not found")
		return
	}
	if err != nil {
		fail(w, r, "download export", email, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Write(data)
}
