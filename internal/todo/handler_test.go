package todo

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/todolist/backend/internal/auth"
	"github.com/ayush/todolist/backend/internal/models"
	"github.com/ayush/todolist/backend/internal/todo/todotest"
)

const (
	ana = "ana@example.com"
	bob = "bob@example.com"
)

func newRequest(method, body, email string) *http.Request {
	req := httptest.NewRequest(method, "/api/todos", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req = req.WithContext(auth.WithUser(req.Context(), email))
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeTodo(t *testing.T, rec *httptest.ResponseRecorder) models.Todo {
	t.Helper()
	var todo models.Todo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&todo))
	return todo
}

func decodeTodos(t *testing.T, rec *httptest.ResponseRecorder) []models.Todo {
	t.Helper()
	var todos []models.Todo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&todos))
	return todos
}

func TestUnauthenticatedRequestsNeverReachStore(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)

	cases := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		body    string
	}{
		{"list", h.List, http.MethodGet, ""},
		{"create", h.Create, http.MethodPost, `{"text":"Buy milk"}`},
		{"create with malformed body", h.Create, http.MethodPost, `{"text":`},
		{"update", h.Update, http.MethodPut, `{"id":"x","completed":true}`},
		{"delete", h.Delete, http.MethodDelete, `{"id":"x"}`},
		{"clear", h.Clear, http.MethodDelete, `{"block":"all"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(tc.handler, newRequest(tc.method, tc.body, ""))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
		})
	}
	assert.Zero(t, store.Calls)
}

func TestCreateThenList(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)

	rec := serve(h.Create, newRequest(http.MethodPost, `{"text":"Buy milk"}`, ana))
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeTodo(t, rec)
	assert.Equal(t, "Buy milk", created.Text)
	assert.Equal(t, ana, created.Owner)
	assert.False(t, created.Completed)
	assert.False(t, created.ID.IsZero())

	rec = serve(h.List, newRequest(http.MethodGet, "", ana))
	require.Equal(t, http.StatusOK, rec.Code)
	todos := decodeTodos(t, rec)
	require.Len(t, todos, 1)
	assert.Equal(t, created.ID, todos[0].ID)
	assert.Equal(t, "Buy milk", todos[0].Text)
	assert.False(t, todos[0].Completed)

	rec = serve(h.List, newRequest(http.MethodGet, "", bob))
	assert.Empty(t, decodeTodos(t, rec))
}

func TestListEmptyIsArray(t *testing.T) {
	h := NewHandler(todotest.NewStore())
	rec := serve(h.List, newRequest(http.MethodGet, "", ana))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListNewestFirst(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	store.Seed(
		models.Todo{ID: primitive.NewObjectID(), Text: "old", Owner: ana, CreatedAt: base},
		models.Todo{ID: primitive.NewObjectID(), Text: "new", Owner: ana, CreatedAt: base.Add(time.Hour)},
	)

	todos := decodeTodos(t, serve(h.List, newRequest(http.MethodGet, "", ana)))
	require.Len(t, todos, 2)
	assert.Equal(t, "new", todos[0].Text)
	assert.Equal(t, "old", todos[1].Text)
}

func TestCreateValidation(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)

	tests := []struct {
		name string
		body string
	}{
		{"too long", `{"text":"` + strings.Repeat("a", 61) + `"}`},
		{"missing text", `{}`},
		{"blank text", `{"text":"   "}`},
		{"malformed json", `{"text":`},
		{"unknown field", `{"text":"Buy milk","user":"eve@example.com"}`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h.Create, newRequest(http.MethodPost, tt.body, ana))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
	assert.Empty(t, store.All())
}

func TestCreateKeepsClientTimestamp(t *testing.T) {
	h := NewHandler(todotest.NewStore())
	rec := serve(h.Create, newRequest(http.MethodPost, `{"text":"Buy milk","createdAt":"2024-06-01T08:30:00Z"}`, ana))
	require.Equal(t, http.StatusOK, rec.Code)
	todo := decodeTodo(t, rec)
	assert.True(t, todo.CreatedAt.Equal(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)))
}

func TestUpdateCompletedOnlyLeavesTextUnchanged(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)
	created := decodeTodo(t, serve(h.Create, newRequest(http.MethodPost, `{"text":"Buy milk"}`, ana)))

	rec := serve(h.Update, newRequest(http.MethodPut, `{"id":"`+created.ID.Hex()+`","completed":true}`, ana))
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeTodo(t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Buy milk", updated.Text)
	assert.True(t, updated.Completed)

	rec = serve(h.Update, newRequest(http.MethodPut, `{"id":"`+created.ID.Hex()+`","text":"Buy oat milk"}`, ana))
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decodeTodo(t, rec)
	assert.Equal(t, "Buy oat milk", updated.Text)
	assert.True(t, updated.Completed, "completed survives a text-only update")
}

func TestUpdateIsolatesUsers(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)
	created := decodeTodo(t, serve(h.Create, newRequest(http.MethodPost, `{"text":"Ana's task"}`, ana)))

	rec := serve(h.Update, newRequest(http.MethodPut, `{"id":"`+created.ID.Hex()+`","text":"pwned","completed":true}`, bob))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Todo not found"}`, rec.Body.String())

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Ana's task", all[0].Text)
	assert.False(t, all[0].Completed)
}

func TestUpdateErrors(t *testing.T) {
	h := NewHandler(todotest.NewStore())

	rec := serve(h.Update, newRequest(http.MethodPut, `{"id":"`+primitive.NewObjectID().Hex()+`","completed":true}`, ana))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h.Update, newRequest(http.MethodPut, `{"completed":true}`, ana))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.Update, newRequest(http.MethodPut, `{"id":"abc","text":"`+strings.Repeat("b", 61)+`"}`, ana))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)
	created := decodeTodo(t, serve(h.Create, newRequest(http.MethodPost, `{"text":"Buy milk"}`, ana)))

	for i := 0; i < 2; i++ {
		rec := serve(h.Delete, newRequest(http.MethodDelete, `{"id":"`+created.ID.Hex()+`"}`, ana))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Todo deleted"}`, rec.Body.String())
	}
	assert.Empty(t, store.All())

	rec := serve(h.Delete, newRequest(http.MethodDelete, `{"id":"not-even-hex"}`, ana))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteLeavesForeignTodo(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)
	created := decodeTodo(t, serve(h.Create, newRequest(http.MethodPost, `{"text":"Ana's task"}`, ana)))

	rec := serve(h.Delete, newRequest(http.MethodDelete, `{"id":"`+created.ID.Hex()+`"}`, bob))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.All(), 1)
}

func TestClearAllOnlyTouchesCaller(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)
	for _, text := range []string{"one", "two"} {
		serve(h.Create, newRequest(http.MethodPost, `{"text":"`+text+`"}`, ana))
	}
	serve(h.Create, newRequest(http.MethodPost, `{"text":"bob's"}`, bob))

	rec := serve(h.Clear, newRequest(http.MethodDelete, `{"block":"all"}`, ana))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ClearResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.Deleted)
	assert.Equal(t, "Successfully cleared todos", resp.Message)

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, bob, all[0].Owner)
}

func TestClearByDay(t *testing.T) {
	store := todotest.NewStore()
	store.Loc = time.UTC
	h := NewHandler(store)
	day := func(d, hour int) time.Time { return time.Date(2024, 5, d, hour, 0, 0, 0, time.UTC) }
	store.Seed(
		models.Todo{ID: primitive.NewObjectID(), Text: "may 31", Owner: ana, CreatedAt: day(31, 23)},
		models.Todo{ID: primitive.NewObjectID(), Text: "jun 1 a", Owner: ana, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		models.Todo{ID: primitive.NewObjectID(), Text: "jun 1 b", Owner: ana, CreatedAt: time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC)},
		models.Todo{ID: primitive.NewObjectID(), Text: "jun 2", Owner: ana, CreatedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
		models.Todo{ID: primitive.NewObjectID(), Text: "bob jun 1", Owner: bob, CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
	)

	rec := serve(h.Clear, newRequest(http.MethodDelete, `{"block":"2024-06-01"}`, ana))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ClearResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(2), resp.Deleted)
	assert.Equal(t, "Successfully cleared todos for 2024-06-01", resp.Message)

	var left []string
	for _, todo := range store.All() {
		left = append(left, todo.Text)
	}
	assert.ElementsMatch(t, []string{"may 31", "jun 2", "bob jun 1"}, left)
}

func TestClearRejectsBadBlock(t *testing.T) {
	store := todotest.NewStore()
	h := NewHandler(store)

	for _, body := range []string{`{}`, `{"block":"yesterday"}`, ``} {
		rec := serve(h.Clear, newRequest(http.MethodDelete, body, ana))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Zero(t, store.Calls)
}

func TestStoreFailureIsGeneric500(t *testing.T) {
	store := todotest.NewStore()
	store.Err = errors.New("server selection error: context deadline exceeded")
	h := NewHandler(store)

	for name, call := range map[string]func() *httptest.ResponseRecorder{
		"list":   func() *httptest.ResponseRecorder { return serve(h.List, newRequest(http.MethodGet, "", ana)) },
		"create": func() *httptest.ResponseRecorder { return serve(h.Create, newRequest(http.MethodPost, `{"text":"x"}`, ana)) },
		"delete": func() *httptest.ResponseRecorder { return serve(h.Delete, newRequest(http.MethodDelete, `{"id":"x"}`, ana)) },
		"clear":  func() *httptest.ResponseRecorder { return serve(h.Clear, newRequest(http.MethodDelete, `{"block":"all"}`, ana)) },
	} {
		rec := call()
		assert.Equal(t, http.StatusInternalServerError, rec.Code, name)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String(), name)
	}
}
