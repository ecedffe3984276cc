// Package client keeps a todo list in sync with the backend while signed in
// and with a local file while signed out.
package client

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ayush/todolist/backend/internal/models"
)

// ErrUnknownTodo is returned when an id is not in the current list.
var ErrUnknownTodo = errors.New("no todo with that id")

// Remote is the server API used while signed in.
type Remote interface {
	List(ctx context.Context) ([]Todo, error)
	Create(ctx context.Context, text string, createdAt time.Time) error
	Update(ctx context.Context, id string, text *string, completed *bool) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context, block string) error
}

// Mirror holds the current list. Signed in, every mutation goes to the
// server and is followed by a full re-fetch; signed out, mutations apply to
// the in-memory list and are written to the local store.
type Mirror struct {
	remote   Remote
	local    *LocalStore
	signedIn bool
	todos    []Todo
	now      func() time.Time
	lastID   int64
}

func NewMirror(remote Remote, local *LocalStore) *Mirror {
	return &Mirror{remote: remote, local: local, todos: []Todo{}, now: time.Now}
}

func (m *Mirror) SignedIn() bool {
	return m.signedIn
}

// Todos returns a copy of the current list.
func (m *Mirror) Todos() []Todo {
	return append([]Todo(nil), m.todos...)
}

// SignIn drops local state and loads the list from the server.
func (m *Mirror) SignIn(ctx context.Context) error {
	m.signedIn = true
	m.todos = []Todo{}
	return m.Refresh(ctx)
}

// SignOut switches back to whatever the local store holds.
func (m *Mirror) SignOut() error {
	m.signedIn = false
	todos, err := m.local.Load()
	if err != nil {
		m.todos = []Todo{}
		return err
	}
	m.todos = todos
	return nil
}

// Refresh re-fetches the list from the server. It is a no-op signed out.
func (m *Mirror) Refresh(ctx context.Context) error {
	if !m.signedIn {
		return nil
	}
	todos, err := m.remote.List(ctx)
	if err != nil {
		return err
	}
	if todos == nil {
		todos = []Todo{}
	}
	m.todos = todos
	return nil
}

// Add creates a todo. Blank text is ignored.
func (m *Mirror) Add(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if err := models.ValidateText(text); err != nil {
		return err
	}
	now := m.now()

	if m.signedIn {
		if err := m.remote.Create(ctx, text, now); err != nil {
			return err
		}
		return m.Refresh(ctx)
	}
	m.todos = append(m.todos, Todo{ID: m.localID(now), Text: text, CreatedAt: now})
	return m.persist()
}

// Toggle flips the completed flag of id.
func (m *Mirror) Toggle(ctx context.Context, id string) error {
	i := m.index(id)
	if i < 0 {
		return ErrUnknownTodo
	}
	completed := !m.todos[i].Completed

	if m.signedIn {
		if err := m.remote.Update(ctx, id, nil, &completed); err != nil {
			return err
		}
		return m.Refresh(ctx)
	}
	m.todos[i].Completed = completed
	return m.persist()
}

// Edit replaces the text of id.
func (m *Mirror) Edit(ctx context.Context, id, text string) error {
	i := m.index(id)
	if i < 0 {
		return ErrUnknownTodo
	}
	if err := models.ValidateText(text); err != nil {
		return err
	}

	if m.signedIn {
		if err := m.remote.Update(ctx, id, &text, nil); err != nil {
			return err
		}
		return m.Refresh(ctx)
	}
	m.todos[i].Text = text
	return m.persist()
}

// Delete removes id.
func (m *Mirror) Delete(ctx context.Context, id string) error {
	if m.signedIn {
		if err := m.remote.Delete(ctx, id); err != nil {
			return err
		}
		return m.Refresh(ctx)
	}
	i := m.index(id)
	if i < 0 {
		return nil
	}
	m.todos = append(m.todos[:i], m.todos[i+1:]...)
	return m.persist()
}

// Clear removes every todo ("all") or those created on a YYYY-MM-DD date.
func (m *Mirror) Clear(ctx context.Context, block string) error {
	if err := (models.ClearRequest{Block: block}).Validate(); err != nil {
		return err
	}

	if m.signedIn {
		if err := m.remote.Clear(ctx, block); err != nil {
			return err
		}
		return m.Refresh(ctx)
	}
	if block == models.ClearAll {
		m.todos = []Todo{}
		return m.local.Remove()
	}
	kept := m.todos[:0]
	for _, t := range m.todos {
		if t.CreatedAt.In(time.Local).Format(time.DateOnly) != block {
			kept = append(kept, t)
		}
	}
	m.todos = kept
	return m.persist()
}

func (m *Mirror) persist() error {
	return m.local.Save(m.todos)
}

func (m *Mirror) index(id string) int {
	for i, t := range m.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// localID returns a millisecond timestamp id, bumped when two todos are
// added within the same millisecond.
func (m *Mirror) localID(now time.Time) string {
	id := now.UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return strconv.FormatInt(id, 10)
}
