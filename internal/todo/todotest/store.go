// Package todotest provides an in-memory todo.Store for tests.
package todotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/todolist/backend/internal/models"
)

// Store is an in-memory, owner-scoped todo store. Calls counts every
// method invocation so tests can assert the store was never reached.
type Store struct {
	mu    sync.Mutex
	todos []models.Todo
	Calls int
	Err   error
	Loc   *time.Location
	Now   func() time.Time
}

func NewStore() *Store {
	return &Store{Loc: time.Local, Now: time.Now}
}

// Seed inserts todos as-is, bypassing validation.
func (s *Store) Seed(todos ...models.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = append(s.todos, todos...)
}

// All returns every stored todo regardless of owner.
func (s *Store) All() []models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Todo(nil), s.todos...)
}

func (s *Store) enter() error {
	s.mu.Lock()
	s.Calls++
	return s.Err
}

func (s *Store) List(_ context.Context, owner string) ([]models.Todo, error) {
	if err := s.enter(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	out := []models.Todo{}
	for _, t := range s.todos {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) Create(_ context.Context, owner, text string, createdAt *time.Time) (*models.Todo, error) {
	if err := s.enter(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	if owner == "" {
		return nil, &models.ValidationError{Field: "user", Reason: "is required"}
	}
	if err := models.ValidateText(text); err != nil {
		return nil, err
	}
	t := models.Todo{ID: primitive.NewObjectID(), Text: text, Owner: owner, CreatedAt: s.Now()}
	if createdAt != nil && !createdAt.IsZero() {
		t.CreatedAt = *createdAt
	}
	s.todos = append(s.todos, t)
	return &t, nil
}

func (s *Store) Update(_ context.Context, owner, id string, patch models.TodoPatch) (*models.Todo, error) {
	if err := s.enter(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()

	if patch.Text != nil {
		if err := models.ValidateText(*patch.Text); err != nil {
			return nil, err
		}
	}
	for i := range s.todos {
		t := &s.todos[i]
		if t.ID.Hex() != id || t.Owner != owner {
			continue
		}
		if patch.Text != nil {
			t.Text = *patch.Text
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		out := *t
		return &out, nil
	}
	return nil, models.ErrNotFound
}

func (s *Store) Delete(_ context.Context, owner, id string) error {
	if err := s.enter(); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()

	s.removeWhere(func(t models.Todo) bool { return t.Owner == owner && t.ID.Hex() == id })
	return nil
}

func (s *Store) ClearAll(_ context.Context, owner string) (int64, error) {
	if err := s.enter(); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()

	return s.removeWhere(func(t models.Todo) bool { return t.Owner == owner }), nil
}

func (s *Store) ClearByDay(_ context.Context, owner, date string) (int64, error) {
	if err := s.enter(); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()

	day, err := time.ParseInLocation(time.DateOnly, date, s.Loc)
	if err != nil {
		return 0, &models.ValidationError{Field: "block", Reason: "must be a date formatted as YYYY-MM-DD"}
	}
	end := day.AddDate(0, 0, 1)
	return s.removeWhere(func(t models.Todo) bool {
		return t.Owner == owner && !t.CreatedAt.Before(day) && t.CreatedAt.Before(end)
	}), nil
}

func (s *Store) removeWhere(match func(models.Todo) bool) int64 {
	kept := s.todos[:0]
	var n int64
	for _, t := range s.todos {
		if match(t) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	s.todos = kept
	return n
}
