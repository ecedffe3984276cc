package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxTextLength is the longest todo text accepted, in characters.
const MaxTextLength = 60

// ClearAll is the ClearRequest block value that removes every todo.
const ClearAll = "all"

// Todo is a single task stored in MongoDB. Owner holds the email of the
// user the todo belongs to.
type Todo struct {
	ID        primitive.ObjectID `json:"_id"       bson:"_id"`
	Text      string             `json:"text"      bson:"text"`
	Completed bool               `json:"completed" bson:"completed"`
	Owner     string             `json:"user"      bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// TodoPatch is a partial update. A nil field is left unchanged.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// CreateTodoRequest is the JSON body for POST /api/todos.
type CreateTodoRequest struct {
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (r CreateTodoRequest) Validate() error {
	return ValidateText(r.Text)
}

// UpdateTodoRequest is the JSON body for PUT /api/todos.
type UpdateTodoRequest struct {
	ID        string  `json:"id"`
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (r UpdateTodoRequest) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "is required"}
	}
	if r.Text != nil {
		return ValidateText(*r.Text)
	}
	return nil
}

// Patch returns the fields of the request that should be applied.
func (r UpdateTodoRequest) Patch() TodoPatch {
	return TodoPatch{Text: r.Text, Completed: r.Completed}
}

// DeleteTodoRequest is the JSON body for DELETE /api/todos.
type DeleteTodoRequest struct {
	ID string `json:"id"`
}

func (r DeleteTodoRequest) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "is required"}
	}
	return nil
}

// ClearRequest is the JSON body for DELETE /api/todos/clear. Block is
// either "all" or a calendar date formatted as YYYY-MM-DD.
type ClearRequest struct {
	Block string `json:"block"`
}

func (r ClearRequest) Validate() error {
	if r.Block == "" {
		return &ValidationError{Field: "block", Reason: `is required ("all" or YYYY-MM-DD)`}
	}
	if r.Block == ClearAll {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, r.Block); err != nil {
		return &ValidationError{Field: "block", Reason: `must be "all" or a date formatted as YYYY-MM-DD`}
	}
	return nil
}

// ValidateText checks the text constraints shared by create and update.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "text", Reason: "is required"}
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return &ValidationError{Field: "text", Reason: "cannot be more than 60 characters"}
	}
	return nil
}
