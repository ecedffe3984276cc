package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/todolist/backend/internal/models"
)

// TodoCollection is the MongoDB collection holding todos.
const TodoCollection = "todos"

// Database hands out a connected database handle.
type Database interface {
	EnsureConnected(ctx context.Context) (*mongo.Database, error)
}

// TodoStore handles todo CRUD in MongoDB. Every query is filtered by owner.
type TodoStore struct {
	db  Database
	loc *time.Location
	now func() time.Time
}

// NewTodoStore returns a store resolving calendar days in loc (time.Local
// when nil).
func NewTodoStore(db Database, loc *time.Location) *TodoStore {
	if loc == nil {
		loc = time.Local
	}
	return &TodoStore{db: db, loc: loc, now: time.Now}
}

func (s *TodoStore) col(ctx context.Context) (*mongo.Collection, error) {
	db, err := s.db.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(TodoCollection), nil
}

// EnsureIndexes creates the owner/createdAt index used by every query.
func (s *TodoStore) EnsureIndexes(ctx context.Context) error {
	col, err := s.col(ctx)
	if err != nil {
		return err
	}
	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func (s *TodoStore) List(ctx context.Context, owner string) ([]models.Todo, error) {
	col, err := s.col(ctx)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := col.Find(ctx, ownerFilter(owner), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	todos := []models.Todo{}
	if err := cur.All(ctx, &todos); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return todos, nil
}

func (s *TodoStore) Create(ctx context.Context, owner, text string, createdAt *time.Time) (*models.Todo, error) {
	if owner == "" {
		return nil, &models.ValidationError{Field: "user", Reason: "is required"}
	}
	if err := models.ValidateText(text); err != nil {
		return nil, err
	}

	todo := &models.Todo{
		ID:        primitive.NewObjectID(),
		Text:      text,
		Owner:     owner,
		CreatedAt: s.now(),
	}
	if createdAt != nil && !createdAt.IsZero() {
		todo.CreatedAt = *createdAt
	}

	col, err := s.col(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, todo); err != nil {
		return nil, fmt.Errorf("mongo insert: %w", err)
	}
	return todo, nil
}

// Update applies patch to the todo matching both id and owner. A todo owned
// by someone else is reported as models.ErrNotFound.
func (s *TodoStore) Update(ctx context.Context, owner, id string, patch models.TodoPatch) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	if patch.Text != nil {
		if err := models.ValidateText(*patch.Text); err != nil {
			return nil, err
		}
	}

	col, err := s.col(ctx)
	if err != nil {
		return nil, err
	}

	var todo models.Todo
	if patch.IsEmpty() {
		err = col.FindOne(ctx, ownedFilter(owner, oid)).Decode(&todo)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = col.FindOneAndUpdate(ctx, ownedFilter(owner, oid), bson.M{"$set": patchSet(patch)}, opts).Decode(&todo)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo update: %w", err)
	}
	return &todo, nil
}

// Delete removes the todo matching both id and owner. Nothing matching is
// not an error.
func (s *TodoStore) Delete(ctx context.Context, owner, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	col, err := s.col(ctx)
	if err != nil {
		return err
	}
	if _, err := col.DeleteOne(ctx, ownedFilter(owner, oid)); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

func (s *TodoStore) ClearAll(ctx context.Context, owner string) (int64, error) {
	return s.deleteMany(ctx, ownerFilter(owner))
}

// ClearByDay removes the owner's todos created on date (YYYY-MM-DD), from
// midnight through 23:59:59.999 in the store's location.
func (s *TodoStore) ClearByDay(ctx context.Context, owner, date string) (int64, error) {
	start, end, err := dayBounds(date, s.loc)
	if err != nil {
		return 0, err
	}
	return s.deleteMany(ctx, dayFilter(owner, start, end))
}

func (s *TodoStore) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	col, err := s.col(ctx)
	if err != nil {
		return 0, err
	}
	res, err := col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongo delete many: %w", err)
	}
	return res.DeletedCount, nil
}

func ownerFilter(owner string) bson.M {
	return bson.M{"user": owner}
}

func ownedFilter(owner string, id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "user": owner}
}

func dayFilter(owner string, start, end time.Time) bson.M {
	return bson.M{
		"user":      owner,
		"createdAt": bson.M{"$gte": start, "$lte": end},
	}
}

func patchSet(p models.TodoPatch) bson.M {
	set := bson.M{}
	if p.Text != nil {
		set["text"] = *p.Text
	}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}
	return set
}

func dayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, &models.ValidationError{Field: "block", Reason: "must be a date formatted as YYYY-MM-DD"}
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end, nil
}
