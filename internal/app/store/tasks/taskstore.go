// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

var (
	// ErrNotFound is returned when no task matches the lookup.
	ErrNotFound = errors.New("task not found")
	// ErrTitleRequired is returned when creating a task without a title.
	ErrTitleRequired = errors.New("task title is required")
	// ErrBadStatus is returned for a status outside the workflow enum.
	ErrBadStatus = errors.New(`status must be "Todo", "In Progress" or "Done"`)
)

// Create inserts a task under its project. Status defaults to Todo;
// assignment starts unset and comments start empty.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.Title == "" {
		return models.Task{}, ErrTitleRequired
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	if !models.ValidStatus(t.Status) {
		return models.Task{}, ErrBadStatus
	}

	t.ID = primitive.NewObjectID()
	t.AssignedTo = nil
	t.Comments = []models.Comment{}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID loads a task by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByProject returns all tasks under the project, in storage order.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SetStatus moves the task to any of the three workflow statuses. There is
// no transition graph: a Kanban drag may put a card in any column.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (*models.Task, error) {
	if !models.ValidStatus(status) {
		return nil, ErrBadStatus
	}
	return s.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
}

// Assign sets the assignee, or clears it when userID is nil. The user id
// is not checked for existence.
func (s *Store) Assign(ctx context.Context, id primitive.ObjectID, userID *primitive.ObjectID) (*models.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}
	if userID != nil {
		set["assigned_to"] = *userID
	} else {
		update["$unset"] = bson.M{"assigned_to": ""}
	}
	return s.findOneAndUpdate(ctx, id, update)
}

// AddComment appends to the task's comment thread. Comments are immutable
// once appended; the thread only grows.
func (s *Store) AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Task, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// DeleteByProject removes every task under the project. This is the task
// leg of the project cascade delete. Returns the number deleted.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// findOneAndUpdate applies update to the task and returns the updated
// document, mapping a missing task to ErrNotFound.
func (s *Store) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Task
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
