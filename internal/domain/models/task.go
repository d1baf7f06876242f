// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the single task lifecycle attribute driving Kanban-column
// placement. Any status may move to any other status; a drag can put a
// card in any column.
type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// ValidStatus reports whether s is one of the three workflow statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Comment is an append-only entry in a task's discussion thread.
// Comments are never edited or removed. User is the author's display
// name as free text, not a reference into the users collection.
type Comment struct {
	User string    `bson:"user" json:"user"`
	Text string    `bson:"text" json:"text"`
	Date time.Time `bson:"date" json:"date"`
}

// Task is a unit of work owned by exactly one project. The project
// reference is immutable after creation; tasks are destroyed only when
// their project is deleted.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description"`
	Status      Status              `bson:"status" json:"status"`
	ProjectID   primitive.ObjectID  `bson:"project_id" json:"project"`
	AssignedTo  *primitive.ObjectID `bson:"assigned_to,omitempty" json:"-"`
	Comments    []Comment           `bson:"comments" json:"comments"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
