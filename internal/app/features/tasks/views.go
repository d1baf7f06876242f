// internal/app/features/tasks/views.go
package tasks

import (
	"context"
	"time"

	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// assigneeView is the resolved assignee: id plus display name.
type assigneeView struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// taskView is the wire shape of a task. AssignedTo is always resolved to
// {id, name} or null, never a bare identifier, so clients get one
// consistent shape from every endpoint. A dangling assignee reference
// (the user no longer resolvable) renders as null.
type taskView struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      models.Status      `json:"status"`
	Project     primitive.ObjectID `json:"project"`
	AssignedTo  *assigneeView      `json:"assignedTo"`
	Comments    []models.Comment   `json:"comments"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func newTaskView(t models.Task, assignee *models.User) taskView {
	v := taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Project:     t.ProjectID,
		Comments:    t.Comments,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if v.Comments == nil {
		v.Comments = []models.Comment{}
	}
	if assignee != nil {
		v.AssignedTo = &assigneeView{ID: assignee.ID, Name: assignee.Name}
	}
	return v
}

// resolveOne builds the view for a single task, looking up the assignee's
// display name when one is set.
func (h *Handler) resolveOne(ctx context.Context, t models.Task) (taskView, error) {
	if t.AssignedTo == nil {
		return newTaskView(t, nil), nil
	}
	assignee, err := h.Users.GetByID(ctx, *t.AssignedTo)
	if err != nil {
		if err == userstore.ErrNotFound {
			return newTaskView(t, nil), nil
		}
		return taskView{}, err
	}
	return newTaskView(t, assignee), nil
}

// resolveMany builds views for a task list with one batched user lookup.
func (h *Handler) resolveMany(ctx context.Context, tasks []models.Task) ([]taskView, error) {
	ids := make([]primitive.ObjectID, 0, len(tasks))
	seen := make(map[primitive.ObjectID]bool)
	for _, t := range tasks {
		if t.AssignedTo != nil && !seen[*t.AssignedTo] {
			seen[*t.AssignedTo] = true
			ids = append(ids, *t.AssignedTo)
		}
	}

	byID := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) > 0 {
		users, err := h.Users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			byID[u.ID] = u
		}
	}

	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		var assignee *models.User
		if t.AssignedTo != nil {
			if u, ok := byID[*t.AssignedTo]; ok {
				assignee = &u
			}
		}
		views = append(views, newTaskView(t, assignee))
	}
	return views, nil
}
