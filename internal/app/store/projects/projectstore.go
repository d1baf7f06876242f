// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

var (
	// ErrNotFound is returned when no project matches the lookup.
	ErrNotFound = errors.New("project not found")
	// ErrAlreadyMember is returned when the invited user is already in the
	// membership set. The set is unchanged.
	ErrAlreadyMember = errors.New("user is already a member of this project")

	errNameRequired = errors.New("project name is required")
)

// Create inserts a project with the owner as its sole member, which keeps
// the owner-in-members invariant from the first write.
func (s *Store) Create(ctx context.Context, name, description string, owner primitive.ObjectID) (models.Project, error) {
	if name == "" {
		return models.Project{}, errNameRequired
	}

	now := time.Now().UTC()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		Owner:       owner,
		Members:     []primitive.ObjectID{owner},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a project by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByMember returns all projects whose membership set contains userID,
// in storage order.
func (s *Store) ListByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, bson.M{"members": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// AddMember appends userID to the membership set with a single atomic
// $addToSet, so two concurrent invites cannot lose an update or produce a
// duplicate entry. Returns ErrAlreadyMember when the user was present and
// ErrNotFound when the project does not exist.
func (s *Store) AddMember(ctx context.Context, projectID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "members": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Nothing matched: the project is missing or the user is already a
	// member. Disambiguate with a second read.
	err = s.c.FindOne(ctx, bson.M{"_id": projectID}).Err()
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyMember
}

// Delete removes the project document. Returns the number of documents
// deleted (0 when the project did not exist).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
