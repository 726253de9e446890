package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gearguard/gearguard/internal/models"
)

// TeamCollection defines the interface for team database operations.
type TeamCollection interface {
	InsertTeam(ctx context.Context, team models.Team) (string, error)
	FindTeamByID(ctx context.Context, id string) (*models.Team, error)
	FindTeams(ctx context.Context, filter bson.M) ([]models.Team, error)
	UpdateTeamFields(ctx context.Context, id string, fields bson.M) error
	DeleteTeam(ctx context.Context, id string) error
}

// MongoTeamCollection implements TeamCollection for MongoDB
type MongoTeamCollection struct {
	Collection *mongo.Collection
}

// InsertTeam inserts a new team and returns its id.
func (c *MongoTeamCollection) InsertTeam(ctx context.Context, team models.Team) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	team.CreatedAt = time.Now()
	team.UpdatedAt = time.Now()
	result, err := c.Collection.InsertOne(ctx, team)
	if err != nil {
		return "", err
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// FindTeamByID finds a team by its ID.
func (c *MongoTeamCollection) FindTeamByID(ctx context.Context, id string) (*models.Team, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var team models.Team
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&team)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// FindTeams queries teams and decodes all matches.
func (c *MongoTeamCollection) FindTeams(ctx context.Context, filter bson.M) ([]models.Team, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var teams []models.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// UpdateTeamFields applies a partial $set update to a team.
func (c *MongoTeamCollection) UpdateTeamFields(ctx context.Context, id string, fields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	if fields == nil {
		fields = bson.M{}
	}
	fields["updated_at"] = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteTeam deletes a team by its ID.
func (c *MongoTeamCollection) DeleteTeam(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
