package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gearguard/gearguard/internal/models"
)

// RequestCollection defines the interface for maintenance request
// database operations.
type RequestCollection interface {
	InsertRequest(ctx context.Context, request models.MaintenanceRequest) (string, error)
	FindRequestByID(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	FindRequests(ctx context.Context, filter bson.M) ([]models.MaintenanceRequest, error)
	UpdateRequestFields(ctx context.Context, id string, fields bson.M) error
	DeleteRequest(ctx context.Context, id string) error
}

// MongoRequestCollection implements RequestCollection for MongoDB
type MongoRequestCollection struct {
	Collection *mongo.Collection
}

// InsertRequest inserts a new maintenance request and returns its id.
func (c *MongoRequestCollection) InsertRequest(ctx context.Context, request models.MaintenanceRequest) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	result, err := c.Collection.InsertOne(ctx, request)
	if err != nil {
		return "", err
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// FindRequestByID finds a maintenance request by its ID.
func (c *MongoRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var request models.MaintenanceRequest
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindRequests queries maintenance requests and decodes all matches.
func (c *MongoRequestCollection) FindRequests(ctx context.Context, filter bson.M) ([]models.MaintenanceRequest, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.Collection.Find(ctx, filter, options.Find())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var requests []models.MaintenanceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateRequestFields applies a partial $set update to a request, always
// refreshing updated_at.
func (c *MongoRequestCollection) UpdateRequestFields(ctx context.Context, id string, fields bson.M) error {
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

// DeleteRequest deletes a maintenance request by its ID.
func (c *MongoRequestCollection) DeleteRequest(ctx context.Context, id string) error {
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
