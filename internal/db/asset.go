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

// AssetCollection defines the interface for asset database operations.
type AssetCollection interface {
	InsertAsset(ctx context.Context, asset models.Asset) (string, error)
	FindAssetByID(ctx context.Context, id string) (*models.Asset, error)
	FindAssets(ctx context.Context, filter bson.M) ([]models.Asset, error)
	UpdateAssetFields(ctx context.Context, id string, fields bson.M) error
	DeleteAsset(ctx context.Context, id string) error
}

// MongoAssetCollection implements AssetCollection for MongoDB
type MongoAssetCollection struct {
	Collection *mongo.Collection
}

// InsertAsset inserts a new asset and returns its id.
func (c *MongoAssetCollection) InsertAsset(ctx context.Context, asset models.Asset) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	asset.CreatedAt = time.Now()
	asset.UpdatedAt = time.Now()
	result, err := c.Collection.InsertOne(ctx, asset)
	if err != nil {
		return "", err
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// FindAssetByID finds an asset by its ID.
func (c *MongoAssetCollection) FindAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var asset models.Asset
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&asset)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindAssets queries assets and decodes all matches.
func (c *MongoAssetCollection) FindAssets(ctx context.Context, filter bson.M) ([]models.Asset, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var assets []models.Asset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// UpdateAssetFields applies a partial $set update to an asset.
func (c *MongoAssetCollection) UpdateAssetFields(ctx context.Context, id string, fields bson.M) error {
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

// DeleteAsset deletes an asset by its ID.
func (c *MongoAssetCollection) DeleteAsset(ctx context.Context, id string) error {
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
