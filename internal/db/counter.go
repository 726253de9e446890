package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterCollection hands out monotonic sequence numbers. Display numbers
// for maintenance requests come from here so they stay unique under
// concurrent creates.
type CounterCollection interface {
	Next(ctx context.Context, name string) (int64, error)
}

// MongoCounterCollection implements CounterCollection on a counters
// collection with one document per sequence.
type MongoCounterCollection struct {
	Collection *mongo.Collection
}

type counterDoc struct {
	Name  string `bson:"name"`
	Value int64  `bson:"value"`
}

// Next atomically increments and returns the named sequence. The counter
// document is created on first use.
func (c *MongoCounterCollection) Next(ctx context.Context, name string) (int64, error) {
	if c.Collection == nil {
		return 0, fmt.Errorf("mongo collection is nil")
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc counterDoc
	err := c.Collection.FindOneAndUpdate(
		ctx,
		bson.M{"name": name},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}

// RequestNumberSequence is the sequence name backing request display numbers.
const RequestNumberSequence = "request_number"

// FormatRequestNumber renders a sequence value as a display number.
func FormatRequestNumber(n int64) string {
	return fmt.Sprintf("REQ-%05d", n)
}
