package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team represents a group of technicians.
type Team struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Specialization string             `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Color          string             `bson:"color,omitempty" json:"color,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`

	// Derived counts, populated on read only.
	MemberCount int `bson:"-" json:"memberCount,omitempty"`
	AssetCount  int `bson:"-" json:"assetCount,omitempty"`
}
