package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetStatus represents the operational state of an asset.
type AssetStatus string

const (
	AssetOperational      AssetStatus = "operational"
	AssetUnderMaintenance AssetStatus = "under_maintenance"
	AssetOutOfService     AssetStatus = "out_of_service"
)

// Asset represents a piece of equipment under management.
type Asset struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                     string             `bson:"name" json:"name"`
	AssetTag                 string             `bson:"asset_tag" json:"assetTag"`
	Category                 string             `bson:"category" json:"category"`
	Manufacturer             string             `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Model                    string             `bson:"model,omitempty" json:"model,omitempty"`
	SerialNumber             string             `bson:"serial_number,omitempty" json:"serialNumber,omitempty"`
	PurchaseDate             *time.Time         `bson:"purchase_date,omitempty" json:"purchaseDate,omitempty"`
	WarrantyExpiry           *time.Time         `bson:"warranty_expiry,omitempty" json:"warrantyExpiry,omitempty"`
	Location                 string             `bson:"location,omitempty" json:"location,omitempty"`
	TeamID                   string             `bson:"team_id,omitempty" json:"teamId,omitempty"`
	Status                   AssetStatus        `bson:"status" json:"status"`
	Specifications           map[string]string  `bson:"specifications,omitempty" json:"specifications,omitempty"`
	LastMaintenanceDate      *time.Time         `bson:"last_maintenance_date,omitempty" json:"lastMaintenanceDate,omitempty"`
	NextScheduledMaintenance *time.Time         `bson:"next_scheduled_maintenance,omitempty" json:"nextScheduledMaintenance,omitempty"`
	CreatedAt                time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt                time.Time          `bson:"updated_at" json:"updatedAt"`
}

// IsValidAssetStatus checks if an asset status is valid.
func IsValidAssetStatus(s AssetStatus) bool {
	switch s {
	case AssetOperational, AssetUnderMaintenance, AssetOutOfService:
		return true
	default:
		return false
	}
}
