// server/internal/models/driver.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Driver is a driver account in the directory. Identifier uniqueness
// (email, phone, licenseNumber) only holds among non-deleted accounts;
// the partial indexes in internal/database enforce that.
type Driver struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Phone         string             `bson:"phone" json:"phone"`
	LicenseNumber string             `bson:"licenseNumber" json:"licenseNumber"`
	Password      string             `bson:"password" json:"-"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	IsDeleted     bool               `bson:"isDeleted" json:"isDeleted"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
