// server/internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"fleetlog-api-server/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens the client, pings the server and returns the database
// handle. The handle is passed explicitly to everything that needs it;
// there is no package-level connection state.
func Connect(cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the indexes the invariants depend on. The
// compound unique index on daily_logs is the arbiter for the
// one-log-per-driver-per-day rule; concurrent inserts for the same pair
// resolve to exactly one success at the store, not in request logic.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	logIndexes := db.Collection("daily_logs").Indexes()
	_, err := logIndexes.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "driverId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_driver_date"),
	})
	if err != nil {
		return fmt.Errorf("failed to create daily_logs index: %w", err)
	}

	// Driver identifiers must be unique only among non-deleted accounts,
	// so a deleted account's email/phone/license can be reused.
	notDeleted := bson.M{"isDeleted": false}
	driverModels := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(notDeleted).SetName("uniq_email_live"),
		},
		{
			Keys: bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(notDeleted).SetName("uniq_phone_live"),
		},
		{
			Keys: bson.D{{Key: "licenseNumber", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(notDeleted).SetName("uniq_license_live"),
		},
	}
	if _, err := db.Collection("drivers").Indexes().CreateMany(ctx, driverModels); err != nil {
		return fmt.Errorf("failed to create drivers indexes: %w", err)
	}

	adminIndexes := db.Collection("admins").Indexes()
	_, err = adminIndexes.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_admin_email"),
	})
	if err != nil {
		return fmt.Errorf("failed to create admins index: %w", err)
	}

	return nil
}
