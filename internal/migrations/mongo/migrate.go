package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salonbook/internal/migrations/mongo/validators"
	mongotx "salonbook/pkg/db/mongo"
	"salonbook/pkg/logger"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "technician_id", Value: 1},
			{Key: "appointment_date", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "appointment_date", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		{
			Keys:    bson.D{{Key: "appointment_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	// At most one active row per technician and weekday.
	WorkingHoursIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "technician_id", Value: 1},
				{Key: "day_of_week", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_active_technician_day").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_active": true}),
		},
	}

	BlackoutPeriodsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "technician_id", Value: 1},
			{Key: "start_datetime", Value: 1},
			{Key: "end_datetime", Value: 1},
		}},
	}

	// Expired locks left behind by crashed writers are reaped by Mongo.
	SlotLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDefinition struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Definitions() []CollectionDefinition {
	return []CollectionDefinition{
		{Name: mongotx.BookingsCollection, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: mongotx.WorkingHoursCollection, Indexes: WorkingHoursIndexes, Validator: validators.WorkingHoursValidator},
		{Name: mongotx.BlackoutPeriodsCollection, Indexes: BlackoutPeriodsIndexes, Validator: validators.BlackoutPeriodValidator},
		{Name: mongotx.BusinessSettingsCollection, Validator: validators.BusinessSettingsValidator},
		{Name: mongotx.SlotLocksCollection, Indexes: SlotLocksIndexes, Validator: validators.SlotLockValidator},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Definitions() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully", "collections", len(Definitions()))
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
