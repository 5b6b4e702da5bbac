package repository

import (
	"context"
	"errors"
	"fmt"
	"salonbook/pkg/config"
	mongodb "salonbook/pkg/db/mongo"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsRepository stores the single business settings document.
type SettingsRepository interface {
	// Get returns nil without error when no settings have been saved.
	Get(ctx context.Context) (*model.BusinessSettings, error)
	Save(ctx context.Context, settings *model.BusinessSettings) error
}

type mongoSettingsRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSettingsRepository(cfg *config.Config) SettingsRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSettingsRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.BusinessSettingsCollection),
	}
}

func (r *mongoSettingsRepository) Get(ctx context.Context) (*model.BusinessSettings, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var settings model.BusinessSettings
	err := r.collection.FindOne(ctx, bson.M{"_id": model.SettingsID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find business settings: %w", err)
	}
	return &settings, nil
}

func (r *mongoSettingsRepository) Save(ctx context.Context, settings *model.BusinessSettings) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	settings.ID = model.SettingsID
	settings.UpdatedAt = now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": model.SettingsID}, settings, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save business settings: %w", err)
	}
	return nil
}
