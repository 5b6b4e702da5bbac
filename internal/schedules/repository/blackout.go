package repository

import (
	"context"
	"errors"
	"fmt"
	scheduleerrors "salonbook/internal/schedules/errors"
	"salonbook/pkg/config"
	mongodb "salonbook/pkg/db/mongo"
	"salonbook/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BlackoutRepository interface {
	Create(ctx context.Context, p *model.BlackoutPeriod) error
	FindByID(ctx context.Context, id string) (*model.BlackoutPeriod, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.BlackoutPeriod, error)
	Count(ctx context.Context) (int64, error)
	FindByTechnician(ctx context.Context, technicianID string, from, to *time.Time) ([]*model.BlackoutPeriod, error)
	Update(ctx context.Context, id string, p *model.BlackoutPeriod) error
	Delete(ctx context.Context, id string) error
}

type mongoBlackoutRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBlackoutRepository(cfg *config.Config) BlackoutRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlackoutRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.BlackoutPeriodsCollection),
	}
}

func (r *mongoBlackoutRepository) Create(ctx context.Context, p *model.BlackoutPeriod) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	p.CreatedAt = now()
	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create blackout period: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBlackoutRepository) FindByID(ctx context.Context, id string) (*model.BlackoutPeriod, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var p model.BlackoutPeriod
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduleerrors.ErrBlackoutNotFound
		}
		return nil, fmt.Errorf("failed to find blackout period: %w", err)
	}
	return &p, nil
}

func (r *mongoBlackoutRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.BlackoutPeriod, error) {
	return r.find(ctx, bson.M{}, options.Find().SetLimit(int64(limit)).SetSkip(offset))
}

func (r *mongoBlackoutRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count blackout periods: %w", err)
	}
	return count, nil
}

// FindByTechnician returns the technician's periods overlapping [from, to).
// A nil bound leaves that side open.
func (r *mongoBlackoutRepository) FindByTechnician(ctx context.Context, technicianID string, from, to *time.Time) ([]*model.BlackoutPeriod, error) {
	filter := bson.M{"technician_id": technicianID}
	if to != nil {
		filter["start_datetime"] = bson.M{"$lt": *to}
	}
	if from != nil {
		filter["end_datetime"] = bson.M{"$gt": *from}
	}
	return r.find(ctx, filter, options.Find())
}

func (r *mongoBlackoutRepository) Update(ctx context.Context, id string, p *model.BlackoutPeriod) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"start_datetime": p.Start,
			"end_datetime":   p.End,
			"title":          p.Title,
			"description":    p.Description,
			"period_type":    p.PeriodType,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update blackout period: %w", err)
	}
	if result.MatchedCount == 0 {
		return scheduleerrors.ErrBlackoutNotFound
	}
	return nil
}

func (r *mongoBlackoutRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete blackout period: %w", err)
	}
	if result.DeletedCount == 0 {
		return scheduleerrors.ErrBlackoutNotFound
	}
	return nil
}

func (r *mongoBlackoutRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.BlackoutPeriod, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts.SetSort(bson.D{{Key: "start_datetime", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blackout periods: %w", err)
	}
	defer cursor.Close(ctx)

	var periods []*model.BlackoutPeriod
	if err := cursor.All(ctx, &periods); err != nil {
		return nil, fmt.Errorf("failed to decode blackout periods: %w", err)
	}
	return periods, nil
}
