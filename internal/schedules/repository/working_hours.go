package repository

import (
	"context"
	"errors"
	"fmt"
	scheduleerrors "salonbook/internal/schedules/errors"
	"salonbook/pkg/config"
	mongodb "salonbook/pkg/db/mongo"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WorkingHoursRepository interface {
	Create(ctx context.Context, wh *model.WorkingHours) error
	FindByID(ctx context.Context, id string) (*model.WorkingHours, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.WorkingHours, error)
	Count(ctx context.Context) (int64, error)
	FindByTechnician(ctx context.Context, technicianID string) ([]*model.WorkingHours, error)
	FindActive(ctx context.Context, technicianID string, dayOfWeek int) ([]*model.WorkingHours, error)
	Update(ctx context.Context, id string, wh *model.WorkingHours) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoWorkingHoursRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongodb.TransactionManager
}

func NewMongoWorkingHoursRepository(cfg *config.Config) WorkingHoursRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWorkingHoursRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.WorkingHoursCollection),
		txManager:  mongodb.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoWorkingHoursRepository) Create(ctx context.Context, wh *model.WorkingHours) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	wh.CreatedAt = now()
	result, err := r.collection.InsertOne(ctx, wh)
	if err != nil {
		return fmt.Errorf("failed to create working hours: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		wh.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWorkingHoursRepository) FindByID(ctx context.Context, id string) (*model.WorkingHours, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var wh model.WorkingHours
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&wh); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduleerrors.ErrWorkingHoursNotFound
		}
		return nil, fmt.Errorf("failed to find working hours: %w", err)
	}
	return &wh, nil
}

func (r *mongoWorkingHoursRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.WorkingHours, error) {
	return r.find(ctx, bson.M{}, options.Find().SetLimit(int64(limit)).SetSkip(offset))
}

func (r *mongoWorkingHoursRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count working hours: %w", err)
	}
	return count, nil
}

func (r *mongoWorkingHoursRepository) FindByTechnician(ctx context.Context, technicianID string) ([]*model.WorkingHours, error) {
	return r.find(ctx, bson.M{"technician_id": technicianID}, options.Find())
}

func (r *mongoWorkingHoursRepository) FindActive(ctx context.Context, technicianID string, dayOfWeek int) ([]*model.WorkingHours, error) {
	filter := bson.M{
		"technician_id": technicianID,
		"day_of_week":   dayOfWeek,
		"is_active":     true,
	}
	return r.find(ctx, filter, options.Find())
}

func (r *mongoWorkingHoursRepository) Update(ctx context.Context, id string, wh *model.WorkingHours) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"start_time": wh.StartTime,
			"end_time":   wh.EndTime,
			"is_active":  wh.IsActive,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update working hours: %w", err)
	}
	if result.MatchedCount == 0 {
		return scheduleerrors.ErrWorkingHoursNotFound
	}
	return nil
}

func (r *mongoWorkingHoursRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete working hours: %w", err)
	}
	if result.DeletedCount == 0 {
		return scheduleerrors.ErrWorkingHoursNotFound
	}
	return nil
}

func (r *mongoWorkingHoursRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoWorkingHoursRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.WorkingHours, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts.SetSort(bson.D{
		{Key: "technician_id", Value: 1},
		{Key: "day_of_week", Value: 1},
		{Key: "start_time", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find working hours: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []*model.WorkingHours
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode working hours: %w", err)
	}
	return rows, nil
}
