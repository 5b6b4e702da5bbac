package source

import (
	"context"
	"errors"
	"fmt"
	"salonbook/pkg/model"
	"time"

	mongodb "salonbook/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoSource struct {
	client       *mongo.Client
	bookings     *mongo.Collection
	workingHours *mongo.Collection
	blackouts    *mongo.Collection
	settings     *mongo.Collection
}

func NewMongoSource(client *mongo.Client, database string) *MongoSource {
	db := client.Database(database)
	return &MongoSource{
		client:       client,
		bookings:     db.Collection(mongodb.BookingsCollection),
		workingHours: db.Collection(mongodb.WorkingHoursCollection),
		blackouts:    db.Collection(mongodb.BlackoutPeriodsCollection),
		settings:     db.Collection(mongodb.BusinessSettingsCollection),
	}
}

func (s *MongoSource) WorkingHours(ctx context.Context, technicianID string, weekday time.Weekday) ([]model.WorkingHours, error) {
	filter := bson.M{
		"technician_id": technicianID,
		"day_of_week":   int(weekday),
		"is_active":     true,
	}
	cursor, err := s.workingHours.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find working hours: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []model.WorkingHours
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode working hours: %w", err)
	}
	return rows, nil
}

func (s *MongoSource) BlockingBookings(ctx context.Context, technicianID, date string) ([]model.Booking, error) {
	filter := bson.M{
		"technician_id":    technicianID,
		"appointment_date": date,
		"status":           bson.M{"$in": blockingStatusStrings()},
	}
	cursor, err := s.bookings.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find blocking bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode blocking bookings: %w", err)
	}
	return bookings, nil
}

func (s *MongoSource) BlackoutPeriods(ctx context.Context, technicianID string, from, to time.Time) ([]model.BlackoutPeriod, error) {
	filter := bson.M{
		"technician_id":  technicianID,
		"start_datetime": bson.M{"$lt": to},
		"end_datetime":   bson.M{"$gt": from},
	}
	cursor, err := s.blackouts.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find blackout periods: %w", err)
	}
	defer cursor.Close(ctx)

	var periods []model.BlackoutPeriod
	if err := cursor.All(ctx, &periods); err != nil {
		return nil, fmt.Errorf("decode blackout periods: %w", err)
	}
	return periods, nil
}

func (s *MongoSource) Settings(ctx context.Context) (*model.BusinessSettings, error) {
	var settings model.BusinessSettings
	err := s.settings.FindOne(ctx, bson.M{"_id": model.SettingsID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find business settings: %w", err)
	}
	return &settings, nil
}

func (s *MongoSource) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
