package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nauassist/internal/models"
)

// TimetableMongo is the persistent backing of the schedule cache: one
// timetable document per group identifier.
type TimetableMongo struct {
	col *mongo.Collection
}

// NewTimetableRepository operates on the "timetables" collection.
func NewTimetableRepository(db *mongo.Database) *TimetableMongo {
	return &TimetableMongo{
		col: db.Collection("timetables"),
	}
}

// FindByGroup returns the stored timetable for a group. A missing document
// returns (nil, nil) so callers can decide to fetch fresh data.
func (r *TimetableMongo) FindByGroup(ctx context.Context, group string) (*models.Timetable, error) {
	var tt models.Timetable
	err := r.col.FindOne(ctx, bson.M{"_id": group}).Decode(&tt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// Upsert inserts or replaces the timetable with the same group id.
func (r *TimetableMongo) Upsert(ctx context.Context, tt *models.Timetable) error {
	_, err := r.col.ReplaceOne(
		ctx,
		bson.M{"_id": tt.Group},
		tt,
		options.Replace().SetUpsert(true),
	)
	return err
}
