package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/sriram/festival-backend-go/models"
)

type mongoRegistrations struct {
	col *mongo.Collection
}

func (s *mongoRegistrations) Insert(ctx context.Context, row *models.EventRegistration) error {
	if row.ID.IsZero() {
		row.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, row)
	return err
}

func (s *mongoRegistrations) InsertMany(ctx context.Context, rows []models.EventRegistration) ([]models.EventRegistration, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	docs := make([]any, 0, len(rows))
	for i := range rows {
		if rows[i].ID.IsZero() {
			rows[i].ID = primitive.NewObjectID()
		}
		docs = append(docs, rows[i])
	}
	if _, err := s.col.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *mongoRegistrations) FindByID(ctx context.Context, id primitive.ObjectID) (*models.EventRegistration, error) {
	var row models.EventRegistration
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *mongoRegistrations) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) error {
	set["updated_at"] = time.Now()
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": toBsonM(set)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoRegistrations) SetPresence(ctx context.Context, id primitive.ObjectID, present bool, at time.Time) (bool, bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"isPresent":          present,
			"attendanceMarkedAt": at,
			"updated_at":         at,
		}},
	)
	if err != nil {
		return false, false, err
	}
	return res.MatchedCount > 0, res.ModifiedCount > 0, nil
}

func (s *mongoRegistrations) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventRegistration, error) {
	return s.list(ctx, bson.M{"eventId": eventID})
}

func (s *mongoRegistrations) ListByCollege(ctx context.Context, college string, registrantIDs []primitive.ObjectID) ([]models.EventRegistration, error) {
	filter := bson.M{"collegeName": college, "isActive": true}
	if len(registrantIDs) > 0 {
		filter["registrantId"] = bson.M{"$in": registrantIDs}
	}
	return s.list(ctx, filter)
}

func (s *mongoRegistrations) ListAll(ctx context.Context) ([]models.EventRegistration, error) {
	return s.list(ctx, bson.M{})
}

func (s *mongoRegistrations) CountByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"teamId": teamID})
}

func (s *mongoRegistrations) list(ctx context.Context, filter bson.M) ([]models.EventRegistration, error) {
	cursor, err := s.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "registrationDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var rows []models.EventRegistration
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
