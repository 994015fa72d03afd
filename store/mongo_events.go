package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/sriram/festival-backend-go/models"
)

type mongoEvents struct {
	col *mongo.Collection
}

func (s *mongoEvents) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *mongoEvents) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return s.findOne(ctx, bson.M{"event_id": slug})
}

func (s *mongoEvents) FindByRef(ctx context.Context, ref string) (*models.Event, error) {
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		return s.FindByID(ctx, oid)
	}
	return s.FindBySlug(ctx, ref)
}

func (s *mongoEvents) findOne(ctx context.Context, filter bson.M) (*models.Event, error) {
	var event models.Event
	err := s.col.FindOne(ctx, filter).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *mongoEvents) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"event_id": slug})
	return n > 0, err
}

func (s *mongoEvents) Insert(ctx context.Context, event *models.Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, event)
	return err
}

func (s *mongoEvents) ListActive(ctx context.Context) ([]models.Event, error) {
	cursor, err := s.col.Find(ctx, bson.M{"isActive": true, "isArchived": false})
	if err != nil {
		return nil, err
	}
	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *mongoEvents) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *mongoEvents) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) error {
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

func (s *mongoEvents) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushApplicationIfAbsent guards duplicates at the store: the filter only
// matches when no application for this user exists, so two concurrent
// registrations cannot both append.
func (s *mongoEvents) PushApplicationIfAbsent(ctx context.Context, eventID primitive.ObjectID, app models.Application) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": eventID, "applications.userId": bson.M{"$ne": app.UserID}},
		bson.M{
			"$push": bson.M{"applications": app},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *mongoEvents) PullSoloApplication(ctx context.Context, eventID, userID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$pull": bson.M{"applications": bson.M{
			"userId": userID,
			"teamId": bson.M{"$exists": false},
		}}},
	)
	return err
}

func (s *mongoEvents) SetWinners(ctx context.Context, eventID primitive.ObjectID, winners []models.WinnerEntry, at time.Time) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{
			"winners":          winners,
			"winnersUpdatedAt": at,
			"updated_at":       at,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoEvents) SetApplicationPresence(ctx context.Context, eventSlug string, userID primitive.ObjectID, present bool) (bool, bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"event_id": eventSlug, "applications.userId": userID},
		bson.M{"$set": bson.M{"applications.$.isPresent": present}},
	)
	if err != nil {
		return false, false, err
	}
	return res.MatchedCount > 0, res.ModifiedCount > 0, nil
}

func toBsonM(set map[string]any) bson.M {
	m := bson.M{}
	for k, v := range set {
		m[k] = v
	}
	return m
}
