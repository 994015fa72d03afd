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

type mongoTeams struct {
	col *mongo.Collection
}

func (s *mongoTeams) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *mongoTeams) findOne(ctx context.Context, filter bson.M) (*models.Team, error) {
	var team models.Team
	err := s.col.FindOne(ctx, filter).Decode(&team)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *mongoTeams) Insert(ctx context.Context, team *models.Team) error {
	if team.ID.IsZero() {
		team.ID = primitive.NewObjectID()
	}
	for i := range team.Members {
		if team.Members[i].ID.IsZero() {
			team.Members[i].ID = primitive.NewObjectID()
		}
	}
	_, err := s.col.InsertOne(ctx, team)
	return err
}

func (s *mongoTeams) FindForUser(ctx context.Context, eventID, userID primitive.ObjectID, registeredOnly bool) (*models.Team, error) {
	filter := bson.M{
		"eventId": eventID,
		"$or": bson.A{
			bson.M{"leader": userID},
			bson.M{"members.userId": userID},
		},
	}
	if registeredOnly {
		filter["isRegistered"] = true
	}
	return s.findOne(ctx, filter)
}

func (s *mongoTeams) FindRegisteredByLeader(ctx context.Context, eventID, leaderID primitive.ObjectID) (*models.Team, error) {
	return s.findOne(ctx, bson.M{
		"eventId":      eventID,
		"leader":       leaderID,
		"isRegistered": true,
	})
}

func (s *mongoTeams) CountRegistered(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"eventId": eventID, "isRegistered": true})
}

func (s *mongoTeams) ListRegistered(ctx context.Context, eventID *primitive.ObjectID) ([]models.Team, error) {
	filter := bson.M{"isRegistered": true}
	if eventID != nil {
		filter["eventId"] = *eventID
	}
	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var teams []models.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *mongoTeams) MarkWinner(ctx context.Context, eventID, teamID primitive.ObjectID, rank int) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": teamID, "eventId": eventID},
		bson.M{"$set": bson.M{
			"isWinner":   true,
			"winnerRank": rank,
			"updated_at": time.Now(),
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

func (s *mongoTeams) ResetWinnersExcept(ctx context.Context, eventID primitive.ObjectID, keep []primitive.ObjectID) error {
	filter := bson.M{"eventId": eventID}
	if len(keep) > 0 {
		filter["_id"] = bson.M{"$nin": keep}
	}
	_, err := s.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"isWinner":   false,
		"winnerRank": nil,
		"updated_at": time.Now(),
	}})
	return err
}

// UpdateMember addresses one member subdocument through an array filter, so a
// single write edits exactly that member's fields.
func (s *mongoTeams) UpdateMember(ctx context.Context, teamID, memberID primitive.ObjectID, set map[string]any) (bool, error) {
	prefixed := bson.M{"updated_at": time.Now()}
	for k, v := range set {
		prefixed["members.$[m]."+k] = v
	}
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": teamID},
		bson.M{"$set": prefixed},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: bson.A{bson.M{"m._id": memberID}},
		}),
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *mongoTeams) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) error {
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
