package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/sriram/festival-backend-go/models"
	utils "github.com/sriram/festival-backend-go/utils"
)

func newTestWinnerService(f *fixture) *WinnerService {
	svc := NewWinnerService(f.st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return testNow }
	return svc
}

func registeredTeam(f *fixture, event *models.Event, name string, leader primitive.ObjectID, memberIDs ...primitive.ObjectID) *models.Team {
	members := []models.TeamMember{{UserID: &leader, Name: "leader"}}
	for i := range memberIDs {
		members = append(members, models.TeamMember{UserID: &memberIDs[i]})
	}
	team := &models.Team{
		EventID:      event.ID,
		TeamName:     name,
		Leader:       &leader,
		Members:      members,
		IsRegistered: true,
	}
	_ = f.teams.Insert(context.Background(), team)
	return team
}

func TestSetWinners(t *testing.T) {
	ctx := context.Background()

	t.Run("persists sorted list and stamps time", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(groupEvent("Hackathon", 2, 4))
		a := registeredTeam(f, event, "Alpha", primitive.NewObjectID())
		b := registeredTeam(f, event, "Beta", primitive.NewObjectID())
		svc := newTestWinnerService(f)

		res, err := svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{
			{Rank: 2, TeamID: b.ID.Hex(), TeamName: "Beta"},
			{Rank: 1, TeamID: a.ID.Hex(), TeamName: "Alpha"},
		})
		require.NoError(t, err)
		require.Len(t, res.Winners, 2)
		assert.Equal(t, 1, res.Winners[0].Rank)
		assert.Equal(t, "Alpha", res.Winners[0].TeamName)
		assert.Equal(t, 2, res.Winners[1].Rank)

		stored := f.event.events[event.ID]
		require.NotNil(t, stored.WinnersUpdatedAt)
		assert.Equal(t, testNow, *stored.WinnersUpdatedAt)
		assert.Equal(t, res.Winners, stored.Winners)
	})

	t.Run("missing ranks default to submission order", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(groupEvent("Hackathon", 2, 4))
		a := registeredTeam(f, event, "Alpha", primitive.NewObjectID())
		b := registeredTeam(f, event, "Beta", primitive.NewObjectID())
		svc := newTestWinnerService(f)

		res, err := svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{
			{TeamID: a.ID.Hex()},
			{TeamID: b.ID.Hex()},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Winners[0].Rank)
		assert.Equal(t, 2, res.Winners[1].Rank)
	})

	t.Run("propagates flags to team leader and members", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(groupEvent("Hackathon", 2, 4))
		leader := f.seedUser(&models.User{Email: "lead@example.com"})
		mate := f.seedUser(&models.User{Email: "mate@example.com"})
		team := registeredTeam(f, event, "Alpha", leader.ID, mate.ID)
		svc := newTestWinnerService(f)

		_, err := svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{
			{Rank: 1, TeamID: team.ID.Hex(), TeamName: "Alpha"},
		})
		require.NoError(t, err)

		stored := f.teams.teams[team.ID]
		assert.True(t, stored.IsWinner)
		require.NotNil(t, stored.WinnerRank)
		assert.Equal(t, 1, *stored.WinnerRank)
		assert.True(t, f.users.users[leader.ID].IsWinner)
		assert.True(t, f.users.users[mate.ID].IsWinner)
	})

	t.Run("solo winner gets flag without rank on user", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(soloEvent("Quiz Mania"))
		user := f.seedUser(&models.User{Email: "asha@example.com"})
		svc := newTestWinnerService(f)

		res, err := svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{
			{Rank: 1, UserID: user.ID.Hex()},
		})
		require.NoError(t, err)
		require.Len(t, res.Winners, 1)
		assert.Equal(t, user.ID, *res.Winners[0].UserID)
		assert.True(t, f.users.users[user.ID].IsWinner)
	})

	t.Run("resubmission unmarks removed teams", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(groupEvent("Hackathon", 2, 4))
		a := registeredTeam(f, event, "Alpha", primitive.NewObjectID())
		b := registeredTeam(f, event, "Beta", primitive.NewObjectID())
		svc := newTestWinnerService(f)

		_, err := svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{
			{Rank: 1, TeamID: a.ID.Hex()},
			{Rank: 2, TeamID: b.ID.Hex()},
		})
		require.NoError(t, err)

		_, err = svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{
			{Rank: 1, TeamID: b.ID.Hex()},
		})
		require.NoError(t, err)

		assert.False(t, f.teams.teams[a.ID].IsWinner)
		assert.Nil(t, f.teams.teams[a.ID].WinnerRank)
		assert.True(t, f.teams.teams[b.ID].IsWinner)
		assert.Equal(t, 1, *f.teams.teams[b.ID].WinnerRank)
	})

	t.Run("empty list clears every flag", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(groupEvent("Hackathon", 2, 4))
		a := registeredTeam(f, event, "Alpha", primitive.NewObjectID())
		svc := newTestWinnerService(f)

		_, err := svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{
			{Rank: 1, TeamID: a.ID.Hex()},
		})
		require.NoError(t, err)
		require.True(t, f.teams.teams[a.ID].IsWinner)

		res, err := svc.SetWinners(ctx, event.ID.Hex(), nil)
		require.NoError(t, err)
		assert.Empty(t, res.Winners)
		assert.False(t, f.teams.teams[a.ID].IsWinner)
		assert.Empty(t, f.event.events[event.ID].Winners)
	})

	t.Run("teams in other events untouched by reset", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(groupEvent("Hackathon", 2, 4))
		other := f.seedEvent(groupEvent("Robotics", 2, 4))
		otherTeam := registeredTeam(f, other, "Gears", primitive.NewObjectID())
		rank := 1
		f.teams.teams[otherTeam.ID].IsWinner = true
		f.teams.teams[otherTeam.ID].WinnerRank = &rank
		svc := newTestWinnerService(f)

		_, err := svc.SetWinners(ctx, event.ID.Hex(), nil)
		require.NoError(t, err)
		assert.True(t, f.teams.teams[otherTeam.ID].IsWinner)
	})

	t.Run("propagation failure does not fail the submission", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(groupEvent("Hackathon", 2, 4))
		a := registeredTeam(f, event, "Alpha", primitive.NewObjectID())
		svc := newTestWinnerService(f)

		// Second entry references a team that no longer exists.
		res, err := svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{
			{Rank: 1, TeamID: a.ID.Hex()},
			{Rank: 2, TeamID: primitive.NewObjectID().Hex()},
		})
		require.NoError(t, err)
		assert.Len(t, res.Winners, 2)
		assert.True(t, f.teams.teams[a.ID].IsWinner)
	})

	t.Run("invalid entries rejected", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(groupEvent("Hackathon", 2, 4))
		svc := newTestWinnerService(f)

		_, err := svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{{Rank: 1}})
		assertKind(t, err, utils.KindValidation)

		_, err = svc.SetWinners(ctx, event.ID.Hex(), []WinnerInput{{Rank: 1, TeamID: "not-hex"}})
		assertKind(t, err, utils.KindValidation)
	})
}
