package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/sriram/festival-backend-go/models"
	utils "github.com/sriram/festival-backend-go/utils"
)

func newTestEventService(f *fixture) *EventService {
	svc := NewEventService(f.st)
	svc.now = func() time.Time { return testNow }
	return svc
}

func clubAdmin(club string) Principal {
	p := superAdmin()
	p.IsSuperAdmin = false
	p.Club = club
	return p
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("derives slug and defaults", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)

		event, err := svc.CreateEvent(ctx, clubAdmin("Coding Club"), EventInput{
			Name: "Capture The Flag!",
		})
		require.NoError(t, err)
		assert.Equal(t, "capture-the-flag", event.EventID)
		assert.Equal(t, models.EventTypeSolo, event.EventType)
		assert.Equal(t, "Coding Club", event.ClubInCharge)
		assert.Equal(t, "Coding Club", event.OrganizingClub)
		assert.Equal(t, 1, event.MinTeamSize)
		assert.Equal(t, 1, event.MaxTeamSize)
		assert.True(t, event.IsActive)
		assert.NotNil(t, event.Applications)
	})

	t.Run("slug collision appends counter", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)
		admin := clubAdmin("Coding Club")

		first, err := svc.CreateEvent(ctx, admin, EventInput{Name: "Quiz"})
		require.NoError(t, err)
		second, err := svc.CreateEvent(ctx, admin, EventInput{Name: "Quiz"})
		require.NoError(t, err)
		third, err := svc.CreateEvent(ctx, admin, EventInput{Name: "Quiz"})
		require.NoError(t, err)

		assert.Equal(t, "quiz", first.EventID)
		assert.Equal(t, "quiz-1", second.EventID)
		assert.Equal(t, "quiz-2", third.EventID)
	})

	t.Run("group defaults to 2..6 team size", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)

		event, err := svc.CreateEvent(ctx, clubAdmin("Coding Club"), EventInput{
			Name:      "Hackathon",
			EventType: models.EventTypeGroup,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, event.MinTeamSize)
		assert.Equal(t, 6, event.MaxTeamSize)
	})

	t.Run("super admin may pick the club", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)

		event, err := svc.CreateEvent(ctx, superAdmin(), EventInput{
			Name:         "Debate",
			ClubInCharge: "Lit Club",
		})
		require.NoError(t, err)
		assert.Equal(t, "Lit Club", event.ClubInCharge)
	})

	t.Run("club admin ignores submitted club", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)

		event, err := svc.CreateEvent(ctx, clubAdmin("Coding Club"), EventInput{
			Name:         "Debate",
			ClubInCharge: "Lit Club",
		})
		require.NoError(t, err)
		assert.Equal(t, "Coding Club", event.ClubInCharge)
	})

	t.Run("rejections", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)

		_, err := svc.CreateEvent(ctx, Principal{Role: models.RoleUser}, EventInput{Name: "Quiz"})
		assertKind(t, err, utils.KindForbidden)

		_, err = svc.CreateEvent(ctx, clubAdmin("Coding Club"), EventInput{Name: "  "})
		assertKind(t, err, utils.KindValidation)

		_, err = svc.CreateEvent(ctx, clubAdmin("Coding Club"), EventInput{Name: "Quiz", EventType: "pair"})
		assertKind(t, err, utils.KindValidation)

		_, err = svc.CreateEvent(ctx, clubAdmin(""), EventInput{Name: "Quiz"})
		assertKind(t, err, utils.KindValidation)
	})

	t.Run("negative fee clamped", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)

		event, err := svc.CreateEvent(ctx, clubAdmin("Coding Club"), EventInput{
			Name:               "Quiz",
			RegistrationAmount: -50,
		})
		require.NoError(t, err)
		assert.Equal(t, float64(0), event.RegistrationAmount)
	})
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only set fields", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)
		admin := clubAdmin("Coding Club")

		event, err := svc.CreateEvent(ctx, admin, EventInput{Name: "Quiz", Venue: "Hall A"})
		require.NoError(t, err)

		newVenue := "Auditorium"
		updated, err := svc.UpdateEvent(ctx, admin, event.ID.Hex(), EventUpdate{Venue: &newVenue})
		require.NoError(t, err)
		assert.Equal(t, "Auditorium", updated.Venue)
		assert.Equal(t, "Quiz", updated.Name)
	})

	t.Run("empty update rejected", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)
		admin := clubAdmin("Coding Club")

		event, err := svc.CreateEvent(ctx, admin, EventInput{Name: "Quiz"})
		require.NoError(t, err)

		_, err = svc.UpdateEvent(ctx, admin, event.ID.Hex(), EventUpdate{})
		assertKind(t, err, utils.KindValidation)
	})

	t.Run("other club's admin forbidden", func(t *testing.T) {
		f := newFixture()
		svc := newTestEventService(f)

		event, err := svc.CreateEvent(ctx, clubAdmin("Coding Club"), EventInput{Name: "Quiz"})
		require.NoError(t, err)

		name := "Renamed"
		_, err = svc.UpdateEvent(ctx, clubAdmin("Lit Club"), event.ID.Hex(), EventUpdate{Name: &name})
		assertKind(t, err, utils.KindForbidden)

		// Super admins are not club-scoped.
		updated, err := svc.UpdateEvent(ctx, superAdmin(), event.ID.Hex(), EventUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
	})
}

func TestArchiveAndDeleteEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newTestEventService(f)
	admin := clubAdmin("Coding Club")

	event, err := svc.CreateEvent(ctx, admin, EventInput{Name: "Quiz"})
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveEvent(ctx, admin, event.ID.Hex()))
	stored := f.event.events[event.ID]
	assert.False(t, stored.IsActive)
	assert.True(t, stored.IsArchived)

	// Archived events drop out of the public listing but remain loadable.
	active, err := svc.ListActiveEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
	got, err := svc.GetEvent(ctx, event.EventID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)

	require.NoError(t, svc.DeleteEvent(ctx, admin, event.ID.Hex()))
	_, err = svc.GetEvent(ctx, event.ID.Hex())
	assertKind(t, err, utils.KindNotFound)
}
