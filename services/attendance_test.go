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

func newTestAttendanceService(f *fixture) *AttendanceService {
	svc := NewAttendanceService(f.st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return testNow }
	return svc
}

func superAdmin() Principal {
	return Principal{ID: primitive.NewObjectID(), Role: models.RoleAdmin, IsSuperAdmin: true}
}

func eventAdmin(eventID primitive.ObjectID) Principal {
	return Principal{ID: primitive.NewObjectID(), Role: models.RoleAdmin, AssignedEvent: &eventID}
}

func TestMarkEventAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("batch report counts matched, updated and errors", func(t *testing.T) {
		f := newFixture()
		event := soloEvent("Quiz Mania")
		present := primitive.NewObjectID()
		absent := primitive.NewObjectID()
		event.Applications = []models.Application{
			{UserID: present},
			{UserID: absent, IsPresent: true},
		}
		f.seedEvent(event)
		svc := newTestAttendanceService(f)

		report, err := svc.MarkEventAttendance(ctx, superAdmin(), event.ID.Hex(), []AttendanceEntry{
			{ParticipantRef: present.Hex(), IsPresent: true},
			{ParticipantRef: absent.Hex(), IsPresent: true}, // already true, matched but unchanged
			{ParticipantRef: primitive.NewObjectID().Hex(), IsPresent: true}, // no such application
			{ParticipantRef: "not-an-id", IsPresent: true},
		})
		require.NoError(t, err)
		assert.Equal(t, 4, report.TotalRequested)
		assert.Equal(t, 2, report.MatchedCount)
		assert.Equal(t, 1, report.UpdatedCount)
		assert.Equal(t, 1, report.ErrorCount)

		stored := f.event.events[event.ID]
		assert.True(t, stored.Applications[0].IsPresent)
	})

	t.Run("event-scoped admin limited to assigned event", func(t *testing.T) {
		f := newFixture()
		assigned := f.seedEvent(soloEvent("Quiz Mania"))
		other := f.seedEvent(soloEvent("Debate"))
		svc := newTestAttendanceService(f)

		admin := eventAdmin(assigned.ID)
		_, err := svc.MarkEventAttendance(ctx, admin, assigned.ID.Hex(), nil)
		require.NoError(t, err)

		_, err = svc.MarkEventAttendance(ctx, admin, other.ID.Hex(), nil)
		assertKind(t, err, utils.KindForbidden)
	})
}

func TestMarkRegistrationAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("group events write the user attendance map", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(groupEvent("Hackathon", 2, 4))
		user := f.seedUser(&models.User{Email: "asha@example.com"})
		svc := newTestAttendanceService(f)

		err := svc.MarkRegistrationAttendance(ctx, superAdmin(), event.ID.Hex(), user.ID.Hex(), true)
		require.NoError(t, err)

		stored := f.users.users[user.ID]
		assert.True(t, stored.Attendance[event.EventID])
		// Application entries stay untouched on the group path.
		assert.Empty(t, f.event.events[event.ID].Applications)
	})

	t.Run("solo events write the application entry", func(t *testing.T) {
		f := newFixture()
		event := soloEvent("Quiz Mania")
		user := f.seedUser(&models.User{Email: "asha@example.com"})
		event.Applications = []models.Application{{UserID: user.ID}}
		f.seedEvent(event)
		svc := newTestAttendanceService(f)

		err := svc.MarkRegistrationAttendance(ctx, superAdmin(), event.ID.Hex(), user.ID.Hex(), true)
		require.NoError(t, err)
		assert.True(t, f.event.events[event.ID].Applications[0].IsPresent)
		assert.Nil(t, f.users.users[user.ID].Attendance)
	})

	t.Run("unmatched participant is not found", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(soloEvent("Quiz Mania"))
		svc := newTestAttendanceService(f)

		err := svc.MarkRegistrationAttendance(ctx, superAdmin(), event.ID.Hex(), primitive.NewObjectID().Hex(), true)
		assertKind(t, err, utils.KindNotFound)
	})

	t.Run("invalid participant id", func(t *testing.T) {
		f := newFixture()
		event := f.seedEvent(soloEvent("Quiz Mania"))
		svc := newTestAttendanceService(f)

		err := svc.MarkRegistrationAttendance(ctx, superAdmin(), event.ID.Hex(), "nope", true)
		assertKind(t, err, utils.KindValidation)
	})
}

func TestMarkParticipantAttendance(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event := f.seedEvent(soloEvent("Quiz Mania"))
	registrant := f.seedUser(&models.User{Email: "coord@example.com"})
	reg := newTestRegistrationService(f)

	res, err := reg.RegisterDirect(ctx, event.ID.Hex(), "", registrant.ID,
		[]ParticipantInput{participant("asha")})
	require.NoError(t, err)
	rowID := res.Registrations[0].ID

	svc := newTestAttendanceService(f)
	report, err := svc.MarkParticipantAttendance(ctx, superAdmin(), event.ID.Hex(), []AttendanceEntry{
		{ParticipantRef: rowID.Hex(), IsPresent: true},
		{ParticipantRef: "garbage"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchedCount)
	assert.Equal(t, 1, report.UpdatedCount)
	assert.Equal(t, 1, report.ErrorCount)

	stored := f.regs.rows[rowID]
	assert.True(t, stored.IsPresent)
	require.NotNil(t, stored.AttendanceMarkedAt)
	assert.Equal(t, testNow, *stored.AttendanceMarkedAt)
}

func TestResolveAttendance(t *testing.T) {
	slug := "quiz-mania"

	t.Run("attendance map wins over record flag", func(t *testing.T) {
		u := &models.User{Attendance: map[string]bool{slug: true}}
		assert.True(t, ResolveAttendance(u, slug, false))

		u.Attendance[slug] = false
		assert.False(t, ResolveAttendance(u, slug, true))
	})

	t.Run("falls back to record flag when map has no entry", func(t *testing.T) {
		u := &models.User{Attendance: map[string]bool{"other-event": true}}
		assert.True(t, ResolveAttendance(u, slug, true))
		assert.False(t, ResolveAttendance(u, slug, false))
	})

	t.Run("nil user falls back to record flag", func(t *testing.T) {
		assert.True(t, ResolveAttendance(nil, slug, true))
		assert.False(t, ResolveAttendance(nil, slug, false))
	})
}
