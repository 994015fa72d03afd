package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	models "github.com/sriram/festival-backend-go/models"
)

// ErrNotFound is returned by Find* methods when no document matches.
var ErrNotFound = errors.New("store: document not found")

// EventStore covers the events collection. Updates take bson field names so
// callers control exactly which fields change, as with a raw $set.
type EventStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	// FindByRef resolves either a hex ObjectID or an event_id slug.
	FindByRef(ctx context.Context, ref string) (*models.Event, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Insert(ctx context.Context, event *models.Event) error
	ListActive(ctx context.Context) ([]models.Event, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// PushApplicationIfAbsent appends the application only when the user has
	// no existing entry, in a single guarded write. Returns false when the
	// guard rejected the push (user already applied, possibly concurrently).
	PushApplicationIfAbsent(ctx context.Context, eventID primitive.ObjectID, app models.Application) (bool, error)
	// PullSoloApplication removes the user's application without a teamId.
	PullSoloApplication(ctx context.Context, eventID, userID primitive.ObjectID) error
	SetWinners(ctx context.Context, eventID primitive.ObjectID, winners []models.WinnerEntry, at time.Time) error
	// SetApplicationPresence flips isPresent on the user's application entry,
	// matched by event slug. Reports whether a document matched and whether
	// the write changed anything.
	SetApplicationPresence(ctx context.Context, eventSlug string, userID primitive.ObjectID, present bool) (matched, modified bool, err error)
}

type TeamStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error)
	Insert(ctx context.Context, team *models.Team) error
	// FindForUser locates a team for the event where the user is leader or
	// member. registeredOnly restricts the search to finalized teams.
	FindForUser(ctx context.Context, eventID, userID primitive.ObjectID, registeredOnly bool) (*models.Team, error)
	FindRegisteredByLeader(ctx context.Context, eventID, leaderID primitive.ObjectID) (*models.Team, error)
	CountRegistered(ctx context.Context, eventID primitive.ObjectID) (int64, error)
	// ListRegistered returns finalized teams, for one event or for all when
	// eventID is nil.
	ListRegistered(ctx context.Context, eventID *primitive.ObjectID) ([]models.Team, error)
	MarkWinner(ctx context.Context, eventID, teamID primitive.ObjectID, rank int) error
	// ResetWinnersExcept clears isWinner/winnerRank on every team of the
	// event whose id is not in keep.
	ResetWinnersExcept(ctx context.Context, eventID primitive.ObjectID, keep []primitive.ObjectID) error
	// UpdateMember sets fields on one embedded member, addressed by the
	// member subdocument id.
	UpdateMember(ctx context.Context, teamID, memberID primitive.ObjectID, set map[string]any) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) error
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByInviteToken(ctx context.Context, token string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) error
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	// ListCoordinators returns verified non-admin users of a college.
	ListCoordinators(ctx context.Context, college string) ([]models.User, error)
	MarkWinners(ctx context.Context, ids []primitive.ObjectID) error
	// SetAttendance writes attendance.<eventSlug> on the user document.
	SetAttendance(ctx context.Context, userID primitive.ObjectID, eventSlug string, present bool) (matched bool, err error)
}

type RegistrationStore interface {
	Insert(ctx context.Context, row *models.EventRegistration) error
	InsertMany(ctx context.Context, rows []models.EventRegistration) ([]models.EventRegistration, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.EventRegistration, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) error
	// SetPresence flips isPresent and stamps attendanceMarkedAt on one row.
	SetPresence(ctx context.Context, id primitive.ObjectID, present bool, at time.Time) (matched, modified bool, err error)
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventRegistration, error)
	// ListByCollege returns active rows for a college, optionally restricted
	// to a set of registrants, newest first.
	ListByCollege(ctx context.Context, college string, registrantIDs []primitive.ObjectID) ([]models.EventRegistration, error)
	ListAll(ctx context.Context) ([]models.EventRegistration, error)
	CountByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error)
}

// Store bundles the four collection contracts consumed by services.
type Store struct {
	Events        EventStore
	Teams         TeamStore
	Users         UserStore
	Registrations RegistrationStore
}

// New wires the Mongo-backed store over a connected client.
func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		Events:        &mongoEvents{col: db.Collection("events")},
		Teams:         &mongoTeams{col: db.Collection("teams")},
		Users:         &mongoUsers{col: db.Collection("users")},
		Registrations: &mongoRegistrations{col: db.Collection("eventregistrations")},
	}
}
