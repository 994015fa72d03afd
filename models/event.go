package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventTypeSolo  = "solo"
	EventTypeGroup = "group"
)

// Application is one entry in Event.applications. Solo registrations carry no
// TeamID; that absence is what the duplicate and capacity checks key on.
type Application struct {
	UserID     primitive.ObjectID  `bson:"userId" json:"userId"`
	TeamID     *primitive.ObjectID `bson:"teamId,omitempty" json:"teamId,omitempty"`
	AppliedAt  time.Time           `bson:"appliedAt" json:"appliedAt"`
	IsWinner   bool                `bson:"isWinner" json:"isWinner"`
	IsPresent  bool                `bson:"isPresent" json:"isPresent"`
	WinnerRank *int                `bson:"winnerRank,omitempty" json:"winnerRank,omitempty"`
}

// WinnerEntry is one row of the authoritative Event.winners array. Exactly one
// of TeamID / UserID is set depending on whether the event is group or solo.
type WinnerEntry struct {
	Rank     int                 `bson:"rank" json:"rank"`
	TeamID   *primitive.ObjectID `bson:"teamId,omitempty" json:"teamId,omitempty"`
	TeamName string              `bson:"teamName,omitempty" json:"teamName,omitempty"`
	UserID   *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
}

type Event struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID             string             `bson:"event_id" json:"event_id"` // slug, unique
	Name                string             `bson:"name" json:"name"`
	EventType           string             `bson:"event_type" json:"event_type"` // solo, group
	ClubInCharge        string             `bson:"clubInCharge,omitempty" json:"clubInCharge,omitempty"`
	OrganizingClub      string             `bson:"organizing_club,omitempty" json:"organizing_club,omitempty"`
	Description         string             `bson:"description,omitempty" json:"description,omitempty"`
	Venue               string             `bson:"venue,omitempty" json:"venue,omitempty"`
	Rules               []string           `bson:"rules,omitempty" json:"rules,omitempty"`
	EventDate           *time.Time         `bson:"event_date,omitempty" json:"event_date,omitempty"`
	ApplicationDeadline *time.Time         `bson:"applicationDeadline,omitempty" json:"applicationDeadline,omitempty"`
	MaxApplications     int                `bson:"maxApplications,omitempty" json:"maxApplications,omitempty"` // 0 = unlimited
	MinTeamSize         int                `bson:"minTeamSize" json:"minTeamSize"`
	MaxTeamSize         int                `bson:"maxTeamSize" json:"maxTeamSize"`
	RegistrationAmount  float64            `bson:"registrationAmount" json:"registrationAmount"`
	PosterURL           string             `bson:"posterUrl,omitempty" json:"posterUrl,omitempty"`
	Applications        []Application      `bson:"applications" json:"applications"`
	Winners             []WinnerEntry      `bson:"winners,omitempty" json:"winners,omitempty"`
	WinnersUpdatedAt    *time.Time         `bson:"winnersUpdatedAt,omitempty" json:"winnersUpdatedAt,omitempty"`
	IsActive            bool               `bson:"isActive" json:"isActive"`
	IsArchived          bool               `bson:"isArchived" json:"isArchived"`
	CreatedBy           primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// SoloApplicationCount counts applications without a team reference. Group
// events measure capacity in registered teams instead, so this is only
// meaningful for solo events.
func (e *Event) SoloApplicationCount() int {
	n := 0
	for _, app := range e.Applications {
		if app.TeamID == nil {
			n++
		}
	}
	return n
}

// DeadlinePassed reports whether the registration window has closed. A missing
// deadline means the window never closes.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return e.ApplicationDeadline != nil && now.After(*e.ApplicationDeadline)
}
