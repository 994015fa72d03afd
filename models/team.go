package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamMember is an embedded member row. UserID is nil for direct-entry
// participants whose details were supplied by a registrant on their behalf.
type TeamMember struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID           *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Name             string              `bson:"name,omitempty" json:"name,omitempty"`
	Email            string              `bson:"email,omitempty" json:"email,omitempty"`
	Mobile           string              `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Degree           string              `bson:"degree,omitempty" json:"degree,omitempty"`
	Level            string              `bson:"level,omitempty" json:"level,omitempty"`
	Dept             string              `bson:"dept,omitempty" json:"dept,omitempty"`
	Year             string              `bson:"year,omitempty" json:"year,omitempty"`
	Gender           string              `bson:"gender,omitempty" json:"gender,omitempty"`
	RegistrationType string              `bson:"registrationType,omitempty" json:"registrationType,omitempty"`
	JoinedAt         time.Time           `bson:"joinedAt" json:"joinedAt"`
}

// Team belongs to exactly one event. A team is a draft until IsRegistered
// flips true; drafts never count against event capacity.
type Team struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID      primitive.ObjectID  `bson:"eventId" json:"eventId"`
	TeamName     string              `bson:"teamName" json:"teamName"`
	Leader       *primitive.ObjectID `bson:"leader,omitempty" json:"leader,omitempty"`
	Members      []TeamMember        `bson:"members" json:"members"`
	MaxMembers   int                 `bson:"maxMembers" json:"maxMembers"`
	IsRegistered bool                `bson:"isRegistered" json:"isRegistered"`
	RegisteredAt *time.Time          `bson:"registeredAt,omitempty" json:"registeredAt,omitempty"`
	RegistrantID *primitive.ObjectID `bson:"registrantId,omitempty" json:"registrantId,omitempty"`
	CollegeName  string              `bson:"collegeName,omitempty" json:"collegeName,omitempty"`
	IsWinner     bool                `bson:"isWinner" json:"isWinner"`
	WinnerRank   *int                `bson:"winnerRank,omitempty" json:"winnerRank,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// HasUser reports whether the user is the leader or a member of the team.
func (t *Team) HasUser(userID primitive.ObjectID) bool {
	if t.Leader != nil && *t.Leader == userID {
		return true
	}
	for _, m := range t.Members {
		if m.UserID != nil && *m.UserID == userID {
			return true
		}
	}
	return false
}
