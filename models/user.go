package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Academic levels. Level is inferable from Degree via utils.InferLevel.
const (
	LevelUG  = "UG"
	LevelPG  = "PG"
	LevelPhD = "PhD"
)

type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	Password     string              `bson:"password,omitempty" json:"-"`
	Role         string              `bson:"role" json:"role"` // user, admin
	IsSuperAdmin bool                `bson:"isSuperAdmin" json:"isSuperAdmin"`
	Club         string              `bson:"club,omitempty" json:"club,omitempty"` // required iff admin and not super-admin
	AssignedEvent *primitive.ObjectID `bson:"assignedEvent,omitempty" json:"assignedEvent,omitempty"`
	Level        string              `bson:"level,omitempty" json:"level,omitempty"` // UG, PG, PhD
	Degree       string              `bson:"degree,omitempty" json:"degree,omitempty"`
	Dept         string              `bson:"dept,omitempty" json:"dept,omitempty"`
	Year         string              `bson:"year,omitempty" json:"year,omitempty"`
	Gender       string              `bson:"gender,omitempty" json:"gender,omitempty"`
	College      string              `bson:"college,omitempty" json:"college,omitempty"`
	City         string              `bson:"city,omitempty" json:"city,omitempty"`
	State        string              `bson:"state,omitempty" json:"state,omitempty"`
	PhoneNumber  string              `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	// Attendance maps event_id slugs to presence. Takes priority over the
	// per-application isPresent flag on reads.
	Attendance map[string]bool `bson:"attendance,omitempty" json:"attendance,omitempty"`
	IsWinner   bool            `bson:"isWinner" json:"isWinner"`
	IsVerified bool            `bson:"isVerified" json:"isVerified"`

	// Admin-invite fields.
	InviteToken     string     `bson:"inviteToken,omitempty" json:"-"`
	InviteExpiresAt *time.Time `bson:"inviteExpiresAt,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AttendedEvent resolves the user's attendance for an event slug, falling back
// to the record-level flag when the map has no entry.
func (u *User) AttendedEvent(eventSlug string, recordPresent bool) bool {
	if u != nil && u.Attendance != nil {
		if present, ok := u.Attendance[eventSlug]; ok {
			return present
		}
	}
	return recordPresent
}
