package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RegistrationTypeDirect = "direct"
	RegistrationTypeSelf   = "self"
)

// EventRegistration is the flattened, append-only record of one participant's
// enrollment. It is the system of record for statistics and is not always
// mirrored into Event.applications: direct solo registrations exist only here.
type EventRegistration struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"eventId" json:"eventId"`
	EventName string             `bson:"eventName" json:"eventName"`
	EventType string             `bson:"eventType" json:"eventType"`

	TeamID   *primitive.ObjectID `bson:"teamId,omitempty" json:"teamId,omitempty"`
	TeamName string              `bson:"teamName,omitempty" json:"teamName,omitempty"`

	RegistrantID    primitive.ObjectID `bson:"registrantId" json:"registrantId"`
	RegistrantEmail string             `bson:"registrantEmail,omitempty" json:"registrantEmail,omitempty"`

	ParticipantName   string `bson:"participantName" json:"participantName"`
	ParticipantEmail  string `bson:"participantEmail,omitempty" json:"participantEmail,omitempty"`
	ParticipantMobile string `bson:"participantMobile,omitempty" json:"participantMobile,omitempty"`

	Level            string `bson:"level" json:"level"`
	Degree           string `bson:"degree" json:"degree"`
	Department       string `bson:"department" json:"department"`
	CustomDepartment string `bson:"customDepartment,omitempty" json:"customDepartment,omitempty"`
	Year             string `bson:"year" json:"year"`
	Gender           string `bson:"gender" json:"gender"`

	CollegeName  string `bson:"collegeName,omitempty" json:"collegeName,omitempty"`
	CollegeCity  string `bson:"collegeCity,omitempty" json:"collegeCity,omitempty"`
	CollegeState string `bson:"collegeState,omitempty" json:"collegeState,omitempty"`

	RegistrationType string    `bson:"registrationType" json:"registrationType"`
	RegistrationDate time.Time `bson:"registrationDate" json:"registrationDate"`

	IsPresent          bool       `bson:"isPresent" json:"isPresent"`
	AttendanceMarkedAt *time.Time `bson:"attendanceMarkedAt,omitempty" json:"attendanceMarkedAt,omitempty"`

	// Rows are never deleted, only deactivated, so audit history survives.
	IsActive bool `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
