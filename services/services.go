package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated identity supplied by the auth collaborator.
// Services trust it for every authorization decision.
type Principal struct {
	ID            primitive.ObjectID
	Role          string
	IsSuperAdmin  bool
	Club          string
	AssignedEvent *primitive.ObjectID
}

func (p Principal) IsAdmin() bool {
	return p.Role == "admin"
}

// mayManageEvent reports whether the principal may record attendance or
// results for the event: super-admins always, event-scoped admins only for
// their assigned event.
func (p Principal) mayManageEvent(eventID primitive.ObjectID) bool {
	if p.IsSuperAdmin {
		return true
	}
	return p.AssignedEvent != nil && *p.AssignedEvent == eventID
}

// ParticipantInput is one participant's details as submitted on a direct
// registration form.
type ParticipantInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`
	Level      string `json:"level"`
	Degree     string `json:"degree"`
	Dept       string `json:"dept"`
	CustomDept string `json:"customDept"`
	Year       string `json:"year"`
	Gender     string `json:"gender"`
}
