package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/store"
	utils "github.com/sriram/festival-backend-go/utils"
)

// EventService owns the admin-facing event lifecycle: creation with slug
// generation, updates, soft retirement and explicit deletion.
type EventService struct {
	store *store.Store
	now   func() time.Time
}

func NewEventService(st *store.Store) *EventService {
	return &EventService{store: st, now: time.Now}
}

// EventInput is the admin's create-event form.
type EventInput struct {
	Name                string     `json:"name"`
	EventType           string     `json:"event_type"`
	ClubInCharge        string     `json:"clubInCharge"`
	OrganizingClub      string     `json:"organizing_club"`
	Description         string     `json:"description"`
	Venue               string     `json:"venue"`
	Rules               []string   `json:"rules"`
	EventDate           *time.Time `json:"event_date"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	MaxApplications     int        `json:"maxApplications"`
	MinTeamSize         *int       `json:"minTeamSize"`
	MaxTeamSize         *int       `json:"maxTeamSize"`
	RegistrationAmount  float64    `json:"registrationAmount"`
}

// CreateEvent validates the form, resolves the owning club, derives the
// event_id slug (suffixing a counter on collision) and inserts the document.
func (s *EventService) CreateEvent(ctx context.Context, principal Principal, input EventInput) (*models.Event, error) {
	if !principal.IsAdmin() {
		return nil, utils.Forbidden("only admins can create events")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, utils.Validation("event name is required")
	}

	// Super admins can choose the club; club admins always use their own.
	var club string
	if principal.IsSuperAdmin {
		club = defaultString(input.ClubInCharge, principal.Club)
	} else {
		if principal.Club == "" {
			return nil, utils.Validation("admin must belong to a club to create events")
		}
		club = principal.Club
	}

	eventType := defaultString(input.EventType, models.EventTypeSolo)
	if eventType != models.EventTypeSolo && eventType != models.EventTypeGroup {
		return nil, utils.Validation("event_type must be solo or group")
	}

	slug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, utils.Dependency(err, "could not derive event id")
	}

	minSize, maxSize := teamSizeDefaults(eventType, input.MinTeamSize, input.MaxTeamSize)

	fee := input.RegistrationAmount
	if fee < 0 {
		fee = 0
	}

	now := s.now()
	event := &models.Event{
		EventID:             slug,
		Name:                input.Name,
		EventType:           eventType,
		ClubInCharge:        club,
		OrganizingClub:      defaultString(input.OrganizingClub, club),
		Description:         input.Description,
		Venue:               input.Venue,
		Rules:               input.Rules,
		EventDate:           input.EventDate,
		ApplicationDeadline: input.ApplicationDeadline,
		MaxApplications:     input.MaxApplications,
		MinTeamSize:         minSize,
		MaxTeamSize:         maxSize,
		RegistrationAmount:  fee,
		Applications:        []models.Application{},
		IsActive:            true,
		CreatedBy:           principal.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.Events.Insert(ctx, event); err != nil {
		return nil, utils.Dependency(err, "could not create event")
	}
	return event, nil
}

// EventUpdate carries partial event edits; nil pointers leave fields alone.
type EventUpdate struct {
	Name                *string    `json:"name"`
	Description         *string    `json:"description"`
	Venue               *string    `json:"venue"`
	EventDate           *time.Time `json:"event_date"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	MaxApplications     *int       `json:"maxApplications"`
	MinTeamSize         *int       `json:"minTeamSize"`
	MaxTeamSize         *int       `json:"maxTeamSize"`
	IsActive            *bool      `json:"isActive"`
	IsArchived          *bool      `json:"isArchived"`
	PosterURL           *string    `json:"posterUrl"`
}

func (s *EventService) UpdateEvent(ctx context.Context, principal Principal, eventRef string, upd EventUpdate) (*models.Event, error) {
	event, err := s.authorizedEvent(ctx, principal, eventRef)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Venue != nil {
		set["venue"] = *upd.Venue
	}
	if upd.EventDate != nil {
		set["event_date"] = *upd.EventDate
	}
	if upd.ApplicationDeadline != nil {
		set["applicationDeadline"] = *upd.ApplicationDeadline
	}
	if upd.MaxApplications != nil {
		set["maxApplications"] = *upd.MaxApplications
	}
	if upd.MinTeamSize != nil {
		set["minTeamSize"] = *upd.MinTeamSize
	}
	if upd.MaxTeamSize != nil {
		set["maxTeamSize"] = *upd.MaxTeamSize
	}
	if upd.IsActive != nil {
		set["isActive"] = *upd.IsActive
	}
	if upd.IsArchived != nil {
		set["isArchived"] = *upd.IsArchived
	}
	if upd.PosterURL != nil {
		set["posterUrl"] = *upd.PosterURL
	}
	if len(set) == 0 {
		return nil, utils.Validation("no fields to update")
	}

	if err := s.store.Events.Update(ctx, event.ID, set); err != nil {
		return nil, utils.Dependency(err, "could not update event")
	}
	updated, err := s.store.Events.FindByID(ctx, event.ID)
	if err != nil {
		return nil, utils.Dependency(err, "could not reload event")
	}
	return updated, nil
}

// ArchiveEvent soft-retires an event; registrations and history remain.
func (s *EventService) ArchiveEvent(ctx context.Context, principal Principal, eventRef string) error {
	event, err := s.authorizedEvent(ctx, principal, eventRef)
	if err != nil {
		return err
	}
	if err := s.store.Events.Update(ctx, event.ID, map[string]any{
		"isActive":   false,
		"isArchived": true,
	}); err != nil {
		return utils.Dependency(err, "could not archive event")
	}
	return nil
}

// DeleteEvent removes the document entirely. This is the explicit admin
// escape hatch; normal retirement is ArchiveEvent.
func (s *EventService) DeleteEvent(ctx context.Context, principal Principal, eventRef string) error {
	event, err := s.authorizedEvent(ctx, principal, eventRef)
	if err != nil {
		return err
	}
	if err := s.store.Events.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound("event not found")
		}
		return utils.Dependency(err, "could not delete event")
	}
	return nil
}

func (s *EventService) ListActiveEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.store.Events.ListActive(ctx)
	if err != nil {
		return nil, utils.Dependency(err, "could not fetch events")
	}
	return events, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventRef string) (*models.Event, error) {
	event, err := s.store.Events.FindByRef(ctx, eventRef)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("event not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load event")
	}
	return event, nil
}

// authorizedEvent loads the event and enforces ownership: super-admins may
// touch anything, club admins only their club's events.
func (s *EventService) authorizedEvent(ctx context.Context, principal Principal, eventRef string) (*models.Event, error) {
	if !principal.IsAdmin() {
		return nil, utils.Forbidden("only admins can manage events")
	}
	event, err := s.GetEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	if !principal.IsSuperAdmin && event.ClubInCharge != principal.Club {
		return nil, utils.Forbidden("you can only manage events owned by your club")
	}
	return event, nil
}

// uniqueSlug derives the event_id and appends a counter until it is free.
func (s *EventService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	slug := base
	for counter := 1; ; counter++ {
		exists, err := s.store.Events.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func teamSizeDefaults(eventType string, minSize, maxSize *int) (int, int) {
	minOut, maxOut := 1, 1
	if eventType == models.EventTypeGroup {
		minOut, maxOut = 2, 6
	}
	if minSize != nil {
		minOut = *minSize
	}
	if maxSize != nil {
		maxOut = *maxSize
	}
	return minOut, maxOut
}
