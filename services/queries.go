package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/store"
	utils "github.com/sriram/festival-backend-go/utils"
)

// bulkListBudget bounds the all-registrations listing; it bulk-fetches three
// collections and must fail closed rather than hang.
const bulkListBudget = 30 * time.Second

// QueryService serves the read projections over registrations. It never
// mutates anything.
type QueryService struct {
	store *store.Store
}

func NewQueryService(st *store.Store) *QueryService {
	return &QueryService{store: st}
}

// RosterEntry is one flattened participant row for an event's roster view.
type RosterEntry struct {
	UserID       primitive.ObjectID  `json:"userId"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Dept         string              `json:"dept"`
	Year         string              `json:"year"`
	TeamName     string              `json:"teamName,omitempty"`
	TeamID       *primitive.ObjectID `json:"teamId,omitempty"`
	Role         string              `json:"role"` // Leader, Member, Individual
	RegisteredAt time.Time           `json:"registeredAt"`
	Attended     bool                `json:"attended"`
}

// EventRoster flattens an event's registrations: registered teams for group
// events, applications for solo events. Attendance goes through the fallback
// chain (user map first, record flag second).
func (s *QueryService) EventRoster(ctx context.Context, principal Principal, eventRef string) (*models.Event, []RosterEntry, error) {
	event, err := s.store.Events.FindByRef(ctx, eventRef)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, utils.NotFound("event not found")
	}
	if err != nil {
		return nil, nil, utils.Dependency(err, "could not load event")
	}
	if !principal.mayManageEvent(event.ID) {
		return nil, nil, utils.Forbidden("you are not authorized to view this event's registrations")
	}

	if event.EventType == models.EventTypeGroup {
		entries, err := s.groupRoster(ctx, event)
		return event, entries, err
	}
	entries, err := s.soloRoster(ctx, event)
	return event, entries, err
}

func (s *QueryService) groupRoster(ctx context.Context, event *models.Event) ([]RosterEntry, error) {
	teams, err := s.store.Teams.ListRegistered(ctx, &event.ID)
	if err != nil {
		return nil, utils.Dependency(err, "could not list teams")
	}

	var userIDs []primitive.ObjectID
	for _, team := range teams {
		if team.Leader != nil {
			userIDs = append(userIDs, *team.Leader)
		}
		for _, m := range team.Members {
			if m.UserID != nil {
				userIDs = append(userIDs, *m.UserID)
			}
		}
	}
	userMap, err := s.userMap(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	var entries []RosterEntry
	for _, team := range teams {
		teamID := team.ID
		if team.Leader != nil {
			if user, ok := userMap[*team.Leader]; ok {
				entries = append(entries, RosterEntry{
					UserID:       user.ID,
					Name:         user.Name,
					Email:        user.Email,
					Dept:         user.Dept,
					Year:         user.Year,
					TeamName:     team.TeamName,
					TeamID:       &teamID,
					Role:         "Leader",
					RegisteredAt: team.CreatedAt,
					Attended:     ResolveAttendance(&user, event.EventID, false),
				})
			}
		}
		for _, m := range team.Members {
			if m.UserID == nil || (team.Leader != nil && *m.UserID == *team.Leader) {
				continue
			}
			user, ok := userMap[*m.UserID]
			if !ok {
				continue
			}
			entries = append(entries, RosterEntry{
				UserID:       user.ID,
				Name:         user.Name,
				Email:        user.Email,
				Dept:         user.Dept,
				Year:         user.Year,
				TeamName:     team.TeamName,
				TeamID:       &teamID,
				Role:         "Member",
				RegisteredAt: team.CreatedAt,
				Attended:     ResolveAttendance(&user, event.EventID, false),
			})
		}
	}
	return entries, nil
}

func (s *QueryService) soloRoster(ctx context.Context, event *models.Event) ([]RosterEntry, error) {
	var userIDs []primitive.ObjectID
	for _, app := range event.Applications {
		userIDs = append(userIDs, app.UserID)
	}
	userMap, err := s.userMap(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	var entries []RosterEntry
	for _, app := range event.Applications {
		user, ok := userMap[app.UserID]
		if !ok {
			continue
		}
		entries = append(entries, RosterEntry{
			UserID:       user.ID,
			Name:         user.Name,
			Email:        user.Email,
			Dept:         user.Dept,
			Year:         user.Year,
			Role:         "Individual",
			RegisteredAt: app.AppliedAt,
			Attended:     ResolveAttendance(&user, event.EventID, app.IsPresent),
		})
	}
	return entries, nil
}

// TeamRegistrationGroup groups EventRegistration rows belonging to one team.
type TeamRegistrationGroup struct {
	TeamName        string                     `json:"teamName"`
	EventName       string                     `json:"eventName"`
	EventID         primitive.ObjectID         `json:"eventId"`
	TeamID          *primitive.ObjectID        `json:"teamId,omitempty"`
	RegistrantID    primitive.ObjectID         `json:"registrantId"`
	RegistrantEmail string                     `json:"registrantEmail"`
	Members         []models.EventRegistration `json:"members"`
}

// CollegeStats aggregates the college view's registration counts.
type CollegeStats struct {
	Total      int            `json:"total"`
	SoloCount  int            `json:"soloCount"`
	TeamCount  int            `json:"teamCount"`
	TotalTeams int            `json:"totalTeams"`
	ByGender   map[string]int `json:"byGender"`
	ByLevel    map[string]int `json:"byLevel"`
	ByEvent    map[string]int `json:"byEvent"`
}

// CollegeRegistrations is the college coordinators' view of everything their
// college has registered.
type CollegeRegistrations struct {
	Solo         []models.EventRegistration `json:"soloRegistrations"`
	Teams        []TeamRegistrationGroup    `json:"teamRegistrations"`
	Stats        CollegeStats               `json:"stats"`
	College      string                     `json:"college"`
	Coordinators []models.User              `json:"coordinators"`
}

// CollegeRegistrationsFor lists registrations for the caller's college.
// Verified users count as coordinators and see rows submitted by any
// coordinator of the same college.
func (s *QueryService) CollegeRegistrationsFor(ctx context.Context, userID primitive.ObjectID) (*CollegeRegistrations, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("user not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load user")
	}

	isCoordinator := user.IsVerified
	isSuperAdmin := user.Role == models.RoleAdmin && user.IsSuperAdmin

	var coordinators []models.User
	var rows []models.EventRegistration
	if isCoordinator || isSuperAdmin {
		coordinators, err = s.store.Users.ListCoordinators(ctx, user.College)
		if err != nil {
			return nil, utils.Dependency(err, "could not list coordinators")
		}
		ids := make([]primitive.ObjectID, len(coordinators))
		for i, c := range coordinators {
			ids[i] = c.ID
		}
		rows, err = s.store.Registrations.ListByCollege(ctx, user.College, ids)
	} else {
		rows, err = s.store.Registrations.ListByCollege(ctx, user.College, nil)
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not list registrations")
	}

	out := &CollegeRegistrations{
		College:      user.College,
		Coordinators: coordinators,
		Stats: CollegeStats{
			ByGender: map[string]int{"Male": 0, "Female": 0, "Other": 0},
			ByLevel:  map[string]int{"UG": 0, "PG": 0, "PhD": 0},
			ByEvent:  map[string]int{},
		},
	}

	teamGroups := map[string]*TeamRegistrationGroup{}
	var teamOrder []string
	for _, row := range rows {
		out.Stats.Total++
		if _, ok := out.Stats.ByGender[row.Gender]; ok {
			out.Stats.ByGender[row.Gender]++
		}
		if _, ok := out.Stats.ByLevel[row.Level]; ok {
			out.Stats.ByLevel[row.Level]++
		}
		out.Stats.ByEvent[row.EventName]++

		if row.EventType == models.EventTypeSolo {
			out.Stats.SoloCount++
			out.Solo = append(out.Solo, row)
			continue
		}
		out.Stats.TeamCount++
		key := fmt.Sprintf("%s-%s", row.TeamName, row.EventName)
		group, ok := teamGroups[key]
		if !ok {
			group = &TeamRegistrationGroup{
				TeamName:        row.TeamName,
				EventName:       row.EventName,
				EventID:         row.EventID,
				TeamID:          row.TeamID,
				RegistrantID:    row.RegistrantID,
				RegistrantEmail: row.RegistrantEmail,
			}
			teamGroups[key] = group
			teamOrder = append(teamOrder, key)
		}
		group.Members = append(group.Members, row)
	}
	for _, key := range teamOrder {
		out.Teams = append(out.Teams, *teamGroups[key])
	}
	out.Stats.TotalTeams = len(out.Teams)
	return out, nil
}

// EnrichedRegistration is one bulk-listing row with its event and registrant
// resolved from lookup maps.
type EnrichedRegistration struct {
	models.EventRegistration
	Event      *models.Event `json:"event,omitempty"`
	Registrant *models.User  `json:"registrant,omitempty"`
}

// AllRegistrations lists every registration row with event and registrant
// data attached, under the 30-second budget. Lookups are bulk queries keyed
// into maps; no per-row fetches.
func (s *QueryService) AllRegistrations(ctx context.Context) ([]EnrichedRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, bulkListBudget)
	defer cancel()

	rows, err := s.store.Registrations.ListAll(ctx)
	if err != nil {
		return nil, utils.Dependency(err, "could not list registrations")
	}
	if len(rows) == 0 {
		return []EnrichedRegistration{}, nil
	}

	eventIDSet := map[primitive.ObjectID]struct{}{}
	userIDSet := map[primitive.ObjectID]struct{}{}
	for _, row := range rows {
		eventIDSet[row.EventID] = struct{}{}
		userIDSet[row.RegistrantID] = struct{}{}
	}

	events, err := s.store.Events.ListByIDs(ctx, keys(eventIDSet))
	if err != nil {
		return nil, utils.Dependency(err, "could not bulk-fetch events")
	}
	users, err := s.store.Users.ListByIDs(ctx, keys(userIDSet))
	if err != nil {
		return nil, utils.Dependency(err, "could not bulk-fetch users")
	}

	eventMap := map[primitive.ObjectID]*models.Event{}
	for i := range events {
		eventMap[events[i].ID] = &events[i]
	}
	userMapByID := map[primitive.ObjectID]*models.User{}
	for i := range users {
		userMapByID[users[i].ID] = &users[i]
	}

	out := make([]EnrichedRegistration, len(rows))
	for i, row := range rows {
		out[i] = EnrichedRegistration{
			EventRegistration: row,
			Event:             eventMap[row.EventID],
			Registrant:        userMapByID[row.RegistrantID],
		}
	}
	return out, nil
}

// EventParticipants lists the EventRegistration rows for one event, the view
// the direct-registration attendance UI reads.
func (s *QueryService) EventParticipants(ctx context.Context, eventRef string) (*models.Event, []models.EventRegistration, error) {
	event, err := s.store.Events.FindByRef(ctx, eventRef)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, utils.NotFound("event not found")
	}
	if err != nil {
		return nil, nil, utils.Dependency(err, "could not load event")
	}
	rows, err := s.store.Registrations.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, nil, utils.Dependency(err, "could not list participants")
	}
	return event, rows, nil
}

func (s *QueryService) userMap(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	users, err := s.store.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, utils.Dependency(err, "could not bulk-fetch users")
	}
	m := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m, nil
}

func keys(set map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
