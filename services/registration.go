package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/store"
	utils "github.com/sriram/festival-backend-go/utils"
)

// RegistrationService validates and commits enrollments across the Event,
// Team and EventRegistration collections. The store offers per-document
// atomicity only, so commits are ordered additively: a partial failure leaves
// either nothing or an orphan a sweep can find, never a half-written record.
type RegistrationService struct {
	store *store.Store
	now   func() time.Time
}

func NewRegistrationService(st *store.Store) *RegistrationService {
	return &RegistrationService{store: st, now: time.Now}
}

// RegistrationResult reports what a successful registration committed.
type RegistrationResult struct {
	Event         *models.Event              `json:"event,omitempty"`
	Team          *models.Team               `json:"team,omitempty"`
	Registrations []models.EventRegistration `json:"registrations,omitempty"`
	Message       string                     `json:"message"`
}

// RegisterSolo enrolls the registrant into a solo event by appending one
// application entry. The commit is a guarded push, so a concurrent duplicate
// surfaces as a conflict rather than a second entry.
func (s *RegistrationService) RegisterSolo(ctx context.Context, eventRef string, registrantID primitive.ObjectID) (*RegistrationResult, error) {
	event, err := s.findEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	if event.EventType != models.EventTypeSolo {
		return nil, utils.Validation("this is not a solo event")
	}
	if event.DeadlinePassed(s.now()) {
		return nil, utils.Conflict("registration deadline has passed")
	}

	registered, err := s.isUserRegistered(ctx, event, registrantID)
	if err != nil {
		return nil, utils.Dependency(err, "could not check existing registrations")
	}
	if registered {
		return nil, utils.Conflict("you are already registered for this event")
	}

	if event.MaxApplications > 0 && event.SoloApplicationCount() >= event.MaxApplications {
		return nil, utils.Conflict("event is full")
	}

	ok, err := s.store.Events.PushApplicationIfAbsent(ctx, event.ID, models.Application{
		UserID:    registrantID,
		AppliedAt: s.now(),
	})
	if err != nil {
		return nil, utils.Dependency(err, "could not save registration")
	}
	if !ok {
		// Lost a race with a concurrent registration for the same user.
		return nil, utils.Conflict("you are already registered for this event")
	}

	updated, err := s.store.Events.FindByID(ctx, event.ID)
	if err != nil {
		updated = event
	}
	return &RegistrationResult{
		Event:   updated,
		Message: "successfully registered for the event",
	}, nil
}

// CreateTeam starts a group registration: a draft team with the registrant as
// leader and sole member. The team does not count against capacity until a
// later step flips isRegistered.
func (s *RegistrationService) CreateTeam(ctx context.Context, eventRef string, registrantID primitive.ObjectID, teamName string) (*RegistrationResult, error) {
	event, err := s.findEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	if event.EventType != models.EventTypeGroup {
		return nil, utils.Validation("this is not a group event")
	}
	if event.DeadlinePassed(s.now()) {
		return nil, utils.Conflict("registration deadline has passed")
	}

	registered, err := s.isUserRegistered(ctx, event, registrantID)
	if err != nil {
		return nil, utils.Dependency(err, "could not check existing registrations")
	}
	if registered {
		return nil, utils.Conflict("you are already registered for this event and cannot create a new team")
	}

	// Drafts block a second team too, not just registered ones.
	existing, err := s.store.Teams.FindForUser(ctx, event.ID, registrantID, false)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, utils.Dependency(err, "could not check existing teams")
	}
	if existing != nil {
		return nil, utils.Conflict("you are already part of a team for this event")
	}

	if event.MaxApplications > 0 {
		n, err := s.store.Teams.CountRegistered(ctx, event.ID)
		if err != nil {
			return nil, utils.Dependency(err, "could not check event capacity")
		}
		if n >= int64(event.MaxApplications) {
			return nil, utils.Conflict("event is full")
		}
	}

	now := s.now()
	team := &models.Team{
		EventID:  event.ID,
		TeamName: strings.TrimSpace(teamName),
		Leader:   &registrantID,
		Members: []models.TeamMember{
			{UserID: &registrantID, JoinedAt: now},
		},
		MaxMembers:   maxMembersFor(event),
		IsRegistered: false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Teams.Insert(ctx, team); err != nil {
		return nil, utils.Dependency(err, "could not create team")
	}

	return &RegistrationResult{
		Team:    team,
		Message: "team created successfully, you can now invite other members",
	}, nil
}

// RegisterDirect commits a direct registration: the registrant supplies all
// participant details in one call. Group events get a fully-registered team
// plus one EventRegistration row per participant; solo events write only the
// EventRegistration row and deliberately skip Event.applications.
func (s *RegistrationService) RegisterDirect(ctx context.Context, eventRef, teamName string, registrantID primitive.ObjectID, participants []ParticipantInput) (*RegistrationResult, error) {
	if eventRef == "" || len(participants) == 0 {
		return nil, utils.Validation("event ID and participants are required")
	}

	event, err := s.findEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}

	registrant, err := s.store.Users.FindByID(ctx, registrantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("registrant not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load registrant")
	}

	if event.EventType == models.EventTypeSolo && len(participants) > 1 {
		return nil, utils.Validation("solo events can only have one participant")
	}
	if event.DeadlinePassed(s.now()) {
		return nil, utils.Conflict("registration deadline has passed")
	}

	teamName = strings.TrimSpace(teamName)
	if event.EventType == models.EventTypeGroup {
		// Only the registrant is duplicate-checked; the listed participants
		// have no accounts to check against.
		existing, err := s.store.Teams.FindRegisteredByLeader(ctx, event.ID, registrantID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, utils.Dependency(err, "could not check existing teams")
		}
		if existing != nil {
			return nil, utils.Conflict("you already have a registered team for this event")
		}

		if event.MaxApplications > 0 {
			n, err := s.store.Teams.CountRegistered(ctx, event.ID)
			if err != nil {
				return nil, utils.Dependency(err, "could not check event capacity")
			}
			if n >= int64(event.MaxApplications) {
				return nil, utils.Conflict("event is full")
			}
		}

		if len(participants) < event.MinTeamSize {
			return nil, utils.Validation("minimum %d participants required for this event", event.MinTeamSize)
		}
		if len(participants) > event.MaxTeamSize {
			return nil, utils.Validation("maximum %d participants allowed for this event", event.MaxTeamSize)
		}
		if teamName == "" {
			return nil, utils.Validation("team name is required for group events")
		}
	} else if event.MaxApplications > 0 && event.SoloApplicationCount() >= event.MaxApplications {
		return nil, utils.Conflict("event is full")
	}

	normalized := make([]ParticipantInput, len(participants))
	for i, p := range participants {
		np, err := normalizeParticipant(p, i)
		if err != nil {
			return nil, err
		}
		normalized[i] = np
	}

	now := s.now()
	var team *models.Team
	if event.EventType == models.EventTypeGroup {
		members := make([]models.TeamMember, len(normalized))
		for i, p := range normalized {
			members[i] = models.TeamMember{
				// Direct participants have no account behind them.
				UserID:           nil,
				Name:             p.Name,
				Email:            p.Email,
				Mobile:           p.Mobile,
				Degree:           p.Degree,
				Level:            p.Level,
				Dept:             p.Dept,
				Year:             p.Year,
				Gender:           p.Gender,
				RegistrationType: models.RegistrationTypeDirect,
				JoinedAt:         now,
			}
		}
		registeredAt := now
		team = &models.Team{
			EventID:      event.ID,
			TeamName:     teamName,
			Leader:       &registrantID,
			Members:      members,
			MaxMembers:   maxMembersFor(event),
			IsRegistered: true,
			RegisteredAt: &registeredAt,
			RegistrantID: &registrantID,
			CollegeName:  registrant.College,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.store.Teams.Insert(ctx, team); err != nil {
			return nil, utils.Dependency(err, "could not create team")
		}
	}

	rows := make([]models.EventRegistration, len(normalized))
	for i, p := range normalized {
		var teamID *primitive.ObjectID
		rowTeamName := ""
		if team != nil {
			teamID = &team.ID
			rowTeamName = teamName
		}
		rows[i] = models.EventRegistration{
			EventID:           event.ID,
			EventName:         event.Name,
			EventType:         event.EventType,
			TeamID:            teamID,
			TeamName:          rowTeamName,
			RegistrantID:      registrantID,
			RegistrantEmail:   registrant.Email,
			ParticipantName:   p.Name,
			ParticipantEmail:  p.Email,
			ParticipantMobile: p.Mobile,
			Level:             p.Level,
			Degree:            p.Degree,
			Department:        p.Dept,
			CustomDepartment:  p.CustomDept,
			Year:              p.Year,
			Gender:            p.Gender,
			CollegeName:       registrant.College,
			CollegeCity:       registrant.City,
			CollegeState:      defaultString(registrant.State, "Not Specified"),
			RegistrationType:  models.RegistrationTypeDirect,
			RegistrationDate:  now,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	}

	// Team first, rows second: a failure here leaves a registered team with
	// no rows, which FindOrphanTeams surfaces for the reconciliation sweep.
	inserted, err := s.store.Registrations.InsertMany(ctx, rows)
	if err != nil {
		return nil, utils.Dependency(err, "could not save registrations")
	}

	return &RegistrationResult{
		Team:          team,
		Registrations: inserted,
		Message:       registrationMessage(len(inserted), event.Name),
	}, nil
}

// SoloRegistrationUpdate carries field corrections for one registration row.
// Empty fields are left unchanged. EventRef moves the registration to a
// different event, subject to full revalidation.
type SoloRegistrationUpdate struct {
	ParticipantName   string `json:"participantName"`
	ParticipantEmail  string `json:"participantEmail"`
	ParticipantMobile string `json:"mobile"`
	Department        string `json:"department"`
	Degree            string `json:"degree"`
	Year              string `json:"year"`
	Level             string `json:"level"`
	Gender            string `json:"gender"`
	EventRef          string `json:"eventId"`
}

// UpdateSoloRegistration corrects participant fields on a registration row.
// Only the original registrant may edit it.
func (s *RegistrationService) UpdateSoloRegistration(ctx context.Context, registrantID, registrationID primitive.ObjectID, upd SoloRegistrationUpdate) (*models.EventRegistration, error) {
	reg, err := s.store.Registrations.FindByID(ctx, registrationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("registration not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load registration")
	}
	if reg.RegistrantID != registrantID {
		return nil, utils.Forbidden("you can only edit participants you registered")
	}

	set := map[string]any{}
	if upd.EventRef != "" && upd.EventRef != reg.EventID.Hex() {
		newEvent, err := s.findEvent(ctx, upd.EventRef)
		if err != nil {
			return nil, err
		}
		if !newEvent.IsActive || newEvent.IsArchived {
			return nil, utils.Validation("selected event is not available for registration")
		}
		registered, err := s.isUserRegistered(ctx, newEvent, registrantID)
		if err != nil {
			return nil, utils.Dependency(err, "could not check existing registrations")
		}
		if registered {
			return nil, utils.Conflict("you are already registered for this event")
		}

		// Move the legacy application entry along with the row. The old
		// event may never have had one (direct solo rows live only in
		// EventRegistration), in which case the pull is a no-op.
		if err := s.store.Events.PullSoloApplication(ctx, reg.EventID, registrantID); err != nil {
			return nil, utils.Dependency(err, "could not detach old registration")
		}
		if _, err := s.store.Events.PushApplicationIfAbsent(ctx, newEvent.ID, models.Application{
			UserID:    registrantID,
			AppliedAt: s.now(),
		}); err != nil {
			return nil, utils.Dependency(err, "could not attach new registration")
		}

		set["eventId"] = newEvent.ID
		set["eventName"] = newEvent.Name
		set["eventType"] = newEvent.EventType
	}

	setIfPresent(set, "participantName", upd.ParticipantName)
	setIfPresent(set, "participantEmail", upd.ParticipantEmail)
	setIfPresent(set, "participantMobile", upd.ParticipantMobile)
	setIfPresent(set, "department", upd.Department)
	setIfPresent(set, "degree", upd.Degree)
	setIfPresent(set, "year", upd.Year)
	setIfPresent(set, "level", upd.Level)
	setIfPresent(set, "gender", upd.Gender)

	if len(set) > 0 {
		if err := s.store.Registrations.Update(ctx, registrationID, set); err != nil {
			return nil, utils.Dependency(err, "could not update registration")
		}
	}

	updated, err := s.store.Registrations.FindByID(ctx, registrationID)
	if err != nil {
		return nil, utils.Dependency(err, "could not reload registration")
	}
	return updated, nil
}

// TeamMemberUpdate carries field corrections for one embedded team member.
type TeamMemberUpdate struct {
	Name   string `json:"participantName"`
	Email  string `json:"participantEmail"`
	Mobile string `json:"mobile"`
	Dept   string `json:"department"`
	Degree string `json:"degree"`
	Year   string `json:"year"`
	Level  string `json:"level"`
	Gender string `json:"gender"`
}

// UpdateTeamMember corrects one member's details on a team the registrant
// originally submitted.
func (s *RegistrationService) UpdateTeamMember(ctx context.Context, registrantID, teamID, memberID primitive.ObjectID, upd TeamMemberUpdate) (*models.Team, error) {
	team, err := s.store.Teams.FindByID(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("team not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load team")
	}
	if team.RegistrantID == nil || *team.RegistrantID != registrantID {
		return nil, utils.Forbidden("you can only edit teams you registered")
	}

	found := false
	for _, m := range team.Members {
		if m.ID == memberID {
			found = true
			break
		}
	}
	if !found {
		return nil, utils.NotFound("member not found in team")
	}

	set := map[string]any{}
	setIfPresent(set, "name", upd.Name)
	setIfPresent(set, "email", upd.Email)
	setIfPresent(set, "mobile", upd.Mobile)
	setIfPresent(set, "dept", upd.Dept)
	setIfPresent(set, "degree", upd.Degree)
	setIfPresent(set, "year", upd.Year)
	setIfPresent(set, "level", upd.Level)
	setIfPresent(set, "gender", upd.Gender)

	if len(set) > 0 {
		if _, err := s.store.Teams.UpdateMember(ctx, teamID, memberID, set); err != nil {
			return nil, utils.Dependency(err, "could not update team member")
		}
	}

	updated, err := s.store.Teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, utils.Dependency(err, "could not reload team")
	}
	return updated, nil
}

// FindOrphanTeams is the reconciliation sweep for the no-transaction commit:
// a registered team with zero EventRegistration rows means a direct
// registration died between its two writes.
func (s *RegistrationService) FindOrphanTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.store.Teams.ListRegistered(ctx, nil)
	if err != nil {
		return nil, utils.Dependency(err, "could not list registered teams")
	}
	var orphans []models.Team
	for _, team := range teams {
		n, err := s.store.Registrations.CountByTeam(ctx, team.ID)
		if err != nil {
			return nil, utils.Dependency(err, "could not count registrations for team")
		}
		if n == 0 {
			orphans = append(orphans, team)
		}
	}
	return orphans, nil
}

// isUserRegistered checks every registration path: a registered team where
// the user is leader or member, or a solo application without a teamId.
func (s *RegistrationService) isUserRegistered(ctx context.Context, event *models.Event, userID primitive.ObjectID) (bool, error) {
	team, err := s.store.Teams.FindForUser(ctx, event.ID, userID, true)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if team != nil {
		return true, nil
	}
	for _, app := range event.Applications {
		if app.UserID == userID && app.TeamID == nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *RegistrationService) findEvent(ctx context.Context, ref string) (*models.Event, error) {
	event, err := s.store.Events.FindByRef(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("event not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load event")
	}
	return event, nil
}

// normalizeParticipant validates required fields and resolves the "Other"
// department and the degree-derived level.
func normalizeParticipant(p ParticipantInput, index int) (ParticipantInput, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Degree == "" || p.Dept == "" || p.Year == "" || p.Gender == "" {
		return p, utils.Validation("missing required fields for participant %d", index+1)
	}
	if p.Dept == "Other" {
		if strings.TrimSpace(p.CustomDept) == "" {
			return p, utils.Validation("custom department is required for participant %d", index+1)
		}
		p.Dept = strings.TrimSpace(p.CustomDept)
	}
	if p.Level == "" {
		level, ok := utils.InferLevel(p.Degree)
		if !ok {
			return p, utils.Validation("unknown degree %q for participant %d, level could not be inferred", p.Degree, index+1)
		}
		p.Level = level
	}
	return p, nil
}

func maxMembersFor(event *models.Event) int {
	if event.MaxTeamSize > 0 {
		return event.MaxTeamSize
	}
	return 6
}

func registrationMessage(count int, eventName string) string {
	if count == 1 {
		return fmt.Sprintf("successfully registered 1 participant for %s", eventName)
	}
	return fmt.Sprintf("successfully registered %d participants for %s", count, eventName)
}

func setIfPresent(set map[string]any, key, value string) {
	if value != "" {
		set[key] = value
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
