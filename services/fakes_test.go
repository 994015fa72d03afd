package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/store"
)

// In-memory stand-ins for the Mongo-backed store. They apply the same bson
// field names the real implementations receive, so the services are tested
// against the exact update shapes they emit.

type fakeEvents struct {
	events map[primitive.ObjectID]*models.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: map[primitive.ObjectID]*models.Event{}}
}

func (f *fakeEvents) FindByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	if ev, ok := f.events[id]; ok {
		copied := *ev
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeEvents) FindBySlug(_ context.Context, slug string) (*models.Event, error) {
	for _, ev := range f.events {
		if ev.EventID == slug {
			copied := *ev
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeEvents) FindByRef(ctx context.Context, ref string) (*models.Event, error) {
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		return f.FindByID(ctx, oid)
	}
	return f.FindBySlug(ctx, ref)
}

func (f *fakeEvents) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.FindBySlug(ctx, slug)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (f *fakeEvents) Insert(_ context.Context, event *models.Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeEvents) ListActive(_ context.Context) ([]models.Event, error) {
	var out []models.Event
	for _, ev := range f.events {
		if ev.IsActive && !ev.IsArchived {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeEvents) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Event, error) {
	var out []models.Event
	for _, id := range ids {
		if ev, ok := f.events[id]; ok {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeEvents) Update(_ context.Context, id primitive.ObjectID, set map[string]any) error {
	ev, ok := f.events[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "name":
			ev.Name = v.(string)
		case "description":
			ev.Description = v.(string)
		case "venue":
			ev.Venue = v.(string)
		case "event_date":
			t := v.(time.Time)
			ev.EventDate = &t
		case "applicationDeadline":
			t := v.(time.Time)
			ev.ApplicationDeadline = &t
		case "maxApplications":
			ev.MaxApplications = v.(int)
		case "minTeamSize":
			ev.MinTeamSize = v.(int)
		case "maxTeamSize":
			ev.MaxTeamSize = v.(int)
		case "isActive":
			ev.IsActive = v.(bool)
		case "isArchived":
			ev.IsArchived = v.(bool)
		case "posterUrl":
			ev.PosterURL = v.(string)
		}
	}
	return nil
}

func (f *fakeEvents) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEvents) PushApplicationIfAbsent(_ context.Context, eventID primitive.ObjectID, app models.Application) (bool, error) {
	ev, ok := f.events[eventID]
	if !ok {
		return false, nil
	}
	for _, existing := range ev.Applications {
		if existing.UserID == app.UserID {
			return false, nil
		}
	}
	ev.Applications = append(ev.Applications, app)
	return true, nil
}

func (f *fakeEvents) PullSoloApplication(_ context.Context, eventID, userID primitive.ObjectID) error {
	ev, ok := f.events[eventID]
	if !ok {
		return nil
	}
	kept := ev.Applications[:0]
	for _, app := range ev.Applications {
		if app.UserID == userID && app.TeamID == nil {
			continue
		}
		kept = append(kept, app)
	}
	ev.Applications = kept
	return nil
}

func (f *fakeEvents) SetWinners(_ context.Context, eventID primitive.ObjectID, winners []models.WinnerEntry, at time.Time) error {
	ev, ok := f.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	ev.Winners = winners
	ev.WinnersUpdatedAt = &at
	return nil
}

func (f *fakeEvents) SetApplicationPresence(_ context.Context, eventSlug string, userID primitive.ObjectID, present bool) (bool, bool, error) {
	for _, ev := range f.events {
		if ev.EventID != eventSlug {
			continue
		}
		for i := range ev.Applications {
			if ev.Applications[i].UserID == userID {
				modified := ev.Applications[i].IsPresent != present
				ev.Applications[i].IsPresent = present
				return true, modified, nil
			}
		}
	}
	return false, false, nil
}

type fakeTeams struct {
	teams map[primitive.ObjectID]*models.Team
}

func newFakeTeams() *fakeTeams {
	return &fakeTeams{teams: map[primitive.ObjectID]*models.Team{}}
}

func (f *fakeTeams) FindByID(_ context.Context, id primitive.ObjectID) (*models.Team, error) {
	if t, ok := f.teams[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeTeams) Insert(_ context.Context, team *models.Team) error {
	if team.ID.IsZero() {
		team.ID = primitive.NewObjectID()
	}
	for i := range team.Members {
		if team.Members[i].ID.IsZero() {
			team.Members[i].ID = primitive.NewObjectID()
		}
	}
	copied := *team
	f.teams[team.ID] = &copied
	return nil
}

func (f *fakeTeams) FindForUser(_ context.Context, eventID, userID primitive.ObjectID, registeredOnly bool) (*models.Team, error) {
	for _, t := range f.teams {
		if t.EventID != eventID {
			continue
		}
		if registeredOnly && !t.IsRegistered {
			continue
		}
		if t.HasUser(userID) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTeams) FindRegisteredByLeader(_ context.Context, eventID, leaderID primitive.ObjectID) (*models.Team, error) {
	for _, t := range f.teams {
		if t.EventID == eventID && t.IsRegistered && t.Leader != nil && *t.Leader == leaderID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTeams) CountRegistered(_ context.Context, eventID primitive.ObjectID) (int64, error) {
	var n int64
	for _, t := range f.teams {
		if t.EventID == eventID && t.IsRegistered {
			n++
		}
	}
	return n, nil
}

func (f *fakeTeams) ListRegistered(_ context.Context, eventID *primitive.ObjectID) ([]models.Team, error) {
	var out []models.Team
	for _, t := range f.teams {
		if !t.IsRegistered {
			continue
		}
		if eventID != nil && t.EventID != *eventID {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTeams) MarkWinner(_ context.Context, eventID, teamID primitive.ObjectID, rank int) error {
	t, ok := f.teams[teamID]
	if !ok || t.EventID != eventID {
		return store.ErrNotFound
	}
	t.IsWinner = true
	r := rank
	t.WinnerRank = &r
	return nil
}

func (f *fakeTeams) ResetWinnersExcept(_ context.Context, eventID primitive.ObjectID, keep []primitive.ObjectID) error {
	keepSet := map[primitive.ObjectID]struct{}{}
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}
	for _, t := range f.teams {
		if t.EventID != eventID {
			continue
		}
		if _, kept := keepSet[t.ID]; kept {
			continue
		}
		t.IsWinner = false
		t.WinnerRank = nil
	}
	return nil
}

func (f *fakeTeams) UpdateMember(_ context.Context, teamID, memberID primitive.ObjectID, set map[string]any) (bool, error) {
	t, ok := f.teams[teamID]
	if !ok {
		return false, store.ErrNotFound
	}
	for i := range t.Members {
		if t.Members[i].ID != memberID {
			continue
		}
		m := &t.Members[i]
		for k, v := range set {
			s := v.(string)
			switch k {
			case "name":
				m.Name = s
			case "email":
				m.Email = s
			case "mobile":
				m.Mobile = s
			case "dept":
				m.Dept = s
			case "degree":
				m.Degree = s
			case "year":
				m.Year = s
			case "level":
				m.Level = s
			case "gender":
				m.Gender = s
			}
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeTeams) Update(_ context.Context, id primitive.ObjectID, set map[string]any) error {
	t, ok := f.teams[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "teamName":
			t.TeamName = v.(string)
		case "isRegistered":
			t.IsRegistered = v.(bool)
		}
	}
	return nil
}

type fakeUsers struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) FindByInviteToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range f.users {
		if u.InviteToken != "" && u.InviteToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) Insert(_ context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUsers) Update(_ context.Context, id primitive.ObjectID, set map[string]any) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "password":
			u.Password = v.(string)
		case "role":
			u.Role = v.(string)
		case "club":
			u.Club = v.(string)
		case "isVerified":
			u.IsVerified = v.(bool)
		case "inviteToken":
			u.InviteToken = v.(string)
		case "inviteExpiresAt":
			if v == nil {
				u.InviteExpiresAt = nil
			} else {
				t := v.(time.Time)
				u.InviteExpiresAt = &t
			}
		case "assignedEvent":
			oid := v.(primitive.ObjectID)
			u.AssignedEvent = &oid
		case "level":
			u.Level = v.(string)
		}
	}
	return nil
}

func (f *fakeUsers) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	seen := map[primitive.ObjectID]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) ListCoordinators(_ context.Context, college string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.College == college && u.IsVerified && u.Role != models.RoleAdmin && !u.IsSuperAdmin {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) MarkWinners(_ context.Context, ids []primitive.ObjectID) error {
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			u.IsWinner = true
		}
	}
	return nil
}

func (f *fakeUsers) SetAttendance(_ context.Context, userID primitive.ObjectID, eventSlug string, present bool) (bool, error) {
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	if u.Attendance == nil {
		u.Attendance = map[string]bool{}
	}
	u.Attendance[eventSlug] = present
	return true, nil
}

type fakeRegistrations struct {
	rows map[primitive.ObjectID]*models.EventRegistration
	// insertErr, when set, fails the next InsertMany; used to exercise the
	// orphan-team path.
	insertErr error
}

func newFakeRegistrations() *fakeRegistrations {
	return &fakeRegistrations{rows: map[primitive.ObjectID]*models.EventRegistration{}}
}

func (f *fakeRegistrations) Insert(_ context.Context, row *models.EventRegistration) error {
	if row.ID.IsZero() {
		row.ID = primitive.NewObjectID()
	}
	copied := *row
	f.rows[row.ID] = &copied
	return nil
}

func (f *fakeRegistrations) InsertMany(ctx context.Context, rows []models.EventRegistration) ([]models.EventRegistration, error) {
	if f.insertErr != nil {
		err := f.insertErr
		f.insertErr = nil
		return nil, err
	}
	for i := range rows {
		if err := f.Insert(ctx, &rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (f *fakeRegistrations) FindByID(_ context.Context, id primitive.ObjectID) (*models.EventRegistration, error) {
	if r, ok := f.rows[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeRegistrations) Update(_ context.Context, id primitive.ObjectID, set map[string]any) error {
	r, ok := f.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "participantName":
			r.ParticipantName = v.(string)
		case "participantEmail":
			r.ParticipantEmail = v.(string)
		case "participantMobile":
			r.ParticipantMobile = v.(string)
		case "department":
			r.Department = v.(string)
		case "degree":
			r.Degree = v.(string)
		case "year":
			r.Year = v.(string)
		case "level":
			r.Level = v.(string)
		case "gender":
			r.Gender = v.(string)
		case "eventId":
			r.EventID = v.(primitive.ObjectID)
		case "eventName":
			r.EventName = v.(string)
		case "eventType":
			r.EventType = v.(string)
		case "isActive":
			r.IsActive = v.(bool)
		}
	}
	return nil
}

func (f *fakeRegistrations) SetPresence(_ context.Context, id primitive.ObjectID, present bool, at time.Time) (bool, bool, error) {
	r, ok := f.rows[id]
	if !ok {
		return false, false, nil
	}
	modified := r.IsPresent != present
	r.IsPresent = present
	r.AttendanceMarkedAt = &at
	return true, modified, nil
}

func (f *fakeRegistrations) ListByEvent(_ context.Context, eventID primitive.ObjectID) ([]models.EventRegistration, error) {
	var out []models.EventRegistration
	for _, r := range f.rows {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRegistrations) ListByCollege(_ context.Context, college string, registrantIDs []primitive.ObjectID) ([]models.EventRegistration, error) {
	allowed := map[primitive.ObjectID]struct{}{}
	for _, id := range registrantIDs {
		allowed[id] = struct{}{}
	}
	var out []models.EventRegistration
	for _, r := range f.rows {
		if r.CollegeName != college || !r.IsActive {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[r.RegistrantID]; !ok {
				continue
			}
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRegistrations) ListAll(_ context.Context) ([]models.EventRegistration, error) {
	var out []models.EventRegistration
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRegistrations) CountByTeam(_ context.Context, teamID primitive.ObjectID) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.TeamID != nil && *r.TeamID == teamID {
			n++
		}
	}
	return n, nil
}

// fixture bundles the fakes with the assembled store for direct inspection.
type fixture struct {
	st    *store.Store
	event *fakeEvents
	teams *fakeTeams
	users *fakeUsers
	regs  *fakeRegistrations
}

func newFixture() *fixture {
	f := &fixture{
		event: newFakeEvents(),
		teams: newFakeTeams(),
		users: newFakeUsers(),
		regs:  newFakeRegistrations(),
	}
	f.st = &store.Store{
		Events:        f.event,
		Teams:         f.teams,
		Users:         f.users,
		Registrations: f.regs,
	}
	return f
}

func (f *fixture) seedEvent(ev *models.Event) *models.Event {
	_ = f.event.Insert(context.Background(), ev)
	return ev
}

func (f *fixture) seedUser(u *models.User) *models.User {
	_ = f.users.Insert(context.Background(), u)
	return u
}
