package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/store"
	utils "github.com/sriram/festival-backend-go/utils"
)

// AttendanceService records presence per participant per event. The storage
// path depends on the event's type, not the participant's: group attendance
// lives on the User document (or the EventRegistration row for the direct
// flow), solo attendance on the matching Event.applications entry.
type AttendanceService struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewAttendanceService(st *store.Store, logger *slog.Logger) *AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceService{store: st, logger: logger, now: time.Now}
}

// AttendanceEntry is one batch item: a participant reference plus presence.
// The reference is an ObjectID hex string; what it identifies (user or
// registration row) depends on the operation.
type AttendanceEntry struct {
	ParticipantRef string `json:"userId"`
	IsPresent      bool   `json:"isPresent"`
}

// AttendanceReport summarizes a batch. Unmatched or unparsable entries are
// counted, never fatal.
type AttendanceReport struct {
	UpdatedCount   int `json:"updatedCount"`
	MatchedCount   int `json:"matchedCount"`
	ErrorCount     int `json:"errorCount"`
	TotalRequested int `json:"totalRequested"`
}

// MarkEventAttendance is the legacy solo path: presence is written to the
// matching Event.applications entry by userId.
func (s *AttendanceService) MarkEventAttendance(ctx context.Context, principal Principal, eventRef string, entries []AttendanceEntry) (*AttendanceReport, error) {
	event, err := s.loadManagedEvent(ctx, principal, eventRef)
	if err != nil {
		return nil, err
	}

	report := &AttendanceReport{TotalRequested: len(entries)}
	for _, entry := range entries {
		userID, err := primitive.ObjectIDFromHex(entry.ParticipantRef)
		if err != nil {
			report.ErrorCount++
			s.logger.Warn("skipping unparsable attendance entry", "event", event.EventID, "ref", entry.ParticipantRef)
			continue
		}
		matched, modified, err := s.store.Events.SetApplicationPresence(ctx, event.EventID, userID, entry.IsPresent)
		if err != nil {
			report.ErrorCount++
			s.logger.Error("attendance write failed", "event", event.EventID, "userId", userID.Hex(), "err", err)
			continue
		}
		if matched {
			report.MatchedCount++
		}
		if modified {
			report.UpdatedCount++
		}
	}
	return report, nil
}

// MarkRegistrationAttendance records presence for a single participant,
// routing by the event's type: group events write the per-user attendance
// map, solo events the application entry.
func (s *AttendanceService) MarkRegistrationAttendance(ctx context.Context, principal Principal, eventRef, participantRef string, present bool) error {
	event, err := s.loadManagedEvent(ctx, principal, eventRef)
	if err != nil {
		return err
	}

	participantID, err := primitive.ObjectIDFromHex(participantRef)
	if err != nil {
		return utils.Validation("invalid participant id")
	}

	var matched bool
	if event.EventType == models.EventTypeGroup {
		matched, err = s.store.Users.SetAttendance(ctx, participantID, event.EventID, present)
	} else {
		matched, _, err = s.store.Events.SetApplicationPresence(ctx, event.EventID, participantID, present)
	}
	if err != nil {
		return utils.Dependency(err, "could not update attendance")
	}
	if !matched {
		return utils.NotFound("registration not found")
	}
	return nil
}

// MarkParticipantAttendance is the EventRegistration-centric batch: entries
// reference registration row ids and stamp attendanceMarkedAt.
func (s *AttendanceService) MarkParticipantAttendance(ctx context.Context, principal Principal, eventRef string, entries []AttendanceEntry) (*AttendanceReport, error) {
	event, err := s.loadManagedEvent(ctx, principal, eventRef)
	if err != nil {
		return nil, err
	}

	report := &AttendanceReport{TotalRequested: len(entries)}
	now := s.now()
	for _, entry := range entries {
		rowID, err := primitive.ObjectIDFromHex(entry.ParticipantRef)
		if err != nil {
			report.ErrorCount++
			s.logger.Warn("skipping unparsable attendance entry", "event", event.EventID, "ref", entry.ParticipantRef)
			continue
		}
		matched, modified, err := s.store.Registrations.SetPresence(ctx, rowID, entry.IsPresent, now)
		if err != nil {
			report.ErrorCount++
			s.logger.Error("attendance write failed", "event", event.EventID, "registrationId", rowID.Hex(), "err", err)
			continue
		}
		if matched {
			report.MatchedCount++
		}
		if modified {
			report.UpdatedCount++
		}
	}
	return report, nil
}

// ResolveAttendance is the read-side contract every display path must use:
// the per-user attendance map wins, then the record-level flag, else absent.
func ResolveAttendance(user *models.User, eventSlug string, recordPresent bool) bool {
	if user != nil {
		return user.AttendedEvent(eventSlug, recordPresent)
	}
	return recordPresent
}

func (s *AttendanceService) loadManagedEvent(ctx context.Context, principal Principal, eventRef string) (*models.Event, error) {
	event, err := s.store.Events.FindByRef(ctx, eventRef)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("event not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load event")
	}
	if !principal.mayManageEvent(event.ID) {
		return nil, utils.Forbidden("you are not authorized to manage attendance for this event")
	}
	return event, nil
}
