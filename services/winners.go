package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/store"
	utils "github.com/sriram/festival-backend-go/utils"
)

// WinnerService rewrites the authoritative Event.winners field and propagates
// derived isWinner/winnerRank flags onto Team and User documents. The
// derived flags are a read cache for legacy paths; Event.winners is the only
// value callers may trust.
type WinnerService struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewWinnerService(st *store.Store, logger *slog.Logger) *WinnerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WinnerService{store: st, logger: logger, now: time.Now}
}

// WinnerInput is one admin-submitted result entry. Either TeamID or UserID
// must be set (hex ObjectIDs); a missing rank defaults to submission order.
type WinnerInput struct {
	Rank     int    `json:"rank"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	UserID   string `json:"userId"`
}

// WinnersResult reports the authoritative write. Propagation failures are
// logged, never surfaced here: partial propagation must not look like a
// failed result submission.
type WinnersResult struct {
	Winners []models.WinnerEntry `json:"winners"`
	Event   struct {
		EventID string `json:"event_id"`
		Name    string `json:"name"`
	} `json:"event"`
}

// SetWinners replaces the event's winner list. Order of operations matters:
// the authoritative array is persisted first, per-winner flags are propagated
// next (continue-on-error), and the reset of non-winner teams runs last so a
// shrinking winner list correctly un-marks removed teams.
func (s *WinnerService) SetWinners(ctx context.Context, eventRef string, inputs []WinnerInput) (*WinnersResult, error) {
	event, err := s.store.Events.FindByRef(ctx, eventRef)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("event not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load event")
	}

	winners, err := normalizeWinners(inputs)
	if err != nil {
		return nil, err
	}

	// Stable sort: duplicate ranks are preserved as given, ties keep
	// submission order.
	sort.SliceStable(winners, func(i, j int) bool {
		return winners[i].Rank < winners[j].Rank
	})

	if err := s.store.Events.SetWinners(ctx, event.ID, winners, s.now()); err != nil {
		return nil, utils.Dependency(err, "could not save winners")
	}

	for _, w := range winners {
		if err := s.propagate(ctx, event, w); err != nil {
			// One entry's failure must not starve the others of their flags.
			s.logger.Error("winner propagation failed",
				"event", event.EventID,
				"rank", w.Rank,
				"teamId", hexOrEmpty(w.TeamID),
				"userId", hexOrEmpty(w.UserID),
				"err", err,
			)
		}
	}

	// Reset runs unconditionally after all propagation writes: an empty
	// winner list clears every previously marked team.
	keep := make([]primitive.ObjectID, 0, len(winners))
	for _, w := range winners {
		if w.TeamID != nil {
			keep = append(keep, *w.TeamID)
		}
	}
	if err := s.store.Teams.ResetWinnersExcept(ctx, event.ID, keep); err != nil {
		s.logger.Error("winner reset failed", "event", event.EventID, "err", err)
	}

	result := &WinnersResult{Winners: winners}
	result.Event.EventID = event.EventID
	result.Event.Name = event.Name
	return result, nil
}

// propagate caches one winner entry onto the Team and User documents.
func (s *WinnerService) propagate(ctx context.Context, event *models.Event, w models.WinnerEntry) error {
	if w.TeamID != nil {
		if err := s.store.Teams.MarkWinner(ctx, event.ID, *w.TeamID, w.Rank); err != nil {
			return err
		}
		team, err := s.store.Teams.FindByID(ctx, *w.TeamID)
		if err != nil {
			return err
		}
		var userIDs []primitive.ObjectID
		if team.Leader != nil {
			userIDs = append(userIDs, *team.Leader)
		}
		for _, m := range team.Members {
			if m.UserID != nil && (team.Leader == nil || *m.UserID != *team.Leader) {
				userIDs = append(userIDs, *m.UserID)
			}
		}
		return s.store.Users.MarkWinners(ctx, userIDs)
	}
	if w.UserID != nil {
		// Solo winners get the flag only; the rank lives solely on
		// Event.winners.
		return s.store.Users.MarkWinners(ctx, []primitive.ObjectID{*w.UserID})
	}
	return nil
}

// normalizeWinners classifies each entry as a team or individual winner and
// assigns default ranks by submission order (1-based).
func normalizeWinners(inputs []WinnerInput) ([]models.WinnerEntry, error) {
	winners := make([]models.WinnerEntry, 0, len(inputs))
	for i, in := range inputs {
		entry := models.WinnerEntry{Rank: in.Rank}
		if entry.Rank <= 0 {
			entry.Rank = i + 1
		}
		switch {
		case in.TeamID != "":
			oid, err := primitive.ObjectIDFromHex(in.TeamID)
			if err != nil {
				return nil, utils.Validation("winner %d has an invalid team id", i+1)
			}
			entry.TeamID = &oid
			entry.TeamName = in.TeamName
		case in.UserID != "":
			oid, err := primitive.ObjectIDFromHex(in.UserID)
			if err != nil {
				return nil, utils.Validation("winner %d has an invalid user id", i+1)
			}
			entry.UserID = &oid
		default:
			return nil, utils.Validation("winner %d must reference a team or a user", i+1)
		}
		winners = append(winners, entry)
	}
	return winners, nil
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
