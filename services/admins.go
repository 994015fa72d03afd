package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/store"
	utils "github.com/sriram/festival-backend-go/utils"
)

const inviteTTL = 7 * 24 * time.Hour

// AdminService manages event-admin accounts: invite tokens, invite
// acceptance and direct creation by a super-admin. Emails are
// fire-and-forget; a mail failure never fails the commit.
type AdminService struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewAdminService(st *store.Store, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{store: st, logger: logger, now: time.Now}
}

// InviteResult reports a generated invite.
type InviteResult struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GenerateInvite creates an invite token for a prospective admin and mails
// the accept link. Only super-admins may invite.
func (s *AdminService) GenerateInvite(ctx context.Context, principal Principal, name, email, club string, assignedEventRef, inviteBaseURL string) (*InviteResult, error) {
	if !principal.IsSuperAdmin || !principal.IsAdmin() {
		return nil, utils.Forbidden("only super admins can invite admins")
	}
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || club == "" {
		return nil, utils.Validation("name, email and club are required")
	}

	var assignedEvent *primitive.ObjectID
	if assignedEventRef != "" {
		event, err := s.store.Events.FindByRef(ctx, assignedEventRef)
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("assigned event not found")
		}
		if err != nil {
			return nil, utils.Dependency(err, "could not load assigned event")
		}
		assignedEvent = &event.ID
	}

	token := uuid.NewString()
	expiresAt := s.now().Add(inviteTTL)

	existing, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, utils.Dependency(err, "could not check existing users")
	}
	if existing != nil {
		if existing.Role == models.RoleAdmin {
			return nil, utils.Conflict("user with this email is already an admin")
		}
		set := map[string]any{
			"inviteToken":     token,
			"inviteExpiresAt": expiresAt,
			"club":            club,
		}
		if assignedEvent != nil {
			set["assignedEvent"] = *assignedEvent
		}
		if err := s.store.Users.Update(ctx, existing.ID, set); err != nil {
			return nil, utils.Dependency(err, "could not store invite")
		}
	} else {
		now := s.now()
		user := &models.User{
			Name:            name,
			Email:           email,
			Role:            models.RoleUser,
			Club:            club,
			AssignedEvent:   assignedEvent,
			InviteToken:     token,
			InviteExpiresAt: &expiresAt,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.store.Users.Insert(ctx, user); err != nil {
			return nil, utils.Dependency(err, "could not store invite")
		}
	}

	inviteURL := strings.TrimRight(inviteBaseURL, "/") + "/admin/accept-invite?token=" + token
	go func() {
		if err := utils.SendAdminInviteEmail(email, name, inviteURL, expiresAt); err != nil {
			s.logger.Error("invite email failed", "email", email, "err", err)
		}
	}()

	return &InviteResult{Email: email, Token: token, ExpiresAt: expiresAt}, nil
}

// AcceptInvite promotes the invited user to admin once they set a password.
func (s *AdminService) AcceptInvite(ctx context.Context, token, password string) (*models.User, error) {
	if len(strings.TrimSpace(password)) < 6 {
		return nil, utils.Validation("password must be at least 6 characters long")
	}
	user, err := s.store.Users.FindByInviteToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("invite not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load invite")
	}
	if user.InviteExpiresAt == nil || s.now().After(*user.InviteExpiresAt) {
		return nil, utils.Validation("invite has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.Dependency(err, "could not hash password")
	}
	if err := s.store.Users.Update(ctx, user.ID, map[string]any{
		"password":        string(hash),
		"role":            models.RoleAdmin,
		"isVerified":      true,
		"inviteToken":     "",
		"inviteExpiresAt": nil,
	}); err != nil {
		return nil, utils.Dependency(err, "could not promote user")
	}

	promoted, err := s.store.Users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, utils.Dependency(err, "could not reload user")
	}
	return promoted, nil
}

// CreateAdminInput is the super-admin's direct admin-creation form.
type CreateAdminInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	AssignedEventRef string `json:"assignedEventId"`
	Club             string `json:"club"`
	TempPassword     string `json:"tempPassword"`
}

// CreateAdmin creates an event-scoped admin outright with a temporary
// password, mailing the credentials.
func (s *AdminService) CreateAdmin(ctx context.Context, principal Principal, input CreateAdminInput) (*models.User, error) {
	if !principal.IsSuperAdmin || !principal.IsAdmin() {
		return nil, utils.Forbidden("only super admins can create admins")
	}
	if input.Name == "" || input.Email == "" || input.AssignedEventRef == "" || input.Club == "" {
		return nil, utils.Validation("name, email, assigned event and club are required")
	}

	existing, err := s.store.Users.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, utils.Dependency(err, "could not check existing users")
	}
	if existing != nil {
		return nil, utils.Conflict("user with this email already exists")
	}

	event, err := s.store.Events.FindByRef(ctx, input.AssignedEventRef)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFound("assigned event not found")
	}
	if err != nil {
		return nil, utils.Dependency(err, "could not load assigned event")
	}

	tempPassword := input.TempPassword
	if tempPassword == "" {
		tempPassword = uuid.NewString()[:16]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.Dependency(err, "could not hash password")
	}

	now := s.now()
	admin := &models.User{
		Name:          input.Name,
		Email:         input.Email,
		Password:      string(hash),
		Role:          models.RoleAdmin,
		IsSuperAdmin:  false,
		AssignedEvent: &event.ID,
		Club:          input.Club,
		IsVerified:    true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Users.Insert(ctx, admin); err != nil {
		return nil, utils.Dependency(err, "could not create admin")
	}

	go func() {
		if err := utils.SendAdminCredentialsEmail(admin.Email, admin.Name, tempPassword); err != nil {
			s.logger.Error("credentials email failed", "email", admin.Email, "err", err)
		}
	}()

	return admin, nil
}

// ChangeAdminPassword lets a super-admin rotate another admin's password.
func (s *AdminService) ChangeAdminPassword(ctx context.Context, principal Principal, adminID primitive.ObjectID, newPassword string) error {
	if !principal.IsSuperAdmin || !principal.IsAdmin() {
		return utils.Forbidden("only super admins can change admin passwords")
	}
	if len(strings.TrimSpace(newPassword)) < 6 {
		return utils.Validation("password must be at least 6 characters long")
	}

	admin, err := s.store.Users.FindByID(ctx, adminID)
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFound("admin not found")
	}
	if err != nil {
		return utils.Dependency(err, "could not load admin")
	}
	if admin.Role != models.RoleAdmin {
		return utils.Validation("user is not an admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.Dependency(err, "could not hash password")
	}
	if err := s.store.Users.Update(ctx, admin.ID, map[string]any{"password": string(hash)}); err != nil {
		return utils.Dependency(err, "could not update password")
	}
	return nil
}
