package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	models "github.com/gatherly/gatherly-api/models"
)

// UserService owns account lifecycle and profile updates. Accounts are never
// hard-deleted: removal archives the document and defaces the email so
// events, comments and ratings referencing the user stay resolvable.
type UserService struct {
	users UserStore
	log   *slog.Logger
}

func NewUserService(users UserStore, log *slog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, name, email, password, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, invalidf("name and email are required")
	}
	if len(password) < 8 {
		return nil, invalidf("password must be at least 8 characters")
	}
	switch role {
	case models.RoleOrganizer, models.RoleParticipant:
	default:
		return nil, invalidf("role must be organizer or participant")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	u := &models.User{
		Name:           name,
		Email:          email,
		HashedPassword: string(hashed),
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	inserted, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if !inserted {
		return nil, conflictf("email already registered")
	}
	s.log.Info("user registered", slog.String("user_id", u.ID.Hex()), slog.String("role", role))
	return u, nil
}

// Authenticate checks credentials and returns the account. Banned accounts
// still authenticate; the ban is enforced on every subsequent call by the
// auth middleware.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.IsArchived {
		return nil, forbiddenf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return nil, forbiddenf("invalid email or password")
	}
	return u, nil
}

// GetUser returns a non-archived user.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.IsArchived {
		return nil, notFoundf("user not found")
	}
	return u, nil
}

// UpdateProfile applies a partial profile update to the actor's own account.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	matched, err := s.users.UpdateProfile(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if !matched {
		return nil, notFoundf("user not found")
	}
	return s.GetUser(ctx, id)
}

// RemoveAccount archives the account and defaces its email.
func (s *UserService) RemoveAccount(ctx context.Context, id primitive.ObjectID) error {
	defaced := fmt.Sprintf("deleted+%s@gatherly.invalid", id.Hex())
	matched, err := s.users.ArchiveUser(ctx, id, defaced)
	if err != nil {
		return fmt.Errorf("archive user: %w", err)
	}
	if !matched {
		return notFoundf("user not found")
	}
	s.log.Info("user archived", slog.String("user_id", id.Hex()))
	return nil
}
