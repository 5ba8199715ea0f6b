package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
)

// AdminService owns ban and unban. A banned user is rejected by the auth
// middleware before any other manager runs, so the ban flag gates the whole
// API surface.
type AdminService struct {
	users UserStore
	log   *slog.Logger
}

func NewAdminService(users UserStore, log *slog.Logger) *AdminService {
	return &AdminService{users: users, log: log}
}

// BanUser bans the target. Admins cannot be banned.
func (s *AdminService) BanUser(ctx context.Context, userID, adminID primitive.ObjectID) error {
	target, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil || target.IsArchived {
		return notFoundf("user not found")
	}
	if target.Role == models.RoleAdmin {
		return forbiddenf("admins cannot be banned")
	}
	matched, err := s.users.SetBanned(ctx, userID, true)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if !matched {
		return notFoundf("user not found")
	}
	s.log.Info("user banned", slog.String("user_id", userID.Hex()), slog.String("admin_id", adminID.Hex()))
	return nil
}

// UnbanUser clears the ban flag. Unbanning a user that is not banned is a
// no-op, not an error.
func (s *AdminService) UnbanUser(ctx context.Context, userID primitive.ObjectID) error {
	matched, err := s.users.SetBanned(ctx, userID, false)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if !matched {
		return notFoundf("user not found")
	}
	s.log.Info("user unbanned", slog.String("user_id", userID.Hex()))
	return nil
}
