package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
)

// SocialService owns the friend-request state machine. Each ordered user
// pair is in exactly one of {None, Pending(A→B), Pending(B→A), Friends};
// the state lives as mirrored set memberships on the two User documents.
// The first write of every transition is conditional on the current state,
// which is what linearizes concurrent transitions for the same pair; the
// mirror write is an idempotent set operation that is retried, never dropped.
type SocialService struct {
	users UserStore
	log   *slog.Logger
}

func NewSocialService(users UserStore, log *slog.Logger) *SocialService {
	return &SocialService{users: users, log: log}
}

// SendFriendRequest moves the pair from None to Pending(sender→receiver).
func (s *SocialService) SendFriendRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) error {
	if senderID == receiverID {
		return forbiddenf("cannot send a friend request to yourself")
	}
	sender, err := s.users.GetUser(ctx, senderID)
	if err != nil {
		return err
	}
	receiver, err := s.users.GetUser(ctx, receiverID)
	if err != nil {
		return err
	}
	if sender == nil || sender.IsArchived || receiver == nil || receiver.IsArchived {
		return notFoundf("user not found")
	}
	if err := pairStateConflict(sender, receiverID); err != nil {
		return err
	}

	matched, err := s.users.AddSentRequest(ctx, senderID, receiverID)
	if err != nil {
		return fmt.Errorf("add sent request: %w", err)
	}
	if !matched {
		// Lost a race: the pair left state None between the read and the
		// conditional write.
		return conflictf("a friend request already exists between these users")
	}

	mirrored, err := s.retryMirror("add received request", func() (bool, error) {
		return s.users.AddReceivedRequest(ctx, receiverID, senderID)
	})
	if err != nil {
		return err
	}
	if !mirrored {
		// The receiver side refused (e.g. a crossing request from the
		// receiver landed first). Undo the sender entry and report the
		// conflict; the undo is idempotent.
		if _, rbErr := s.users.PullSentRequest(ctx, senderID, receiverID); rbErr != nil {
			s.log.Error("rollback of sent request failed",
				slog.String("sender", senderID.Hex()), slog.String("receiver", receiverID.Hex()), slog.Any("err", rbErr))
		}
		return conflictf("a friend request already exists between these users")
	}

	s.log.Info("friend request sent", slog.String("sender", senderID.Hex()), slog.String("receiver", receiverID.Hex()))
	return nil
}

// AcceptFriendRequest moves Pending(sender→receiver) to Friends. The
// receiver-side write is the linearization point: of two concurrent accepts
// exactly one matches the pending edge.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, receiverID, senderID primitive.ObjectID) error {
	// An archived sender may still have a stale pending edge on the
	// receiver; accepting it would create a friendship with a dead account.
	sender, err := s.users.GetUser(ctx, senderID)
	if err != nil {
		return err
	}
	if sender == nil || sender.IsArchived {
		return notFoundf("user not found")
	}

	matched, err := s.users.AcceptOnReceiver(ctx, receiverID, senderID)
	if err != nil {
		return fmt.Errorf("accept on receiver: %w", err)
	}
	if !matched {
		return notFoundf("no pending friend request from this user")
	}

	if _, err := s.retryMirror("accept on sender", func() (bool, error) {
		return s.users.AcceptOnSender(ctx, senderID, receiverID)
	}); err != nil {
		return err
	}

	s.log.Info("friend request accepted", slog.String("receiver", receiverID.Hex()), slog.String("sender", senderID.Hex()))
	return nil
}

// RejectFriendRequest clears Pending(sender→receiver), initiated by the
// receiver.
func (s *SocialService) RejectFriendRequest(ctx context.Context, receiverID, senderID primitive.ObjectID) error {
	matched, err := s.users.PullReceivedRequest(ctx, receiverID, senderID)
	if err != nil {
		return fmt.Errorf("pull received request: %w", err)
	}
	if !matched {
		return notFoundf("no pending friend request from this user")
	}
	if _, err := s.retryMirror("pull sent request", func() (bool, error) {
		return s.users.PullSentRequest(ctx, senderID, receiverID)
	}); err != nil {
		return err
	}
	s.log.Info("friend request rejected", slog.String("receiver", receiverID.Hex()), slog.String("sender", senderID.Hex()))
	return nil
}

// CancelFriendRequest clears Pending(sender→receiver), initiated by the
// sender. Same transition as reject, different initiating side.
func (s *SocialService) CancelFriendRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) error {
	matched, err := s.users.PullSentRequest(ctx, senderID, receiverID)
	if err != nil {
		return fmt.Errorf("pull sent request: %w", err)
	}
	if !matched {
		return notFoundf("no pending friend request to this user")
	}
	if _, err := s.retryMirror("pull received request", func() (bool, error) {
		return s.users.PullReceivedRequest(ctx, receiverID, senderID)
	}); err != nil {
		return err
	}
	s.log.Info("friend request cancelled", slog.String("sender", senderID.Hex()), slog.String("receiver", receiverID.Hex()))
	return nil
}

// RemoveFriend moves Friends back to None, initiated by either side.
func (s *SocialService) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	matched, err := s.users.PullFriend(ctx, userID, friendID)
	if err != nil {
		return fmt.Errorf("pull friend: %w", err)
	}
	if !matched {
		return notFoundf("users are not friends")
	}
	if _, err := s.retryMirror("pull friend mirror", func() (bool, error) {
		return s.users.PullFriend(ctx, friendID, userID)
	}); err != nil {
		return err
	}
	s.log.Info("friendship removed", slog.String("user", userID.Hex()), slog.String("friend", friendID.Hex()))
	return nil
}

// SuggestedUsers returns candidate friends ranked by shared interests and
// city. Users already related to the actor (friends or pending either way)
// and the actor itself are excluded. An actor with neither city nor
// interests gets an empty list, not an error.
func (s *SocialService) SuggestedUsers(ctx context.Context, userID primitive.ObjectID) ([]models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsArchived {
		return nil, notFoundf("user not found")
	}
	if user.City.IsZero() && len(user.Interests) == 0 {
		return []models.User{}, nil
	}

	exclude := make([]primitive.ObjectID, 0, 1+len(user.Friends)+len(user.FriendRequestsSent)+len(user.FriendRequestsReceived))
	exclude = append(exclude, userID)
	exclude = append(exclude, user.Friends...)
	exclude = append(exclude, user.FriendRequestsSent...)
	exclude = append(exclude, user.FriendRequestsReceived...)

	candidates, err := s.users.ListActiveUsers(ctx, exclude)
	if err != nil {
		return nil, fmt.Errorf("list candidate users: %w", err)
	}

	interests := make(map[primitive.ObjectID]bool, len(user.Interests))
	for _, id := range user.Interests {
		interests[id] = true
	}
	score := func(c *models.User) int {
		n := 0
		for _, id := range c.Interests {
			if interests[id] {
				n += 2
			}
		}
		if !user.City.IsZero() && c.City == user.City {
			n++
		}
		return n
	}

	suggested := make([]models.User, 0, len(candidates))
	for _, c := range candidates {
		if score(&c) > 0 {
			suggested = append(suggested, c)
		}
	}
	sort.SliceStable(suggested, func(i, j int) bool {
		return score(&suggested[i]) > score(&suggested[j])
	})
	return suggested, nil
}

// pairStateConflict reports a Conflict for any pair state other than None,
// as seen from one side.
func pairStateConflict(u *models.User, peerID primitive.ObjectID) error {
	switch {
	case u.HasFriend(peerID):
		return conflictf("users are already friends")
	case u.HasSentRequestTo(peerID):
		return conflictf("a friend request to this user is already pending")
	case u.HasReceivedRequestFrom(peerID):
		return conflictf("this user has already sent you a friend request")
	}
	return nil
}

// retryMirror repeats the second write of a mirrored two-document operation.
// A partial failure must never surface as success, so exhaustion is an error.
func (s *SocialService) retryMirror(op string, fn func() (bool, error)) (bool, error) {
	var matched bool
	var err error
	for attempt := 1; attempt <= mirrorAttempts; attempt++ {
		matched, err = fn()
		if err == nil {
			return matched, nil
		}
		s.log.Warn("mirror write failed", slog.String("op", op), slog.Int("attempt", attempt), slog.Any("err", err))
	}
	return false, fmt.Errorf("%s: %w", op, err)
}
