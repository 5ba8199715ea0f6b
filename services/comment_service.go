package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
)

// CommentService owns comment creation, owner edits, and dual-authority
// deletion: the author and the event organizer each hold an independent
// archive bit, and either bit hides the comment without destroying the
// record the other party may still need.
type CommentService struct {
	comments CommentStore
	events   EventStore
	log      *slog.Logger
	now      func() time.Time
}

func NewCommentService(comments CommentStore, events EventStore, log *slog.Logger) *CommentService {
	return &CommentService{comments: comments, events: events, log: log, now: time.Now}
}

// CreateComment posts a comment on an event.
func (s *CommentService) CreateComment(ctx context.Context, eventID, userID primitive.ObjectID, content string) (*models.Comment, error) {
	if content == "" {
		return nil, invalidf("content is required")
	}
	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.IsArchived {
		return nil, notFoundf("event not found")
	}

	now := s.now()
	cm := &models.Comment{
		EventID:   eventID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.CreateComment(ctx, cm); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	s.log.Info("comment created", slog.String("comment_id", cm.ID.Hex()), slog.String("event_id", eventID.Hex()))
	return cm, nil
}

// UpdateComment edits the content; only the author may edit.
func (s *CommentService) UpdateComment(ctx context.Context, commentID, userID primitive.ObjectID, content string) (*models.Comment, error) {
	if content == "" {
		return nil, invalidf("content is required")
	}
	cm, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if cm == nil {
		return nil, notFoundf("comment not found")
	}
	if cm.UserID != userID {
		return nil, forbiddenf("only the comment author can edit the comment")
	}
	matched, err := s.comments.UpdateContent(ctx, commentID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if !matched {
		return nil, notFoundf("comment not found")
	}
	return s.comments.GetComment(ctx, commentID)
}

// DeleteAsOwner sets the author's archive bit.
func (s *CommentService) DeleteAsOwner(ctx context.Context, commentID, userID primitive.ObjectID) error {
	cm, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if cm == nil {
		return notFoundf("comment not found")
	}
	if cm.UserID != userID {
		return forbiddenf("only the comment author can delete the comment")
	}
	if _, err := s.comments.SetArchivedByOwner(ctx, commentID, userID); err != nil {
		return fmt.Errorf("archive comment by owner: %w", err)
	}
	s.log.Info("comment archived by owner", slog.String("comment_id", commentID.Hex()))
	return nil
}

// DeleteAsOrganizer sets the organizer's archive bit. The authority is
// resolved through the comment's event.
func (s *CommentService) DeleteAsOrganizer(ctx context.Context, commentID, organizerID primitive.ObjectID) error {
	cm, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if cm == nil {
		return notFoundf("comment not found")
	}
	e, err := s.events.GetEvent(ctx, cm.EventID)
	if err != nil {
		return err
	}
	if e == nil {
		return notFoundf("event not found")
	}
	if e.Organizer != organizerID {
		return forbiddenf("only the event organizer can remove this comment")
	}
	if _, err := s.comments.SetArchivedByOrganizer(ctx, commentID); err != nil {
		return fmt.Errorf("archive comment by organizer: %w", err)
	}
	s.log.Info("comment archived by organizer", slog.String("comment_id", commentID.Hex()))
	return nil
}

// ListByEvent returns the comments visible to everyone: neither the owner
// nor the organizer has archived them.
func (s *CommentService) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Comment, error) {
	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.IsArchived {
		return nil, notFoundf("event not found")
	}
	comments, err := s.comments.ListVisibleByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
