package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
)

// mirrorAttempts bounds the retry loop for the second write of a mirrored
// two-document operation. Mirror writes are idempotent set operations, so
// repeating one is always safe.
const mirrorAttempts = 3

// EventDraft holds the organizer-supplied fields for a new event.
type EventDraft struct {
	Title           string
	Description     string
	Location        string
	City            primitive.ObjectID
	Interests       []primitive.ObjectID
	StartDate       time.Time
	EndDate         time.Time
	MaxParticipants int
	Images          []string
}

// EventService owns event capacity, registration, cancellation and archival.
type EventService struct {
	events EventStore
	users  UserStore
	cutoff time.Duration // registration cancellation blocked this close to start
	log    *slog.Logger
	now    func() time.Time
}

func NewEventService(events EventStore, users UserStore, cancelCutoff time.Duration, log *slog.Logger) *EventService {
	return &EventService{
		events: events,
		users:  users,
		cutoff: cancelCutoff,
		log:    log,
		now:    time.Now,
	}
}

// CreateEvent persists a new scheduled event. Only organizer-role users may
// create events.
func (s *EventService) CreateEvent(ctx context.Context, organizerID primitive.ObjectID, draft EventDraft) (*models.Event, error) {
	organizer, err := s.users.GetUser(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if organizer == nil || organizer.IsArchived {
		return nil, notFoundf("user not found")
	}
	if organizer.Role != models.RoleOrganizer {
		return nil, forbiddenf("only organizers can create events")
	}
	if draft.MaxParticipants <= 0 {
		return nil, invalidf("max participants must be greater than 0")
	}
	if !draft.EndDate.After(draft.StartDate) {
		return nil, invalidf("end date must be after start date")
	}

	now := s.now()
	e := &models.Event{
		Organizer:       organizerID,
		Title:           draft.Title,
		Description:     draft.Description,
		Location:        draft.Location,
		City:            draft.City,
		Interests:       draft.Interests,
		StartDate:       draft.StartDate,
		EndDate:         draft.EndDate,
		MaxParticipants: draft.MaxParticipants,
		RegisteredUsers: []primitive.ObjectID{},
		Status:          models.EventStatusScheduled,
		Images:          draft.Images,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.events.CreateEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	s.log.Info("event created", slog.String("event_id", e.ID.Hex()), slog.String("organizer", organizerID.Hex()))
	return e, nil
}

// GetEvent returns a non-archived event.
func (s *EventService) GetEvent(ctx context.Context, eventID primitive.ObjectID) (*models.Event, error) {
	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.IsArchived {
		return nil, notFoundf("event not found")
	}
	return e, nil
}

// UpdateEvent applies an organizer patch. Only the owning organizer may
// update; the organizer field itself is immutable.
func (s *EventService) UpdateEvent(ctx context.Context, eventID, actorID primitive.ObjectID, patch models.EventPatch) (*models.Event, error) {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.Organizer != actorID {
		return nil, forbiddenf("only the event organizer can update the event")
	}
	if patch.MaxParticipants != nil && *patch.MaxParticipants <= 0 {
		return nil, invalidf("max participants must be greater than 0")
	}
	if patch.Status != nil {
		switch *patch.Status {
		case models.EventStatusScheduled, models.EventStatusCancelled, models.EventStatusCompleted:
		default:
			return nil, invalidf("status must be SCHEDULED, CANCELLED or COMPLETED")
		}
	}
	matched, err := s.events.UpdateEvent(ctx, eventID, patch)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if !matched {
		// The store refuses a capacity shrink below the current registration
		// count atomically with the write; re-read to classify the no-match.
		cur, err := s.events.GetEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("post-check get event: %w", err)
		}
		if cur == nil || cur.IsArchived {
			return nil, notFoundf("event not found")
		}
		if patch.MaxParticipants != nil && len(cur.RegisteredUsers) > *patch.MaxParticipants {
			return nil, invalidf("max participants cannot be less than the number of registered users")
		}
		return nil, notFoundf("event not found")
	}
	return s.GetEvent(ctx, eventID)
}

// RemoveEvent soft-archives the event so registrations, ratings and comments
// that reference it stay resolvable. Never a physical delete.
func (s *EventService) RemoveEvent(ctx context.Context, eventID, actorID primitive.ObjectID) error {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if e.Organizer != actorID {
		return forbiddenf("only the event organizer can remove the event")
	}
	matched, err := s.events.ArchiveEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("archive event: %w", err)
	}
	if !matched {
		return notFoundf("event not found")
	}
	s.log.Info("event archived", slog.String("event_id", eventID.Hex()))
	return nil
}

// RegisterForEvent registers a participant. The capacity, duplicate and
// timing preconditions are evaluated by the store atomically with the push,
// so concurrent registrations for the last slot cannot both pass. On a
// no-match the current event is re-read to classify the failure.
func (s *EventService) RegisterForEvent(ctx context.Context, eventID, userID primitive.ObjectID) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.IsArchived {
		return notFoundf("user not found")
	}
	if user.Role != models.RoleParticipant {
		return forbiddenf("only participants can register for events")
	}

	now := s.now()
	matched, err := s.events.RegisterParticipant(ctx, eventID, userID, now)
	if err != nil {
		return fmt.Errorf("register participant: %w", err)
	}
	if !matched {
		return s.classifyRegistrationFailure(ctx, eventID, userID, now)
	}

	if err := s.mirrorUserEvent(ctx, userID, eventID, true); err != nil {
		return err
	}
	s.log.Info("user registered", slog.String("event_id", eventID.Hex()), slog.String("user_id", userID.Hex()))
	return nil
}

func (s *EventService) classifyRegistrationFailure(ctx context.Context, eventID, userID primitive.ObjectID, now time.Time) error {
	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("post-check get event: %w", err)
	}
	switch {
	case e == nil || e.IsArchived:
		return notFoundf("event not found")
	case e.HasRegistered(userID):
		return conflictf("already registered for this event")
	case e.Status != models.EventStatusScheduled:
		return forbiddenf("event is not open for registration")
	case !e.StartDate.After(now):
		return forbiddenf("event has already started")
	case e.AvailableSpots() <= 0:
		return forbiddenf("Event is already full")
	}
	return fmt.Errorf("register participant: precondition failed for event %s", eventID.Hex())
}

// CancelRegistration removes a registration. Blocked once the event start is
// within the configured cutoff window.
func (s *EventService) CancelRegistration(ctx context.Context, eventID, userID primitive.ObjectID) error {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if !e.HasRegistered(userID) {
		return forbiddenf("not registered for this event")
	}
	if s.now().Add(s.cutoff).After(e.StartDate) {
		return forbiddenf("registration can no longer be cancelled this close to the event start")
	}
	matched, err := s.events.UnregisterParticipant(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("unregister participant: %w", err)
	}
	if !matched {
		// Lost a race with another cancel for the same pair.
		return forbiddenf("not registered for this event")
	}

	if err := s.mirrorUserEvent(ctx, userID, eventID, false); err != nil {
		return err
	}
	s.log.Info("registration cancelled", slog.String("event_id", eventID.Hex()), slog.String("user_id", userID.Hex()))
	return nil
}

// mirrorUserEvent keeps user.registered_events in step with the event
// document. The event side is authoritative; this side is retried because a
// success must never leave the pair half-mirrored.
func (s *EventService) mirrorUserEvent(ctx context.Context, userID, eventID primitive.ObjectID, add bool) error {
	var err error
	for attempt := 1; attempt <= mirrorAttempts; attempt++ {
		if add {
			err = s.users.AddRegisteredEvent(ctx, userID, eventID)
		} else {
			err = s.users.PullRegisteredEvent(ctx, userID, eventID)
		}
		if err == nil {
			return nil
		}
		s.log.Warn("mirror write failed", slog.String("user_id", userID.Hex()),
			slog.String("event_id", eventID.Hex()), slog.Int("attempt", attempt), slog.Any("err", err))
	}
	return fmt.Errorf("mirror registration on user %s: %w", userID.Hex(), err)
}

// AvailableSpots returns the number of open slots for the event.
func (s *EventService) AvailableSpots(ctx context.Context, eventID primitive.ObjectID) (int, error) {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return e.AvailableSpots(), nil
}

// PersonalizedEvents ranks upcoming events by interest overlap and city
// match for the user. Ties keep the store order, creation time descending.
func (s *EventService) PersonalizedEvents(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsArchived {
		return nil, notFoundf("user not found")
	}

	events, err := s.events.ListUpcoming(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}

	interests := make(map[primitive.ObjectID]bool, len(user.Interests))
	for _, id := range user.Interests {
		interests[id] = true
	}
	score := func(e *models.Event) int {
		n := 0
		for _, id := range e.Interests {
			if interests[id] {
				n += 2
			}
		}
		if !user.City.IsZero() && e.City == user.City {
			n++
		}
		return n
	}
	sort.SliceStable(events, func(i, j int) bool {
		return score(&events[i]) > score(&events[j])
	})
	return events, nil
}
