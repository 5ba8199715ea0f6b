// Package memstore is an in-memory Relationship Store with the same
// conditional-update contract as the Mongo implementation: every
// precondition is evaluated under one lock together with its write. Service
// and concurrency tests run against it instead of a live MongoDB.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
)

type Store struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	events   map[primitive.ObjectID]*models.Event
	ratings  map[ratingKey]*models.Rating
	comments map[primitive.ObjectID]*models.Comment
}

type ratingKey struct {
	event primitive.ObjectID
	user  primitive.ObjectID
}

func New() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]*models.User),
		events:   make(map[primitive.ObjectID]*models.Event),
		ratings:  make(map[ratingKey]*models.Rating),
		comments: make(map[primitive.ObjectID]*models.Comment),
	}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

func pull(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ---------------- users ----------------

func (s *Store) CreateUser(_ context.Context, u *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return false, nil
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	s.users[u.ID] = &cp
	return true, nil
}

func (s *Store) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := copyUser(u)
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := copyUser(u)
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateProfile(_ context.Context, id primitive.ObjectID, patch models.UserPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.IsArchived {
		return false, nil
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.City != nil {
		u.City = *patch.City
	}
	if patch.Interests != nil {
		u.Interests = append([]primitive.ObjectID(nil), patch.Interests...)
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	u.UpdatedAt = time.Now()
	return true, nil
}

func (s *Store) AddSentRequest(_ context.Context, senderID, receiverID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[senderID]
	if !ok || u.IsArchived ||
		containsID(u.Friends, receiverID) ||
		containsID(u.FriendRequestsSent, receiverID) ||
		containsID(u.FriendRequestsReceived, receiverID) {
		return false, nil
	}
	u.FriendRequestsSent = addToSet(u.FriendRequestsSent, receiverID)
	return true, nil
}

func (s *Store) AddReceivedRequest(_ context.Context, receiverID, senderID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[receiverID]
	if !ok || u.IsArchived ||
		containsID(u.Friends, senderID) ||
		containsID(u.FriendRequestsSent, senderID) ||
		containsID(u.FriendRequestsReceived, senderID) {
		return false, nil
	}
	u.FriendRequestsReceived = addToSet(u.FriendRequestsReceived, senderID)
	return true, nil
}

func (s *Store) PullSentRequest(_ context.Context, userID, peerID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || !containsID(u.FriendRequestsSent, peerID) {
		return false, nil
	}
	u.FriendRequestsSent = pull(u.FriendRequestsSent, peerID)
	return true, nil
}

func (s *Store) PullReceivedRequest(_ context.Context, userID, peerID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || !containsID(u.FriendRequestsReceived, peerID) {
		return false, nil
	}
	u.FriendRequestsReceived = pull(u.FriendRequestsReceived, peerID)
	return true, nil
}

func (s *Store) AcceptOnReceiver(_ context.Context, receiverID, senderID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[receiverID]
	if !ok || !containsID(u.FriendRequestsReceived, senderID) {
		return false, nil
	}
	u.FriendRequestsReceived = pull(u.FriendRequestsReceived, senderID)
	u.Friends = addToSet(u.Friends, senderID)
	return true, nil
}

func (s *Store) AcceptOnSender(_ context.Context, senderID, receiverID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[senderID]
	if !ok {
		return false, nil
	}
	u.FriendRequestsSent = pull(u.FriendRequestsSent, receiverID)
	u.Friends = addToSet(u.Friends, receiverID)
	return true, nil
}

func (s *Store) PullFriend(_ context.Context, userID, friendID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || !containsID(u.Friends, friendID) {
		return false, nil
	}
	u.Friends = pull(u.Friends, friendID)
	return true, nil
}

func (s *Store) AddRegisteredEvent(_ context.Context, userID, eventID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.RegisteredEvents = addToSet(u.RegisteredEvents, eventID)
	}
	return nil
}

func (s *Store) PullRegisteredEvent(_ context.Context, userID, eventID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.RegisteredEvents = pull(u.RegisteredEvents, eventID)
	}
	return nil
}

func (s *Store) SetBanned(_ context.Context, userID primitive.ObjectID, banned bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	u.IsBanned = banned
	return true, nil
}

func (s *Store) ArchiveUser(_ context.Context, userID primitive.ObjectID, defacedEmail string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.IsArchived {
		return false, nil
	}
	u.IsArchived = true
	u.Email = defacedEmail
	return true, nil
}

func (s *Store) ListActiveUsers(_ context.Context, exclude []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.IsBanned || u.IsArchived || containsID(exclude, u.ID) {
			continue
		}
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func copyUser(u *models.User) models.User {
	cp := *u
	cp.Interests = append([]primitive.ObjectID(nil), u.Interests...)
	cp.Friends = append([]primitive.ObjectID(nil), u.Friends...)
	cp.FriendRequestsSent = append([]primitive.ObjectID(nil), u.FriendRequestsSent...)
	cp.FriendRequestsReceived = append([]primitive.ObjectID(nil), u.FriendRequestsReceived...)
	cp.RegisteredEvents = append([]primitive.ObjectID(nil), u.RegisteredEvents...)
	return cp
}

// ---------------- events ----------------

func (s *Store) CreateEvent(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	cp := copyEvent(e)
	s.events[e.ID] = &cp
	return nil
}

func (s *Store) GetEvent(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	cp := copyEvent(e)
	return &cp, nil
}

func (s *Store) UpdateEvent(_ context.Context, id primitive.ObjectID, patch models.EventPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.IsArchived {
		return false, nil
	}
	// Capacity can never drop below the current registration count; the
	// check has to be atomic with the write because registrations race it.
	if patch.MaxParticipants != nil && len(e.RegisteredUsers) > *patch.MaxParticipants {
		return false, nil
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.City != nil {
		e.City = *patch.City
	}
	if patch.Interests != nil {
		e.Interests = append([]primitive.ObjectID(nil), patch.Interests...)
	}
	if patch.StartDate != nil {
		e.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		e.EndDate = *patch.EndDate
	}
	if patch.MaxParticipants != nil {
		e.MaxParticipants = *patch.MaxParticipants
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.Images != nil {
		e.Images = append([]string(nil), patch.Images...)
	}
	e.UpdatedAt = time.Now()
	return true, nil
}

func (s *Store) ArchiveEvent(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.IsArchived {
		return false, nil
	}
	e.IsArchived = true
	return true, nil
}

func (s *Store) RegisterParticipant(_ context.Context, eventID, userID primitive.ObjectID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || e.IsArchived ||
		e.Status != models.EventStatusScheduled ||
		!e.StartDate.After(now) ||
		containsID(e.RegisteredUsers, userID) ||
		len(e.RegisteredUsers) >= e.MaxParticipants {
		return false, nil
	}
	e.RegisteredUsers = append(e.RegisteredUsers, userID)
	return true, nil
}

func (s *Store) UnregisterParticipant(_ context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || !containsID(e.RegisteredUsers, userID) {
		return false, nil
	}
	e.RegisteredUsers = pull(e.RegisteredUsers, userID)
	return true, nil
}

func (s *Store) ListUpcoming(_ context.Context, now time.Time) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, e := range s.events {
		if e.IsArchived || e.Status != models.EventStatusScheduled || !e.StartDate.After(now) {
			continue
		}
		out = append(out, copyEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func copyEvent(e *models.Event) models.Event {
	cp := *e
	cp.Interests = append([]primitive.ObjectID(nil), e.Interests...)
	cp.RegisteredUsers = append([]primitive.ObjectID(nil), e.RegisteredUsers...)
	cp.Images = append([]string(nil), e.Images...)
	return cp
}

// ---------------- ratings ----------------

func (s *Store) CreateRating(_ context.Context, r *models.Rating) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ratingKey{event: r.EventID, user: r.UserID}
	if _, exists := s.ratings[key]; exists {
		return false, nil
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	cp := *r
	s.ratings[key] = &cp
	return true, nil
}

func (s *Store) DeleteRating(_ context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ratingKey{event: eventID, user: userID}
	if _, exists := s.ratings[key]; !exists {
		return false, nil
	}
	delete(s.ratings, key)
	return true, nil
}

func (s *Store) AverageForEvent(_ context.Context, eventID primitive.ObjectID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, n := 0, 0
	for key, r := range s.ratings {
		if key.event == eventID {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

// ---------------- comments ----------------

func (s *Store) CreateComment(_ context.Context, cm *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cm.ID.IsZero() {
		cm.ID = primitive.NewObjectID()
	}
	cp := *cm
	s.comments[cm.ID] = &cp
	return nil
}

func (s *Store) GetComment(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, ok := s.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *cm
	return &cp, nil
}

func (s *Store) UpdateContent(_ context.Context, id, userID primitive.ObjectID, content string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, ok := s.comments[id]
	if !ok || cm.UserID != userID {
		return false, nil
	}
	cm.Content = content
	cm.UpdatedAt = time.Now()
	return true, nil
}

func (s *Store) SetArchivedByOwner(_ context.Context, id, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, ok := s.comments[id]
	if !ok || cm.UserID != userID {
		return false, nil
	}
	cm.ArchivedByOwner = true
	return true, nil
}

func (s *Store) SetArchivedByOrganizer(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, ok := s.comments[id]
	if !ok {
		return false, nil
	}
	cm.ArchivedByOrganizer = true
	return true, nil
}

func (s *Store) ListVisibleByEvent(_ context.Context, eventID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Comment
	for _, cm := range s.comments {
		if cm.EventID != eventID || cm.ArchivedByOwner || cm.ArchivedByOrganizer {
			continue
		}
		out = append(out, *cm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
