package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kushagra128/LangBridge/internal/models"
)

// MemoryStore keeps messages and users in process memory. It backs
// development mode when no database is configured and the test suites.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[string]models.Message
	users    map[string]models.User
	stamp    *stamper
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages: make(map[string]models.Message),
		users:    make(map[string]models.User),
		stamp:    newStamper(),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// CreateMessage stores a message, assigning its ID and creation time.
func (s *MemoryStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if !msg.HasContent() {
		return ErrEmptyMessage
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID, msg.CreatedAt = s.stamp.next()
	s.messages[msg.ID] = *msg
	return nil
}

// ListConversation returns every message exchanged between two users, oldest first.
func (s *MemoryStore) ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]models.Message, 0)
	for _, msg := range s.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA) {
			messages = append(messages, msg)
		}
	}

	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// GetMessage retrieves a message by ID.
func (s *MemoryStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &msg, nil
}

// DeleteMessage removes a message by ID.
func (s *MemoryStore) DeleteMessage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[id]; !ok {
		return ErrNotFound
	}
	delete(s.messages, id)
	return nil
}

// CountMessages returns the number of stored messages.
func (s *MemoryStore) CountMessages(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.messages)), nil
}

// LastMessageAt returns the creation time of the newest message.
func (s *MemoryStore) LastMessageAt(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last time.Time
	for _, msg := range s.messages {
		if msg.CreatedAt.After(last) {
			last = msg.CreatedAt
		}
	}
	return last, nil
}

// CreateUser stores a user, generating an ID when none is set.
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.Must(uuid.NewV7()).String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = *user
	return nil
}

// GetUser retrieves a user by ID.
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// ListUsersExcept returns all users other than id, ordered by name.
func (s *MemoryStore) ListUsersExcept(ctx context.Context, id string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return users, nil
}

// CountUsers returns the number of stored users.
func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
