package store

import (
	"context"
	"errors"
	"time"

	"github.com/Kushagra128/LangBridge/internal/models"
)

var (
	// ErrNotFound is returned when a message or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmptyMessage is returned when a message has no text, image or voice clip.
	ErrEmptyMessage = errors.New("message content is required")
)

// DataStore defines the interface for persistent storage of messages and the
// user records the messaging core reads.
// PostgresStore, SQLiteStore and MemoryStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Message operations
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	CountMessages(ctx context.Context) (int64, error)
	LastMessageAt(ctx context.Context) (time.Time, error) // zero when empty

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsersExcept(ctx context.Context, id string) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}
