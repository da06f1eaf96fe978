package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Kushagra128/LangBridge/internal/models"
)

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db    *sql.DB
	stamp *stamper
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/langbridge.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/langbridge.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db, stamp: newStamper()}

	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		fullname TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		profile_image TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT 'en',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		sender_id TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		voice_message TEXT NOT NULL DEFAULT '',
		is_voice INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT 'en',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateMessage inserts a message, assigning its ID and creation time.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if !msg.HasContent() {
		return ErrEmptyMessage
	}

	id, createdAt := s.stamp.next()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, text, image, voice_message, is_voice, language, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, msg.SenderID, msg.ReceiverID, msg.Text, msg.Image, msg.VoiceMessage, msg.IsVoice, msg.Language, createdAt)
	if err != nil {
		return err
	}

	msg.ID = id
	msg.CreatedAt = createdAt
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMessage(row rowScanner, msg *models.Message) error {
	return row.Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Text,
		&msg.Image,
		&msg.VoiceMessage,
		&msg.IsVoice,
		&msg.Language,
		&msg.CreatedAt,
	)
}

// ListConversation returns both directions of a conversation, oldest first.
func (s *SQLiteStore) ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC
	`, userA, userB, userB, userA)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := scanSQLiteMessage(rows, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// GetMessage retrieves a message by ID.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	msg := &models.Message{}
	err := scanSQLiteMessage(s.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+` FROM messages WHERE id = ?
	`, id), msg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return msg, nil
}

// DeleteMessage removes a message by ID.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMessages returns the number of stored messages.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// LastMessageAt returns the creation time of the newest message, or the zero
// time when there are none.
func (s *SQLiteStore) LastMessageAt(ctx context.Context) (time.Time, error) {
	var last time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT created_at FROM messages ORDER BY created_at DESC, id DESC LIMIT 1
	`).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	return last, err
}

// CreateUser inserts a user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.Must(uuid.NewV7()).String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, fullname, email, profile_image, language, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.FullName, user.Email, user.ProfileImage, user.Language, user.CreatedAt)
	return err
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, fullname, email, profile_image, language, created_at
		FROM users WHERE id = ?
	`, id).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.ProfileImage,
		&user.Language,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsersExcept returns every user other than id, ordered by name.
func (s *SQLiteStore) ListUsersExcept(ctx context.Context, id string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fullname, email, profile_image, language, created_at
		FROM users
		WHERE id <> ?
		ORDER BY fullname ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.FullName, &user.Email, &user.ProfileImage, &user.Language, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountUsers returns the number of users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
