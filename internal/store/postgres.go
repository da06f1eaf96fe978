package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kushagra128/LangBridge/internal/metrics"
	"github.com/Kushagra128/LangBridge/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool  *pgxpool.Pool
	stamp *stamper
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, stamp: newStamper()}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func observe(start time.Time) {
	metrics.PostgresLatency.Observe(time.Since(start).Seconds())
}

const messageColumns = `id, sender_id, receiver_id, text, image, voice_message, is_voice, language, created_at`

func scanMessage(row pgx.Row, msg *models.Message) error {
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

// CreateMessage inserts a message, assigning its ID and creation time.
func (s *PostgresStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	if !msg.HasContent() {
		return ErrEmptyMessage
	}
	defer observe(time.Now())

	id, createdAt := s.stamp.next()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, msg.SenderID, msg.ReceiverID, msg.Text, msg.Image, msg.VoiceMessage, msg.IsVoice, msg.Language, createdAt)
	if err != nil {
		return err
	}

	msg.ID = id
	msg.CreatedAt = createdAt
	return nil
}

// ListConversation returns both directions of a conversation, oldest first.
func (s *PostgresStore) ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	defer observe(time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC, id ASC
	`, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := scanMessage(rows, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// GetMessage retrieves a message by ID.
func (s *PostgresStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	defer observe(time.Now())

	msg := &models.Message{}
	err := scanMessage(s.pool.QueryRow(ctx, `
		SELECT `+messageColumns+` FROM messages WHERE id = $1
	`, id), msg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return msg, nil
}

// DeleteMessage removes a message by ID.
func (s *PostgresStore) DeleteMessage(ctx context.Context, id string) error {
	defer observe(time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMessages returns the number of stored messages.
func (s *PostgresStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// LastMessageAt returns the creation time of the newest message, or the zero
// time when there are none.
func (s *PostgresStore) LastMessageAt(ctx context.Context) (time.Time, error) {
	defer observe(time.Now())

	var last *time.Time
	if err := s.pool.QueryRow(ctx, `SELECT MAX(created_at) FROM messages`).Scan(&last); err != nil {
		return time.Time{}, err
	}
	if last == nil {
		return time.Time{}, nil
	}
	return *last, nil
}

// CreateUser inserts a user record.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.Must(uuid.NewV7()).String()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO users (id, fullname, email, profile_image, language)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, user.ID, user.FullName, user.Email, user.ProfileImage, user.Language).Scan(&user.CreatedAt)
}

// GetUser retrieves a user by ID.
func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	defer observe(time.Now())

	user := &models.User{ID: id}
	err := s.pool.QueryRow(ctx, `
		SELECT fullname, email, profile_image, language, created_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.FullName,
		&user.Email,
		&user.ProfileImage,
		&user.Language,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsersExcept returns every user other than id, ordered by name.
func (s *PostgresStore) ListUsersExcept(ctx context.Context, id string) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, fullname, email, profile_image, language, created_at
		FROM users
		WHERE id <> $1
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
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
