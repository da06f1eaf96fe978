// Package messaging persists direct messages, delivers them to online
// recipients in the recipient's language, and guards deletion.
package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/events"
	"github.com/Kushagra128/LangBridge/internal/metrics"
	"github.com/Kushagra128/LangBridge/internal/models"
	"github.com/Kushagra128/LangBridge/internal/store"
	"github.com/Kushagra128/LangBridge/internal/translate"
)

// Store is the persistence the service needs.
type Store interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Translator renders text in another language, falling back to the input.
type Translator interface {
	Resolve(ctx context.Context, text, senderLang, recipientLang string) string
}

// Pusher delivers events to live connections.
type Pusher interface {
	Online(userID string) bool
	Push(userID string, evt models.Event) bool
}

// SendInput is the client-supplied content of a new message.
type SendInput struct {
	Text         string `json:"text"`
	Image        string `json:"image"`
	VoiceMessage string `json:"voiceMessage"`
	IsVoice      bool   `json:"isVoice"`
	Language     string `json:"language"`
}

// Service implements send, history and delete.
type Service struct {
	store      Store
	translator Translator
	pusher     Pusher
	publisher  events.Publisher
	logger     zerolog.Logger
}

// NewService creates a Service. publisher may be nil.
func NewService(st Store, translator Translator, pusher Pusher, publisher events.Publisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		store:      st,
		translator: translator,
		pusher:     pusher,
		publisher:  publisher,
		logger:     logger.With().Str("component", "messaging").Logger(),
	}
}

// Send persists a message from senderID to recipientID and pushes a copy
// translated into the recipient's language to the recipient's live
// connection, if any. The returned message always carries the original text.
func (s *Service) Send(ctx context.Context, senderID, recipientID string, in SendInput) (*models.Message, error) {
	msg := &models.Message{
		SenderID:     senderID,
		ReceiverID:   recipientID,
		Text:         in.Text,
		Image:        in.Image,
		VoiceMessage: in.VoiceMessage,
		IsVoice:      in.IsVoice,
	}
	if !msg.HasContent() {
		return nil, ErrValidation
	}

	senderLang, err := s.senderLanguage(ctx, senderID, in.Language)
	if err != nil {
		return nil, err
	}

	recipient, err := s.store.GetUser(ctx, recipientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load recipient: %w", err)
	}
	recipientLang := translate.Normalize(recipient.Language)

	msg.Language = senderLang
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrEmptyMessage) {
			return nil, ErrValidation
		}
		return nil, fmt.Errorf("store message: %w", err)
	}
	metrics.MessagesSent.Inc()

	s.deliver(ctx, *msg, recipientLang)

	if err := s.publisher.Publish(ctx, events.MessageCreated, msg); err != nil {
		s.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("publish message.created failed")
	}

	return msg, nil
}

// deliver pushes the recipient's copy if they are online. Translation only
// happens when there is someone to deliver to.
func (s *Service) deliver(ctx context.Context, msg models.Message, recipientLang string) {
	if !s.pusher.Online(msg.ReceiverID) {
		metrics.Deliveries.WithLabelValues("offline").Inc()
		return
	}

	text := msg.Text
	if text != "" {
		text = s.translator.Resolve(ctx, text, msg.Language, recipientLang)
	}

	evt := models.Event{Name: models.EventNewMessage, Data: msg.DeliveryCopy(text)}
	if s.pusher.Push(msg.ReceiverID, evt) {
		metrics.Deliveries.WithLabelValues("pushed").Inc()
		return
	}
	metrics.Deliveries.WithLabelValues("offline").Inc()
}

func (s *Service) senderLanguage(ctx context.Context, senderID, requested string) (string, error) {
	if requested != "" {
		return translate.Normalize(requested), nil
	}

	sender, err := s.store.GetUser(ctx, senderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return translate.DefaultLanguage, nil
		}
		return "", fmt.Errorf("load sender: %w", err)
	}
	return translate.Normalize(sender.Language), nil
}

// ListConversation returns every message between callerID and peerID,
// oldest first, with original text.
func (s *Service) ListConversation(ctx context.Context, callerID, peerID string) ([]models.Message, error) {
	messages, err := s.store.ListConversation(ctx, callerID, peerID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return messages, nil
}

// DeleteMessage removes messageID if callerID is its sender. Ownership comes
// from the stored record only.
func (s *Service) DeleteMessage(ctx context.Context, callerID, messageID string) error {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load message: %w", err)
	}

	if msg.SenderID != callerID {
		s.logger.Warn().
			Str("type", "security").
			Str("event", "delete_forbidden").
			Str("caller_id", callerID).
			Str("message_id", messageID).
			Msg("delete attempted by non-owner")
		return ErrForbidden
	}

	if err := s.store.DeleteMessage(ctx, messageID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete message: %w", err)
	}
	metrics.MessagesDeleted.Inc()

	if err := s.publisher.Publish(ctx, events.MessageDeleted, map[string]string{
		"_id":        msg.ID,
		"senderId":   msg.SenderID,
		"receiverId": msg.ReceiverID,
	}); err != nil {
		s.logger.Warn().Err(err).Str("message_id", messageID).Msg("publish message.deleted failed")
	}

	return nil
}
