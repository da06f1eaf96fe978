package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Kushagra128/LangBridge/internal/api/middleware"
	"github.com/Kushagra128/LangBridge/internal/messaging"
)

// DeleteMessageResponse is the delete acknowledgement.
type DeleteMessageResponse struct {
	Message string `json:"message"`
}

// SendMessage handles sending a direct message to the user in the path.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	senderID := middleware.GetUserIDFromContext(r.Context())
	if senderID == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	recipientID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(recipientID); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid recipient ID format")
		return
	}

	var req messaging.SendInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := h.messages.Send(r.Context(), senderID, recipientID, req)
	if err != nil {
		switch {
		case errors.Is(err, messaging.ErrValidation):
			h.Error(w, http.StatusBadRequest, "message content is required")
		case errors.Is(err, messaging.ErrNotFound):
			h.Error(w, http.StatusNotFound, "recipient not found")
		default:
			h.logger.Error().Err(err).Str("sender_id", senderID).Msg("send message failed")
			h.Error(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}

	h.JSON(w, http.StatusCreated, msg)
}

// GetMessages returns the full conversation between the caller and the user
// in the path, oldest first.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())
	if callerID == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	peerID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(peerID); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user ID format")
		return
	}

	messages, err := h.messages.ListConversation(r.Context(), callerID, peerID)
	if err != nil {
		h.logger.Error().Err(err).Str("caller_id", callerID).Msg("list conversation failed")
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	h.JSON(w, http.StatusOK, messages)
}

// DeleteMessage deletes a message the caller sent.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())
	if callerID == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	messageID := chi.URLParam(r, "id")

	err := h.messages.DeleteMessage(r.Context(), callerID, messageID)
	switch {
	case err == nil:
		h.JSON(w, http.StatusOK, DeleteMessageResponse{Message: "Message deleted successfully"})
	case errors.Is(err, messaging.ErrNotFound):
		h.Error(w, http.StatusNotFound, "message not found")
	case errors.Is(err, messaging.ErrForbidden):
		h.Error(w, http.StatusForbidden, "not authorized to delete this message")
	default:
		h.logger.Error().Err(err).Str("message_id", messageID).Msg("delete message failed")
		h.Error(w, http.StatusInternalServerError, "failed to delete message")
	}
}
