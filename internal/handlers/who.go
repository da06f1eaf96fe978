package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Kushagra128/LangBridge/internal/store"
)

// WhoResponse represents a user profile with live presence.
type WhoResponse struct {
	ID           string `json:"_id"`
	FullName     string `json:"fullname"`
	ProfileImage string `json:"profileImage,omitempty"`
	Language     string `json:"language"`
	Online       bool   `json:"online"`
	JoinedAt     string `json:"joinedAt"`
}

// Who handles user profile lookup.
func (h *Handler) Who(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")

	if _, err := uuid.Parse(idStr); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user ID format")
		return
	}

	user, err := h.db.GetUser(r.Context(), idStr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, WhoResponse{
		ID:           user.ID,
		FullName:     user.FullName,
		ProfileImage: user.ProfileImage,
		Language:     user.Language,
		Online:       h.hub.Online(user.ID),
		JoinedAt:     user.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}
