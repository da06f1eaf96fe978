package handlers

import (
	"net/http"

	"github.com/Kushagra128/LangBridge/internal/api/middleware"
)

// ListUsers returns every user other than the caller for the chat sidebar.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserIDFromContext(r.Context())
	if callerID == "" {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	users, err := h.db.ListUsersExcept(r.Context(), callerID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, users)
}
