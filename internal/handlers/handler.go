package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/messaging"
	"github.com/Kushagra128/LangBridge/internal/realtime"
	"github.com/Kushagra128/LangBridge/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db       store.DataStore
	redis    *store.RedisStore
	messages *messaging.Service
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// Options configures a Handler.
type Options struct {
	DB             store.DataStore
	Redis          *store.RedisStore // optional
	Messages       *messaging.Service
	Hub            *realtime.Hub
	AllowedOrigins []string // websocket origins; empty allows any
	Logger         zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(opts Options) *Handler {
	return &Handler{
		db:       opts.DB,
		redis:    opts.Redis,
		messages: opts.Messages,
		hub:      opts.Hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
		logger: opts.Logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// non-browser clients send no Origin
		return origin == "" || set[origin] || set["*"]
	}
}
