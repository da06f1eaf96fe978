package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type requestLogKey struct{}

// requestLog collects fields set further down the chain, after the logger
// has already handed the request on.
type requestLog struct {
	userID string
}

// quietPaths are polled by health checkers and scrapers and only logged on failure.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Logger returns a request logging middleware using zerolog.
func Logger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := &requestLog{}

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					// hijacked connections never call WriteHeader
					status = http.StatusOK
					if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
						status = http.StatusSwitchingProtocols
					}
				}
				var evt *zerolog.Event
				switch {
				case status >= 500:
					evt = logger.Error()
				case status >= 400:
					evt = logger.Warn()
				case quietPaths[r.URL.Path]:
					return
				default:
					evt = logger.Info()
				}

				msg := "request completed"
				if status == http.StatusSwitchingProtocols {
					msg = "websocket closed"
				}

				evt.Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Dur("latency", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("remote_addr", r.RemoteAddr).
					Str("user_id", info.userID).
					Msg(msg)
			}()

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestLogKey{}, info)))
		})
	}
}

func noteUserID(ctx context.Context, userID string) {
	if info, ok := ctx.Value(requestLogKey{}).(*requestLog); ok {
		info.userID = userID
	}
}
