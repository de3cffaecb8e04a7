package app

import (
	"net/http"

	"github.com/dutycal/dutycal/internal/config"
	"github.com/dutycal/dutycal/pkg/calendar"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const SessionHeader = "X-Session-Id"

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Propagate X-Session-Id header into context, issuing a new id when absent
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sessionId := req.Header.Get(SessionHeader)
			if sessionId == "" {
				sessionId = uuid.NewString()
				log.Debugf("issued new session: %s", sessionId)
			}
			w.Header().Set(SessionHeader, sessionId)
			ctx := calendar.WithSession(req.Context(), sessionId)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			log.Tracef("%s %s", req.Method, req.URL.Path)
			next.ServeHTTP(w, req)
		})
	})
}
