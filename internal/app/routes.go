package app

import (
	"github.com/dutycal/dutycal/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Calendar
	r.HandleFunc("/api/calendar/month", deps.CalendarHandler.CurrentMonth).Methods("GET")
	r.HandleFunc("/api/calendar/month/next", deps.CalendarHandler.Next).Methods("POST")
	r.HandleFunc("/api/calendar/month/previous", deps.CalendarHandler.Previous).Methods("POST")
	r.HandleFunc("/api/calendar/month/{year}/{month}", deps.CalendarHandler.Month).Methods("GET")
	r.HandleFunc("/api/calendar/continuous", deps.CalendarHandler.Continuous).Methods("GET")
	r.HandleFunc("/api/calendar/highlight", deps.CalendarHandler.SetHighlight).Methods("PUT")

	// People and counts
	r.HandleFunc("/api/people", deps.CalendarHandler.People).Methods("GET")
	r.HandleFunc("/api/counts", deps.CalendarHandler.Counts).Methods("GET")

	// Feed
	r.HandleFunc("/api/feed/reload", deps.FeedHandler.Reload).Methods("POST")
	r.HandleFunc("/api/feed/status", deps.FeedHandler.Status).Methods("GET")
}
