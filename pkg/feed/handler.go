package feed

import (
	"errors"
	"net/http"
	"time"

	"github.com/dutycal/dutycal/internal/rest"
	"github.com/dutycal/dutycal/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

type StatusDTO struct {
	Loaded   bool       `json:"loaded"`
	Source   string     `json:"source,omitempty"`
	Days     int        `json:"days"`
	Months   int        `json:"months"`
	First    string     `json:"first,omitempty"`
	Last     string     `json:"last,omitempty"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
}

type Handler struct {
	loader *Loader
}

func NewHandler(loader *Loader) *Handler {
	return &Handler{loader: loader}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, snapshotToStatus(h.loader.Current()))
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	log.Debug("Reloading feed")
	snapshot, err := h.loader.Load(r.Context())
	if err != nil {
		var malformed *schedule.MalformedFeedError
		switch {
		case errors.As(err, &malformed):
			rest.WriteError(w, http.StatusUnprocessableEntity, "Malformed feed", malformed.Error())
		case errors.Is(err, ErrEmptyFeed):
			rest.WriteError(w, http.StatusUnprocessableEntity, "Empty feed", err.Error())
		default:
			rest.WriteError(w, http.StatusBadGateway, "Feed unavailable", err.Error())
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, snapshotToStatus(snapshot))
}

func snapshotToStatus(s *Snapshot) StatusDTO {
	if s == nil {
		return StatusDTO{}
	}
	records := s.Store.Records()
	loadedAt := s.LoadedAt
	return StatusDTO{
		Loaded:   true,
		Source:   s.Source,
		Days:     s.Store.Len(),
		Months:   len(s.Months),
		First:    records[0].Date.String(),
		Last:     records[len(records)-1].Date.String(),
		LoadedAt: &loadedAt,
	}
}
