package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dutycal/dutycal/internal/rest"
	"github.com/dutycal/dutycal/pkg/count"
	"github.com/dutycal/dutycal/pkg/grid"
	"github.com/dutycal/dutycal/pkg/schedule"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	calendar *Service
	text     count.Renderer
	csv      count.Renderer
}

type CellDTO struct {
	Blank         bool     `json:"blank"`
	Date          string   `json:"date,omitempty"`
	Day           int      `json:"day,omitempty"`
	Month         int      `json:"month,omitempty"`
	MonthLabel    string   `json:"monthLabel,omitempty"`
	FirstOfMonth  bool     `json:"firstOfMonth"`
	Today         bool     `json:"today"`
	Borrowed      bool     `json:"borrowed"`
	Summary       string   `json:"summary,omitempty"`
	WorkingPeople []string `json:"workingPeople"`
	RestingPeople []string `json:"restingPeople"`
	Highlighted   bool     `json:"highlighted"`
}

type GridDTO struct {
	Year        int         `json:"year,omitempty"`
	Month       int         `json:"month,omitempty"`
	Label       string      `json:"label,omitempty"`
	Index       int         `json:"index"`
	Count       int         `json:"count"`
	CanPrevious bool        `json:"canPrevious"`
	CanNext     bool        `json:"canNext"`
	Weekdays    []string    `json:"weekdays"`
	Rows        [][]CellDTO `json:"rows"`
}

type HighlightDTO struct {
	Name string `json:"name"`
	On   bool   `json:"on"`
}

type HighlightsDTO struct {
	Highlights []string `json:"highlights"`
}

type PersonDTO struct {
	Name        string `json:"name"`
	Highlighted bool   `json:"highlighted"`
}

type CountsDTO struct {
	AsOf   string         `json:"asOf"`
	Found  bool           `json:"found"`
	Date   string         `json:"date,omitempty"`
	Counts []CountLineDTO `json:"counts"`
}

type CountLineDTO struct {
	Name string `json:"name"`
	Days int    `json:"days"`
}

func NewHandler(s *Service, text count.Renderer, csv count.Renderer) *Handler {
	return &Handler{calendar: s, text: text, csv: csv}
}

func (h *Handler) CurrentMonth(w http.ResponseWriter, r *http.Request) {
	view, err := h.calendar.CurrentMonth(r.Context())
	h.writeMonth(w, view, err)
}

func (h *Handler) Month(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", "'year' must be a number")
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", "'month' must be a number between 1 and 12")
		return
	}
	view, err := h.calendar.Month(r.Context(), year, time.Month(month))
	h.writeMonth(w, view, err)
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	view, err := h.calendar.Next(r.Context())
	h.writeMonth(w, view, err)
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	view, err := h.calendar.Previous(r.Context())
	h.writeMonth(w, view, err)
}

func (h *Handler) Continuous(w http.ResponseWriter, r *http.Request) {
	view, err := h.calendar.Continuous(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, viewToDTO(view))
}

func (h *Handler) SetHighlight(w http.ResponseWriter, r *http.Request) {
	var highlightDTO HighlightDTO
	if err := json.NewDecoder(r.Body).Decode(&highlightDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid highlight", err.Error())
		return
	}
	highlights, err := h.calendar.SetHighlight(r.Context(), highlightDTO.Name, highlightDTO.On)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if highlights == nil {
		highlights = []string{}
	}
	rest.WriteJSON(w, http.StatusOK, HighlightsDTO{Highlights: highlights})
}

func (h *Handler) People(w http.ResponseWriter, r *http.Request) {
	people, err := h.calendar.People(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]PersonDTO, 0, len(people))
	for _, p := range people {
		dtos = append(dtos, PersonDTO{Name: p.Name, Highlighted: p.Highlighted})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Counts answers with JSON, or with text/plain or text/csv when the Accept
// header asks for it.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	var asOf schedule.Date
	if asOfString := r.URL.Query().Get("asOf"); asOfString != "" {
		parsed, err := schedule.ParseDate(asOfString)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid asOf (date) format", "'asOf' must be in YYYY-MM-DD format")
			return
		}
		asOf = parsed
	}

	counts, err := h.calendar.Counts(r.Context(), asOf)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "text/csv"):
		h.writeRendered(w, h.csv, counts, "text/csv")
	case strings.Contains(accept, "text/plain"):
		h.writeRendered(w, h.text, counts, "text/plain; charset=utf-8")
	default:
		rest.WriteJSON(w, http.StatusOK, countsToDTO(counts))
	}
}

func (h *Handler) writeRendered(w http.ResponseWriter, renderer count.Renderer, counts *Counts, contentType string) {
	body, err := renderer.Render(counts.Snapshot, counts.Order)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("failed to write counts: %v", err)
	}
}

func (h *Handler) writeMonth(w http.ResponseWriter, view *MonthView, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dto := viewToDTO(view.View)
	dto.Index = view.Index
	dto.Count = view.Count
	dto.CanPrevious = view.CanPrevious
	dto.CanNext = view.CanNext
	rest.WriteJSON(w, http.StatusOK, dto)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoFeed):
		rest.WriteError(w, http.StatusServiceUnavailable, "Schedule not loaded", err.Error())
	case errors.Is(err, ErrMonthNotFound):
		rest.WriteError(w, http.StatusNotFound, "Month not found", err.Error())
	case errors.Is(err, ErrUnknownPerson), errors.Is(err, ErrEmptyHighlight):
		rest.WriteError(w, http.StatusBadRequest, "Invalid highlight", err.Error())
	case errors.Is(err, ErrNoSession):
		rest.WriteError(w, http.StatusBadRequest, "Missing session", err.Error())
	default:
		log.Errorf("calendar request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func viewToDTO(view *grid.View) GridDTO {
	dto := GridDTO{
		Year:     view.Year,
		Month:    int(view.Month),
		Weekdays: make([]string, 0, grid.DaysPerWeek),
		Rows:     make([][]CellDTO, 0, len(view.Rows)),
	}
	if view.Year != 0 {
		dto.Label = grid.Title(view.Year, view.Month)
	}
	for _, d := range grid.Weekdays {
		dto.Weekdays = append(dto.Weekdays, d.String()[:3])
	}
	for _, row := range view.Rows {
		cells := make([]CellDTO, 0, grid.DaysPerWeek)
		for _, c := range row {
			cells = append(cells, cellToDTO(c))
		}
		dto.Rows = append(dto.Rows, cells)
	}
	return dto
}

func cellToDTO(c grid.Cell) CellDTO {
	if c.Blank {
		return CellDTO{Blank: true, WorkingPeople: []string{}, RestingPeople: []string{}}
	}
	return CellDTO{
		Date:          c.Date.String(),
		Day:           c.Day,
		Month:         int(c.Month),
		MonthLabel:    c.MonthLabel,
		FirstOfMonth:  c.FirstOfMonth,
		Today:         c.Today,
		Borrowed:      c.Borrowed,
		Summary:       c.Summary,
		WorkingPeople: nonNil(c.WorkingPeople),
		RestingPeople: nonNil(c.RestingPeople),
		Highlighted:   c.Highlighted,
	}
}

func countsToDTO(c *Counts) CountsDTO {
	dto := CountsDTO{
		AsOf:   c.AsOf.String(),
		Found:  c.Found,
		Counts: []CountLineDTO{},
	}
	if c.Found {
		dto.Date = c.Date.String()
	}
	for _, line := range count.Lines(c.Snapshot, c.Order) {
		dto.Counts = append(dto.Counts, CountLineDTO{Name: line.Name, Days: line.Days})
	}
	return dto
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
