package app

import (
	"github.com/dutycal/dutycal/internal/config"
	"github.com/dutycal/dutycal/internal/event_bus"
	"github.com/dutycal/dutycal/internal/utils"
	"github.com/dutycal/dutycal/pkg/calendar"
	"github.com/dutycal/dutycal/pkg/count"
	"github.com/dutycal/dutycal/pkg/feed"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	FeedSource  feed.Source
	FeedLoader  *feed.Loader
	FeedHandler *feed.Handler

	TextCountsRenderer *count.TextRenderer
	CsvCountsRenderer  *count.CsvRenderer

	CalendarService *calendar.Service
	CalendarHandler *calendar.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(source feed.Source, clock utils.Clock, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = clock
	deps.EventBus = event_bus.NewEventBus()

	deps.FeedSource = source
	deps.FeedLoader = feed.NewLoader(deps.FeedSource, deps.EventBus, deps.Clock)
	deps.FeedHandler = feed.NewHandler(deps.FeedLoader)

	deps.TextCountsRenderer = count.NewTextRenderer()
	deps.CsvCountsRenderer = count.NewCsvRenderer()

	deps.CalendarService = calendar.NewService(deps.FeedLoader, deps.Clock, calendar.SessionLimits{
		Max:         cfg.Sessions.Max,
		IdleTimeout: cfg.Sessions.IdleTimeout,
	})
	deps.CalendarService.SubscribeTo(deps.EventBus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService, deps.TextCountsRenderer, deps.CsvCountsRenderer)

	return deps
}
