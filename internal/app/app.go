package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dutycal/dutycal/internal/config"
	"github.com/dutycal/dutycal/internal/database"
	"github.com/dutycal/dutycal/internal/rest"
	"github.com/dutycal/dutycal/internal/utils"
	"github.com/dutycal/dutycal/pkg/feed"
	"github.com/dutycal/dutycal/pkg/feed/pgfeed"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, feed source, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
	db     *pgxpool.Pool
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}
	ctx := context.Background()

	source, db, err := NewFeedSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(source, utils.SystemClock{Location: cfg.Location()}, cfg)

	// A failed initial load leaves the calendar empty until a reload succeeds.
	if _, err := deps.FeedLoader.Load(ctx); err != nil {
		log.Warnf("initial feed load failed, serving without a schedule: %v", err)
	}

	r := NewRouter(deps, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv, db: db}, nil
}

// NewRouter builds the router with middleware, API routes and the optional frontend.
func NewRouter(deps *Dependencies, cfg config.Application) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	SetupMiddleware(r, deps, cfg)

	// Routes
	RegisterRoutes(r, deps, cfg)

	// Frontend
	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler(cfg.Frontend.Dir, "index.html")
		r.PathPrefix("/").Handler(frontend)
	}
	return r
}

// NewFeedSource selects the configured feed source. The pool is returned for
// the postgres source so the application can close it.
func NewFeedSource(ctx context.Context, cfg config.Application) (feed.Source, *pgxpool.Pool, error) {
	switch cfg.Feed.Source {
	case config.FeedSourceFile, "":
		return feed.NewFileSource(cfg.Feed.Path), nil, nil
	case config.FeedSourceHTTP:
		if cfg.Feed.URL == "" {
			return nil, nil, fmt.Errorf("feed source %q requires feed.url", cfg.Feed.Source)
		}
		return feed.NewHTTPSource(cfg.Feed), nil, nil
	case config.FeedSourcePostgres:
		// DB + migrations
		if err := database.Migrate(ctx, cfg.Database); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return pgfeed.NewSource(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
	}
}

// Run starts the HTTP server and blocks.
func (a *Application) Run() error {
	if a.db != nil {
		defer a.db.Close()
	}
	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
