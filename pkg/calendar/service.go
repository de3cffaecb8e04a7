package calendar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dutycal/dutycal/internal/event_bus"
	"github.com/dutycal/dutycal/internal/utils"
	"github.com/dutycal/dutycal/pkg/count"
	"github.com/dutycal/dutycal/pkg/feed"
	"github.com/dutycal/dutycal/pkg/grid"
	"github.com/dutycal/dutycal/pkg/navigation"
	"github.com/dutycal/dutycal/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoFeed         = errors.New("no schedule feed loaded")
	ErrMonthNotFound  = errors.New("month not present in schedule")
	ErrUnknownPerson  = errors.New("person not present in schedule")
	ErrEmptyHighlight = errors.New("highlight name must not be empty")
)

// SnapshotProvider returns the active feed snapshot, nil when none is loaded.
type SnapshotProvider interface {
	Current() *feed.Snapshot
}

// MonthView is a rendered month grid with the navigation position it was taken at.
type MonthView struct {
	*grid.View
	Index       int
	Count       int
	CanPrevious bool
	CanNext     bool
}

type Person struct {
	Name        string
	Highlighted bool
}

type Counts struct {
	count.Snapshot
	AsOf schedule.Date
	// Order is the roster name order used to list the counts.
	Order []string
}

// SessionLimits bounds the sessions kept in memory. Sessions idle for longer
// than IdleTimeout are dropped; above Max the least recently used one goes.
// Zero disables the respective limit.
type SessionLimits struct {
	Max         int
	IdleTimeout time.Duration
}

type session struct {
	lastSeen   time.Time
	snapshot   *feed.Snapshot
	nav        *navigation.State
	highlights []string
}

type Service struct {
	feed   SnapshotProvider
	clock  utils.Clock
	limits SessionLimits

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(feed SnapshotProvider, clock utils.Clock, limits SessionLimits) *Service {
	return &Service{
		feed:     feed,
		clock:    clock,
		limits:   limits,
		sessions: make(map[string]*session),
	}
}

// SubscribeTo drops every session when a new feed is loaded.
func (s *Service) SubscribeTo(eventBus *event_bus.EventBus) (unsubscribe func()) {
	return event_bus.SubscribeTyped[event_bus.FeedLoaded](eventBus, event_bus.FeedLoadedEvent, func(e event_bus.EventT[event_bus.FeedLoaded]) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		log.Debugf("Resetting %d calendar sessions after feed load from %s", len(s.sessions), e.Data.Source)
		clear(s.sessions)
		return nil
	})
}

func (s *Service) CurrentMonth(ctx context.Context) (*MonthView, error) {
	return s.withSession(ctx, func(sess *session) (*MonthView, error) {
		return s.renderMonth(sess), nil
	})
}

// Month moves the session to the given month.
func (s *Service) Month(ctx context.Context, year int, month time.Month) (*MonthView, error) {
	return s.withSession(ctx, func(sess *session) (*MonthView, error) {
		index := schedule.FindMonth(sess.snapshot.Months, year, month)
		if index < 0 {
			return nil, fmt.Errorf("%w: %04d-%02d", ErrMonthNotFound, year, int(month))
		}
		sess.nav.Jump(index)
		return s.renderMonth(sess), nil
	})
}

func (s *Service) Next(ctx context.Context) (*MonthView, error) {
	return s.withSession(ctx, func(sess *session) (*MonthView, error) {
		sess.nav.Advance()
		return s.renderMonth(sess), nil
	})
}

func (s *Service) Previous(ctx context.Context) (*MonthView, error) {
	return s.withSession(ctx, func(sess *session) (*MonthView, error) {
		sess.nav.Retreat()
		return s.renderMonth(sess), nil
	})
}

// Continuous renders the whole feed as one grid with the session highlights.
func (s *Service) Continuous(ctx context.Context) (*grid.View, error) {
	var view *grid.View
	_, err := s.withSession(ctx, func(sess *session) (*MonthView, error) {
		store := sess.snapshot.Store
		view = grid.NewRenderer(utils.Today(s.clock)).RenderContinuous(store.Records(), store)
		view.ApplyHighlights(sess.highlights)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SetHighlight adds or removes name from the session highlights and returns
// the highlighted names.
func (s *Service) SetHighlight(ctx context.Context, name string, on bool) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyHighlight
	}
	var highlights []string
	_, err := s.withSession(ctx, func(sess *session) (*MonthView, error) {
		if !slices.Contains(sess.snapshot.People, name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPerson, name)
		}
		i := slices.Index(sess.highlights, name)
		switch {
		case on && i < 0:
			sess.highlights = append(sess.highlights, name)
		case !on && i >= 0:
			sess.highlights = slices.Delete(sess.highlights, i, i+1)
		}
		highlights = slices.Clone(sess.highlights)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("Highlight %q set to %t", name, on)
	return highlights, nil
}

func (s *Service) Highlights(ctx context.Context) ([]string, error) {
	var highlights []string
	_, err := s.withSession(ctx, func(sess *session) (*MonthView, error) {
		highlights = slices.Clone(sess.highlights)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return highlights, nil
}

// People lists the roster names with the session highlight state.
func (s *Service) People(ctx context.Context) ([]Person, error) {
	var people []Person
	_, err := s.withSession(ctx, func(sess *session) (*MonthView, error) {
		people = make([]Person, 0, len(sess.snapshot.People))
		for _, name := range sess.snapshot.People {
			people = append(people, Person{Name: name, Highlighted: slices.Contains(sess.highlights, name)})
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}

// Counts returns the per person day counts as of the given date, or as of
// today when asOf is zero. Counts do not depend on the session.
func (s *Service) Counts(ctx context.Context, asOf schedule.Date) (*Counts, error) {
	snapshot := s.feed.Current()
	if snapshot == nil {
		return nil, ErrNoFeed
	}
	if asOf.IsZero() {
		asOf = utils.Today(s.clock)
	}
	return &Counts{
		Snapshot: count.AsOf(snapshot.Store.Records(), asOf),
		AsOf:     asOf,
		Order:    snapshot.People,
	}, nil
}

// withSession runs fn with the caller's session locked. A session created for
// an older snapshot is replaced.
func (s *Service) withSession(ctx context.Context, fn func(sess *session) (*MonthView, error)) (*MonthView, error) {
	snapshot := s.feed.Current()
	if snapshot == nil {
		return nil, ErrNoFeed
	}
	id, err := SessionId(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	sess, ok := s.sessions[id]
	if !ok || sess.snapshot != snapshot {
		if !ok {
			s.evict(now)
		}
		sess = &session{
			snapshot: snapshot,
			nav:      navigation.Initial(snapshot.Months, utils.Today(s.clock)),
		}
		s.sessions[id] = sess
		log.Tracef("Created calendar session %s at month index %d", id, sess.nav.Current())
	}
	sess.lastSeen = now
	return fn(sess)
}

// evict makes room for one new session. Must be called with s.mu held.
func (s *Service) evict(now time.Time) {
	if s.limits.IdleTimeout > 0 {
		for id, sess := range s.sessions {
			if now.Sub(sess.lastSeen) > s.limits.IdleTimeout {
				delete(s.sessions, id)
			}
		}
	}
	for s.limits.Max > 0 && len(s.sessions) >= s.limits.Max {
		var oldestId string
		var oldest time.Time
		for id, sess := range s.sessions {
			if oldestId == "" || sess.lastSeen.Before(oldest) {
				oldestId, oldest = id, sess.lastSeen
			}
		}
		log.Debugf("Evicting calendar session %s, last seen %s", oldestId, oldest.Format(time.RFC3339))
		delete(s.sessions, oldestId)
	}
}

// SessionCount reports the number of sessions held in memory.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) renderMonth(sess *session) *MonthView {
	bucket := sess.snapshot.Months[sess.nav.Current()]
	view := grid.NewRenderer(utils.Today(s.clock)).RenderMonth(bucket, sess.snapshot.Store)
	view.ApplyHighlights(sess.highlights)
	return &MonthView{
		View:        view,
		Index:       sess.nav.Current(),
		Count:       sess.nav.Count(),
		CanPrevious: sess.nav.CanRetreat(),
		CanNext:     sess.nav.CanAdvance(),
	}
}
