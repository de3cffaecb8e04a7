package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dutycal/dutycal/internal/event_bus"
	"github.com/dutycal/dutycal/internal/utils"
	"github.com/dutycal/dutycal/pkg/count"
	"github.com/dutycal/dutycal/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

var ErrEmptyFeed = errors.New("feed contains no records")

// Snapshot is one loaded feed. It is never modified after creation.
type Snapshot struct {
	Source   string
	Store    *schedule.Store
	Months   []schedule.MonthBucket
	People   []string
	LoadedAt time.Time
}

type Loader struct {
	source   Source
	eventBus *event_bus.EventBus
	clock    utils.Clock

	mu      sync.RWMutex
	current *Snapshot
}

func NewLoader(source Source, eventBus *event_bus.EventBus, clock utils.Clock) *Loader {
	return &Loader{source: source, eventBus: eventBus, clock: clock}
}

// Current returns the active snapshot, nil until a load succeeded.
func (l *Loader) Current() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Load fetches and indexes the feed, then replaces the active snapshot. On
// failure the previous snapshot stays active.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	records, err := l.source.Fetch(ctx)
	if err != nil {
		var malformed *schedule.MalformedFeedError
		if errors.As(err, &malformed) {
			log.Warnf("rejected feed from %s: %v", l.source.Name(), err)
		} else {
			log.Errorf("failed to fetch feed from %s: %v", l.source.Name(), err)
		}
		return nil, err
	}

	snapshot, err := BuildSnapshot(records)
	if err != nil {
		log.Warnf("rejected feed from %s: %v", l.source.Name(), err)
		return nil, err
	}
	snapshot.Source = l.source.Name()
	snapshot.LoadedAt = l.clock.Now()

	l.mu.Lock()
	l.current = snapshot
	l.mu.Unlock()

	log.Infof("Loaded feed from %s: %d days in %d months", snapshot.Source, snapshot.Store.Len(), len(snapshot.Months))

	if l.eventBus != nil {
		err := l.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.FeedLoadedEvent, event_bus.FeedLoaded{
			Source:   snapshot.Source,
			Days:     snapshot.Store.Len(),
			Months:   len(snapshot.Months),
			LoadedAt: snapshot.LoadedAt,
		}))
		if err != nil {
			log.Errorf("failed to publish feed loaded event: %v", err)
		}
	}
	return snapshot, nil
}

// BuildSnapshot validates and indexes records.
func BuildSnapshot(records []schedule.DayRecord) (*Snapshot, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFeed
	}
	store, err := schedule.NewStore(records)
	if err != nil {
		return nil, fmt.Errorf("failed to build day record store: %w", err)
	}
	stored := store.Records()
	return &Snapshot{
		Store:  store,
		Months: schedule.GroupByMonth(stored),
		People: count.People(stored),
	}, nil
}
