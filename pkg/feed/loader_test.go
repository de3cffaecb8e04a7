package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/dutycal/dutycal/internal/event_bus"
	"github.com/dutycal/dutycal/internal/utils"
	"github.com/dutycal/dutycal/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loadTime = time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

func days(t *testing.T, from string, count int) []schedule.DayRecord {
	t.Helper()
	start, err := schedule.ParseDate(from)
	require.NoError(t, err)
	var records []schedule.DayRecord
	for i := 0; i < count; i++ {
		records = append(records, schedule.NewDayRecord(start.AddDays(i), "", []string{"Alice"}, []string{"Bob"}, nil))
	}
	return records
}

func setupLoader(t *testing.T, records []schedule.DayRecord) (*Loader, *StubSource, *event_bus.EventBus) {
	t.Helper()
	source := NewStubSource(records)
	bus := event_bus.NewEventBus()
	return NewLoader(source, bus, &utils.MockClock{FixedNow: loadTime}), source, bus
}

func TestLoader_Load(t *testing.T) {
	// given
	loader, _, bus := setupLoader(t, days(t, "2025-02-20", 20))
	var published []event_bus.FeedLoaded
	event_bus.SubscribeTyped(bus, event_bus.FeedLoadedEvent, func(e event_bus.EventT[event_bus.FeedLoaded]) error {
		published = append(published, e.Data)
		return nil
	})

	// when
	snapshot, err := loader.Load(t.Context())

	// then
	require.NoError(t, err)
	assert.Same(t, snapshot, loader.Current())
	assert.Equal(t, 20, snapshot.Store.Len())
	assert.Len(t, snapshot.Months, 2)
	assert.Equal(t, []string{"Alice", "Bob"}, snapshot.People)
	assert.Equal(t, loadTime, snapshot.LoadedAt)
	assert.Equal(t, []event_bus.FeedLoaded{{Source: "stub", Days: 20, Months: 2, LoadedAt: loadTime}}, published)
}

func TestLoader_FailuresKeepPreviousSnapshot(t *testing.T) {
	loader, source, _ := setupLoader(t, days(t, "2025-03-01", 3))
	previous, err := loader.Load(t.Context())
	require.NoError(t, err)

	t.Run("empty feed", func(t *testing.T) {
		source.SetRecords(nil)
		_, err := loader.Load(t.Context())
		assert.ErrorIs(t, err, ErrEmptyFeed)
		assert.Same(t, previous, loader.Current())
	})

	t.Run("malformed feed", func(t *testing.T) {
		duplicated := append(days(t, "2025-03-01", 2), days(t, "2025-03-01", 1)...)
		source.SetRecords(duplicated)
		_, err := loader.Load(t.Context())
		var malformed *schedule.MalformedFeedError
		assert.True(t, errors.As(err, &malformed))
		assert.Same(t, previous, loader.Current())
	})

	t.Run("fetch error", func(t *testing.T) {
		source.SetError(errors.New("connection refused"))
		_, err := loader.Load(t.Context())
		assert.Error(t, err)
		assert.Same(t, previous, loader.Current())
	})
}

func TestLoader_NothingLoaded(t *testing.T) {
	loader, _, _ := setupLoader(t, nil)

	_, err := loader.Load(t.Context())

	assert.ErrorIs(t, err, ErrEmptyFeed)
	assert.Nil(t, loader.Current())
}
