package calendar

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/dutycal/dutycal/internal/event_bus"
	"github.com/dutycal/dutycal/internal/utils"
	"github.com/dutycal/dutycal/pkg/feed"
	"github.com/dutycal/dutycal/pkg/grid"
	"github.com/dutycal/dutycal/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

// roster covers Monday 2025-02-24 to Sunday 2025-04-06. Alice works on even
// days from the start, Bob on odd ones.
func roster() []schedule.DayRecord {
	start := schedule.Date{Year: 2025, Month: time.February, Day: 24}
	var records []schedule.DayRecord
	alice, bob := 0, 0
	for i := 0; i < 42; i++ {
		working, resting := "Alice", "Bob"
		if i%2 == 1 {
			working, resting = "Bob", "Alice"
		}
		if working == "Alice" {
			alice++
		} else {
			bob++
		}
		records = append(records, schedule.NewDayRecord(
			start.AddDays(i), "", []string{working}, []string{resting},
			map[string]int{"Alice": alice, "Bob": bob},
		))
	}
	return records
}

type testEnv struct {
	clock   *utils.MockClock
	service *Service
	loader  *feed.Loader
	source  *feed.StubSource
	bus     *event_bus.EventBus
}

var testLimits = SessionLimits{Max: 100, IdleTimeout: 30 * time.Minute}

func setupService(t *testing.T, load bool) testEnv {
	t.Helper()
	return setupServiceWithLimits(t, load, testLimits)
}

func setupServiceWithLimits(t *testing.T, load bool, limits SessionLimits) testEnv {
	t.Helper()
	clock := &utils.MockClock{FixedNow: today}
	source := feed.NewStubSource(roster())
	bus := event_bus.NewEventBus()
	loader := feed.NewLoader(source, bus, clock)
	if load {
		_, err := loader.Load(context.Background())
		require.NoError(t, err)
	}
	service := NewService(loader, clock, limits)
	t.Cleanup(service.SubscribeTo(bus))
	return testEnv{clock: clock, service: service, loader: loader, source: source, bus: bus}
}

func sessionCtx(id string) context.Context {
	return WithSession(context.Background(), id)
}

func date(y int, m time.Month, d int) schedule.Date {
	return schedule.Date{Year: y, Month: m, Day: d}
}

func TestService_CurrentMonth(t *testing.T) {
	// given
	env := setupService(t, true)

	// when
	view, err := env.service.CurrentMonth(sessionCtx("a"))

	// then
	require.NoError(t, err)
	assert.Equal(t, 2025, view.Year)
	assert.Equal(t, time.March, view.Month)
	assert.Equal(t, 1, view.Index)
	assert.Equal(t, 3, view.Count)
	assert.True(t, view.CanPrevious)
	assert.True(t, view.CanNext)
	require.Len(t, view.Rows, 6)

	lead := view.Rows[0][0]
	assert.Equal(t, date(2025, time.February, 24), lead.Date)
	assert.True(t, lead.Borrowed)

	first := view.Rows[0][5]
	assert.Equal(t, date(2025, time.March, 1), first.Date)
	assert.True(t, first.FirstOfMonth)

	todayCell := view.Rows[2][5]
	assert.Equal(t, date(2025, time.March, 15), todayCell.Date)
	assert.True(t, todayCell.Today)

	trail := view.Rows[5][1]
	assert.Equal(t, date(2025, time.April, 1), trail.Date)
	assert.True(t, trail.Borrowed)
	assert.False(t, trail.FirstOfMonth)
	assert.Equal(t, "4月", trail.MonthLabel)
}

func TestService_Navigation(t *testing.T) {
	t.Run("advance stops at the last month", func(t *testing.T) {
		env := setupService(t, true)
		ctx := sessionCtx("a")

		view, err := env.service.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, time.April, view.Month)
		assert.False(t, view.CanNext)
		require.Len(t, view.Rows, 1)
		assert.Equal(t, date(2025, time.March, 31), view.Rows[0][0].Date)

		view, err = env.service.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, view.Index)
	})

	t.Run("retreat stops at the first month", func(t *testing.T) {
		env := setupService(t, true)
		ctx := sessionCtx("a")

		view, err := env.service.Previous(ctx)
		require.NoError(t, err)
		assert.Equal(t, time.February, view.Month)
		assert.False(t, view.CanPrevious)
		require.Len(t, view.Rows, 1)
		assert.Equal(t, date(2025, time.March, 2), view.Rows[0][6].Date)

		view, err = env.service.Previous(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, view.Index)
		assert.Equal(t, time.February, view.Month)
	})

	t.Run("sessions navigate independently", func(t *testing.T) {
		env := setupService(t, true)

		_, err := env.service.Next(sessionCtx("a"))
		require.NoError(t, err)
		view, err := env.service.CurrentMonth(sessionCtx("b"))

		require.NoError(t, err)
		assert.Equal(t, time.March, view.Month)
	})

	t.Run("jump to a month", func(t *testing.T) {
		env := setupService(t, true)
		ctx := sessionCtx("a")

		view, err := env.service.Month(ctx, 2025, time.April)
		require.NoError(t, err)
		assert.Equal(t, 2, view.Index)

		view, err = env.service.CurrentMonth(ctx)
		require.NoError(t, err)
		assert.Equal(t, time.April, view.Month)
	})

	t.Run("jump to a missing month", func(t *testing.T) {
		env := setupService(t, true)

		_, err := env.service.Month(sessionCtx("a"), 2024, time.January)

		assert.ErrorIs(t, err, ErrMonthNotFound)
	})
}

func TestService_Errors(t *testing.T) {
	t.Run("no feed loaded", func(t *testing.T) {
		env := setupService(t, false)

		_, err := env.service.CurrentMonth(sessionCtx("a"))
		assert.ErrorIs(t, err, ErrNoFeed)
		_, err = env.service.Counts(sessionCtx("a"), schedule.Date{})
		assert.ErrorIs(t, err, ErrNoFeed)
		_, err = env.service.People(sessionCtx("a"))
		assert.ErrorIs(t, err, ErrNoFeed)
	})

	t.Run("no session", func(t *testing.T) {
		env := setupService(t, true)

		_, err := env.service.CurrentMonth(context.Background())

		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func assertHighlightedWhereWorking(t *testing.T, view *grid.View, name string) {
	t.Helper()
	for _, c := range view.Cells() {
		if c.Blank {
			assert.False(t, c.Highlighted)
			continue
		}
		assert.Equal(t, slices.Contains(c.WorkingPeople, name), c.Highlighted, c.Date.String())
	}
}

func TestService_SetHighlight(t *testing.T) {
	t.Run("highlights working days and survives navigation", func(t *testing.T) {
		// given
		env := setupService(t, true)
		ctx := sessionCtx("a")

		// when
		highlights, err := env.service.SetHighlight(ctx, " Alice ", true)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice"}, highlights)

		view, err := env.service.CurrentMonth(ctx)
		require.NoError(t, err)
		assertHighlightedWhereWorking(t, view.View, "Alice")

		view, err = env.service.Next(ctx)
		require.NoError(t, err)
		assertHighlightedWhereWorking(t, view.View, "Alice")

		continuous, err := env.service.Continuous(ctx)
		require.NoError(t, err)
		assertHighlightedWhereWorking(t, continuous, "Alice")
	})

	t.Run("on then off restores the grid", func(t *testing.T) {
		env := setupService(t, true)
		ctx := sessionCtx("a")
		before, err := env.service.CurrentMonth(ctx)
		require.NoError(t, err)

		_, err = env.service.SetHighlight(ctx, "Bob", true)
		require.NoError(t, err)
		_, err = env.service.SetHighlight(ctx, "Bob", true)
		require.NoError(t, err)
		highlights, err := env.service.SetHighlight(ctx, "Bob", false)
		require.NoError(t, err)
		after, err := env.service.CurrentMonth(ctx)
		require.NoError(t, err)

		assert.Empty(t, highlights)
		assert.Equal(t, before.Rows, after.Rows)
	})

	t.Run("highlights are per session", func(t *testing.T) {
		env := setupService(t, true)

		_, err := env.service.SetHighlight(sessionCtx("a"), "Alice", true)
		require.NoError(t, err)
		highlights, err := env.service.Highlights(sessionCtx("b"))

		require.NoError(t, err)
		assert.Empty(t, highlights)
	})

	t.Run("unknown person", func(t *testing.T) {
		env := setupService(t, true)

		_, err := env.service.SetHighlight(sessionCtx("a"), "Mallory", true)

		assert.ErrorIs(t, err, ErrUnknownPerson)
	})

	t.Run("empty name", func(t *testing.T) {
		env := setupService(t, true)

		_, err := env.service.SetHighlight(sessionCtx("a"), "  ", true)

		assert.ErrorIs(t, err, ErrEmptyHighlight)
	})
}

func TestService_People(t *testing.T) {
	env := setupService(t, true)
	ctx := sessionCtx("a")
	_, err := env.service.SetHighlight(ctx, "Bob", true)
	require.NoError(t, err)

	people, err := env.service.People(ctx)

	require.NoError(t, err)
	assert.Equal(t, []Person{{Name: "Alice"}, {Name: "Bob", Highlighted: true}}, people)
}

func TestService_Counts(t *testing.T) {
	tests := []struct {
		name      string
		asOf      schedule.Date
		wantFound bool
		wantAsOf  schedule.Date
		want      map[string]int
	}{
		{
			name:      "explicit date",
			asOf:      date(2025, time.March, 1),
			wantFound: true,
			wantAsOf:  date(2025, time.March, 1),
			want:      map[string]int{"Alice": 3, "Bob": 3},
		},
		{
			name:      "defaults to today",
			wantFound: true,
			wantAsOf:  date(2025, time.March, 15),
			want:      map[string]int{"Alice": 10, "Bob": 10},
		},
		{
			name:     "before the feed",
			asOf:     date(2025, time.January, 1),
			wantAsOf: date(2025, time.January, 1),
			want:     map[string]int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupService(t, true)

			counts, err := env.service.Counts(sessionCtx("a"), tt.asOf)

			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, counts.Found)
			assert.Equal(t, tt.wantAsOf, counts.AsOf)
			assert.Equal(t, tt.want, counts.Counts)
			assert.Equal(t, []string{"Alice", "Bob"}, counts.Order)
		})
	}
}

func TestService_ReloadResetsSessions(t *testing.T) {
	// given
	env := setupService(t, true)
	ctx := sessionCtx("a")
	_, err := env.service.Next(ctx)
	require.NoError(t, err)
	_, err = env.service.SetHighlight(ctx, "Alice", true)
	require.NoError(t, err)

	// when
	_, err = env.loader.Load(context.Background())
	require.NoError(t, err)

	// then
	env.service.mu.Lock()
	assert.Empty(t, env.service.sessions)
	env.service.mu.Unlock()

	view, err := env.service.CurrentMonth(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.March, view.Month)
	assert.Empty(t, view.Highlighted())
}

func TestService_FailedReloadKeepsSessions(t *testing.T) {
	env := setupService(t, true)
	ctx := sessionCtx("a")
	_, err := env.service.Next(ctx)
	require.NoError(t, err)

	env.source.SetRecords(nil)
	_, err = env.loader.Load(context.Background())
	require.ErrorIs(t, err, feed.ErrEmptyFeed)

	view, err := env.service.CurrentMonth(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.April, view.Month)
}

func TestService_SessionLimits(t *testing.T) {
	t.Run("one-shot sessions stay bounded", func(t *testing.T) {
		// given
		env := setupServiceWithLimits(t, true, SessionLimits{Max: 50})

		// when
		for i := 0; i < 1000; i++ {
			_, err := env.service.CurrentMonth(sessionCtx(fmt.Sprintf("anonymous-%d", i)))
			require.NoError(t, err)
		}

		// then
		assert.Equal(t, 50, env.service.SessionCount())
	})

	t.Run("evicts the least recently used session", func(t *testing.T) {
		// given
		env := setupServiceWithLimits(t, true, SessionLimits{Max: 3})
		for _, id := range []string{"a", "b", "c"} {
			_, err := env.service.CurrentMonth(sessionCtx(id))
			require.NoError(t, err)
			env.clock.SetNow(env.clock.Now().Add(time.Second))
		}
		_, err := env.service.Next(sessionCtx("a"))
		require.NoError(t, err)
		env.clock.SetNow(env.clock.Now().Add(time.Second))

		// when
		_, err = env.service.CurrentMonth(sessionCtx("d"))
		require.NoError(t, err)

		// then
		assert.Equal(t, 3, env.service.SessionCount())
		env.service.mu.Lock()
		_, bKept := env.service.sessions["b"]
		env.service.mu.Unlock()
		assert.False(t, bKept)

		view, err := env.service.CurrentMonth(sessionCtx("a"))
		require.NoError(t, err)
		assert.Equal(t, time.April, view.Month)
	})

	t.Run("drops idle sessions", func(t *testing.T) {
		// given
		env := setupServiceWithLimits(t, true, SessionLimits{IdleTimeout: 10 * time.Minute})
		_, err := env.service.Next(sessionCtx("idle"))
		require.NoError(t, err)
		env.clock.SetNow(env.clock.Now().Add(5 * time.Minute))
		_, err = env.service.CurrentMonth(sessionCtx("active"))
		require.NoError(t, err)
		env.clock.SetNow(env.clock.Now().Add(6 * time.Minute))

		// when
		_, err = env.service.CurrentMonth(sessionCtx("new"))
		require.NoError(t, err)

		// then
		assert.Equal(t, 2, env.service.SessionCount())
		view, err := env.service.CurrentMonth(sessionCtx("idle"))
		require.NoError(t, err)
		assert.Equal(t, time.March, view.Month)
	})
}
