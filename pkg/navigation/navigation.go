package navigation

import "github.com/dutycal/dutycal/pkg/schedule"

// State is the index of the displayed month bucket. All transitions are total:
// moving past either end leaves the index unchanged.
type State struct {
	index int
	count int
}

// New returns a state over count buckets positioned at initial, clamped to the valid range.
func New(count int, initial int) *State {
	s := &State{count: count}
	s.Jump(initial)
	return s
}

// Initial positions the state at today's month, or the last bucket when the
// feed does not cover today.
func Initial(buckets []schedule.MonthBucket, today schedule.Date) *State {
	index := schedule.FindMonth(buckets, today.Year, today.Month)
	if index < 0 {
		index = len(buckets) - 1
	}
	return New(len(buckets), index)
}

func (s *State) Current() int {
	return s.index
}

func (s *State) Count() int {
	return s.count
}

func (s *State) CanAdvance() bool {
	return s.index < s.count-1
}

func (s *State) CanRetreat() bool {
	return s.index > 0
}

func (s *State) Advance() int {
	if s.CanAdvance() {
		s.index++
	}
	return s.index
}

func (s *State) Retreat() int {
	if s.CanRetreat() {
		s.index--
	}
	return s.index
}

// Jump moves to index, clamped to [0, count-1].
func (s *State) Jump(index int) int {
	switch {
	case s.count == 0 || index < 0:
		s.index = 0
	case index >= s.count:
		s.index = s.count - 1
	default:
		s.index = index
	}
	return s.index
}
