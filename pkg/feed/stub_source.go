package feed

import (
	"context"
	"sync"

	"github.com/dutycal/dutycal/pkg/schedule"
)

// StubSource serves records from memory. Tests swap the records or the error
// between loads.
type StubSource struct {
	mu      sync.Mutex
	records []schedule.DayRecord
	err     error
	fetches int
}

func NewStubSource(records []schedule.DayRecord) *StubSource {
	return &StubSource{records: records}
}

func (s *StubSource) Name() string {
	return "stub"
}

func (s *StubSource) Fetch(ctx context.Context) ([]schedule.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *StubSource) SetRecords(records []schedule.DayRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.err = nil
}

func (s *StubSource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *StubSource) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}
