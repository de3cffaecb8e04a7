package schedule

import "fmt"

// Store is an immutable index of day records keyed by date. It is built once
// per feed load and only read afterwards.
type Store struct {
	records []DayRecord
	byDate  map[Date]*DayRecord
}

// NewStore validates records and indexes them. Dates must be strictly
// increasing. The records are copied, the pointers handed out by Lookup and
// Records point into that copy.
func NewStore(records []DayRecord) (*Store, error) {
	s := &Store{
		records: make([]DayRecord, len(records)),
		byDate:  make(map[Date]*DayRecord, len(records)),
	}
	copy(s.records, records)

	for i := range s.records {
		r := &s.records[i]
		if err := validateRecord(i, r); err != nil {
			return nil, err
		}
		if _, exists := s.byDate[r.Date]; exists {
			return nil, &MalformedFeedError{Index: i, Date: r.Date.String(), Reason: "duplicate date"}
		}
		if i > 0 && !r.Date.After(s.records[i-1].Date) {
			return nil, &MalformedFeedError{Index: i, Date: r.Date.String(), Reason: "date not after previous record"}
		}
		s.byDate[r.Date] = r
	}
	return s, nil
}

func validateRecord(i int, r *DayRecord) error {
	if !r.Date.Valid() {
		return &MalformedFeedError{Index: i, Date: r.Date.String(), Reason: "invalid date"}
	}
	if r.Year != r.Date.Year || r.Month != r.Date.Month || r.Day != r.Date.Day {
		return &MalformedFeedError{
			Index:  i,
			Date:   r.Date.String(),
			Reason: fmt.Sprintf("year/month/day %d/%d/%d do not match the date", r.Year, r.Month, r.Day),
		}
	}
	if want := r.Date.Weekday(); r.Weekday != want {
		return &MalformedFeedError{
			Index:  i,
			Date:   r.Date.String(),
			Reason: fmt.Sprintf("weekday %d does not match the date (expected %d)", r.Weekday, want),
		}
	}
	return nil
}

func (s *Store) Lookup(date Date) (*DayRecord, bool) {
	r, ok := s.byDate[date]
	return r, ok
}

func (s *Store) Len() int {
	return len(s.records)
}

// Records returns the stored records in chronological order.
func (s *Store) Records() []*DayRecord {
	result := make([]*DayRecord, len(s.records))
	for i := range s.records {
		result[i] = &s.records[i]
	}
	return result
}
