package count

import (
	"maps"

	"github.com/dutycal/dutycal/pkg/schedule"
)

// Snapshot is the per person day count of one feed record.
type Snapshot struct {
	Found bool
	// Date of the record the counts were taken from.
	Date   schedule.Date
	Counts map[string]int
}

// AsOf returns the counts of the latest record dated on or before asOf. The
// counts are pre-aggregated by the feed producer, so this is a point lookup.
func AsOf(records []*schedule.DayRecord, asOf schedule.Date) Snapshot {
	var best *schedule.DayRecord
	for _, r := range records {
		if r.Date.After(asOf) {
			continue
		}
		if best == nil || r.Date.After(best.Date) {
			best = r
		}
	}
	if best == nil {
		return Snapshot{Counts: map[string]int{}}
	}

	counts := make(map[string]int, len(best.PersonDayCount))
	maps.Copy(counts, best.PersonDayCount)
	return Snapshot{Found: true, Date: best.Date, Counts: counts}
}

// People lists every working or resting name in order of first appearance.
func People(records []*schedule.DayRecord) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(list []string) {
		for _, n := range list {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	for _, r := range records {
		add(r.WorkingPeople)
		add(r.RestingPeople)
	}
	return names
}
