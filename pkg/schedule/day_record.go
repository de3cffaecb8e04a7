package schedule

import (
	"strings"
	"time"
)

type DayRecord struct {
	Date    Date
	Year    int
	Month   time.Month
	Day     int
	Weekday int // Monday=0 ... Sunday=6
	Summary string
	// WorkingPeople and RestingPeople are already normalised: trimmed, no empty entries.
	WorkingPeople  []string
	RestingPeople  []string
	PersonDayCount map[string]int
}

// NewDayRecord builds a record whose calendar fields are derived from date.
func NewDayRecord(date Date, summary string, working, resting []string, counts map[string]int) DayRecord {
	return DayRecord{
		Date:           date,
		Year:           date.Year,
		Month:          date.Month,
		Day:            date.Day,
		Weekday:        date.Weekday(),
		Summary:        summary,
		WorkingPeople:  NormalizeNames(working),
		RestingPeople:  NormalizeNames(resting),
		PersonDayCount: counts,
	}
}

// Works reports whether name is among the working people of the day.
func (d *DayRecord) Works(name string) bool {
	name = strings.TrimSpace(name)
	for _, n := range d.WorkingPeople {
		if n == name {
			return true
		}
	}
	return false
}

var nameSeparators = strings.NewReplacer("、", ",", "，", ",", ";", ",", "|", ",")

// SplitNames parses a delimited list of names as found in roster exports.
func SplitNames(s string) []string {
	return NormalizeNames(strings.Split(nameSeparators.Replace(s), ","))
}

// NormalizeNames trims every name and drops the empty ones.
func NormalizeNames(names []string) []string {
	result := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			result = append(result, n)
		}
	}
	return result
}
