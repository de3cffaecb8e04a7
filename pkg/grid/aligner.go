package grid

import "github.com/dutycal/dutycal/pkg/schedule"

const DaysPerWeek = 7

// Lookup resolves a date to a stored day record.
type Lookup interface {
	Lookup(date schedule.Date) (*schedule.DayRecord, bool)
}

// Slot is one position of the week grid. A nil Day is a blank slot.
type Slot struct {
	Day *schedule.DayRecord
}

func (s Slot) Blank() bool {
	return s.Day == nil
}

// AlignMonth pads a month bucket to whole Monday..Sunday weeks, borrowing
// days of the adjacent months from the store.
func AlignMonth(bucket schedule.MonthBucket, store Lookup) []Slot {
	return Align(bucket.Days, store)
}

// AlignContinuous lays out every record as one continuous calendar.
func AlignContinuous(records []*schedule.DayRecord, store Lookup) []Slot {
	return Align(records, store)
}

// Align returns leading padding, the span and trailing padding as one slot
// sequence whose length is a multiple of 7. Dates missing from the store
// become blank slots, both in the padding and in gaps inside the span.
func Align(span []*schedule.DayRecord, store Lookup) []Slot {
	if len(span) == 0 {
		return []Slot{}
	}
	first := span[0]
	last := span[len(span)-1]

	slots := make([]Slot, 0, first.Weekday+len(span)+DaysPerWeek)

	for i := first.Weekday; i >= 1; i-- {
		slots = append(slots, lookupSlot(store, first.Date.AddDays(-i)))
	}

	for i, day := range span {
		if i > 0 {
			prev := span[i-1].Date
			for gap := 1; gap < prev.DaysUntil(day.Date); gap++ {
				slots = append(slots, lookupSlot(store, prev.AddDays(gap)))
			}
		}
		slots = append(slots, Slot{Day: day})
	}

	for i := 1; i <= 6-last.Weekday; i++ {
		slots = append(slots, lookupSlot(store, last.Date.AddDays(i)))
	}
	return slots
}

func lookupSlot(store Lookup, date schedule.Date) Slot {
	if store == nil {
		return Slot{}
	}
	if r, ok := store.Lookup(date); ok {
		return Slot{Day: r}
	}
	return Slot{}
}
