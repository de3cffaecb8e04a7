package grid

import (
	"fmt"
	"time"

	"github.com/dutycal/dutycal/pkg/schedule"
)

var Weekdays = [DaysPerWeek]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Cell is a rendered grid slot. Blank cells carry no data.
type Cell struct {
	Blank bool
	Date  schedule.Date
	Day   int
	Month time.Month
	// MonthLabel is set on every day 1, FirstOfMonth only on the day 1 of
	// the displayed month.
	MonthLabel    string
	FirstOfMonth  bool
	Today         bool
	Borrowed      bool
	Summary       string
	WorkingPeople []string
	RestingPeople []string
	Highlighted   bool
}

type View struct {
	// Year and Month are zero for a continuous view.
	Year  int
	Month time.Month
	Rows  [][DaysPerWeek]Cell
}

type Renderer struct {
	Today schedule.Date
}

func NewRenderer(today schedule.Date) *Renderer {
	return &Renderer{Today: today}
}

// RenderMonth aligns and renders one month bucket.
func (r *Renderer) RenderMonth(bucket schedule.MonthBucket, store Lookup) *View {
	view := r.Render(AlignMonth(bucket, store))
	view.Year = bucket.Year
	view.Month = bucket.Month
	for i := range view.Rows {
		for j := range view.Rows[i] {
			c := &view.Rows[i][j]
			c.Borrowed = !c.Blank && !bucket.Contains(c.Date)
			c.FirstOfMonth = c.FirstOfMonth && !c.Borrowed
		}
	}
	return view
}

// RenderContinuous aligns and renders all records as one grid.
func (r *Renderer) RenderContinuous(records []*schedule.DayRecord, store Lookup) *View {
	return r.Render(AlignContinuous(records, store))
}

// Render partitions slots into rows of 7 cells, Monday first. A trailing
// partial row is completed with blank cells.
func (r *Renderer) Render(slots []Slot) *View {
	rowCount := (len(slots) + DaysPerWeek - 1) / DaysPerWeek
	view := &View{Rows: make([][DaysPerWeek]Cell, rowCount)}
	for i := range view.Rows {
		for j := range view.Rows[i] {
			view.Rows[i][j] = Cell{Blank: true}
		}
	}
	for i, slot := range slots {
		if slot.Blank() {
			continue
		}
		view.Rows[i/DaysPerWeek][i%DaysPerWeek] = r.cell(slot.Day)
	}
	return view
}

func (r *Renderer) cell(d *schedule.DayRecord) Cell {
	c := Cell{
		Date:          d.Date,
		Day:           d.Day,
		Month:         d.Month,
		FirstOfMonth:  d.Day == 1,
		Today:         d.Date == r.Today,
		Summary:       d.Summary,
		WorkingPeople: d.WorkingPeople,
		RestingPeople: d.RestingPeople,
	}
	if c.FirstOfMonth {
		c.MonthLabel = MonthLabel(d.Month)
	}
	return c
}

// MonthLabel is the roster's short month name, e.g. "3月".
func MonthLabel(m time.Month) string {
	return fmt.Sprintf("%d月", int(m))
}

// Title is the heading of a month grid, e.g. "2025年3月".
func Title(year int, m time.Month) string {
	return fmt.Sprintf("%d年%s", year, MonthLabel(m))
}

// Cells returns the cells row by row.
func (v *View) Cells() []*Cell {
	cells := make([]*Cell, 0, len(v.Rows)*DaysPerWeek)
	for i := range v.Rows {
		for j := range v.Rows[i] {
			cells = append(cells, &v.Rows[i][j])
		}
	}
	return cells
}
