package grid

import "strings"

// Highlight sets or clears the highlight flag of every cell where name is
// working and returns the number of such cells. Other cells are untouched.
func (v *View) Highlight(name string, on bool) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	matched := 0
	for _, c := range v.Cells() {
		if c.Blank || !containsName(c.WorkingPeople, name) {
			continue
		}
		c.Highlighted = on
		matched++
	}
	return matched
}

// ApplyHighlights clears every flag and highlights each of names.
func (v *View) ApplyHighlights(names []string) {
	for _, c := range v.Cells() {
		c.Highlighted = false
	}
	for _, n := range names {
		v.Highlight(n, true)
	}
}

// Highlighted returns the highlighted cells in grid order.
func (v *View) Highlighted() []*Cell {
	var cells []*Cell
	for _, c := range v.Cells() {
		if c.Highlighted {
			cells = append(cells, c)
		}
	}
	return cells
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
