package count

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const NoData = "no data available"

type Renderer interface {
	Render(snapshot Snapshot, order []string) (string, error)
}

// Line is one entry of the counts panel.
type Line struct {
	Name string
	Days int
}

// Lines orders the snapshot by order (the roster's name order). Names missing
// from order follow alphabetically.
func Lines(snapshot Snapshot, order []string) []Line {
	lines := make([]Line, 0, len(snapshot.Counts))
	listed := make(map[string]struct{}, len(order))
	for _, name := range order {
		if days, ok := snapshot.Counts[name]; ok {
			if _, dup := listed[name]; dup {
				continue
			}
			listed[name] = struct{}{}
			lines = append(lines, Line{Name: name, Days: days})
		}
	}

	var rest []string
	for name := range snapshot.Counts {
		if _, ok := listed[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		lines = append(lines, Line{Name: name, Days: snapshot.Counts[name]})
	}
	return lines
}

type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (r *TextRenderer) Render(snapshot Snapshot, order []string) (string, error) {
	if !snapshot.Found {
		return NoData + "\n", nil
	}
	var b strings.Builder
	for _, line := range Lines(snapshot, order) {
		fmt.Fprintf(&b, "%s: %d days\n", line.Name, line.Days)
	}
	return b.String(), nil
}

type CsvRenderer struct{}

func NewCsvRenderer() *CsvRenderer {
	return &CsvRenderer{}
}

func (r *CsvRenderer) Render(snapshot Snapshot, order []string) (string, error) {
	data := [][]string{{"name", "days"}}
	if snapshot.Found {
		for _, line := range Lines(snapshot, order) {
			data = append(data, []string{line.Name, strconv.Itoa(line.Days)})
		}
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.WriteAll(data); err != nil {
		log.Errorf("Error writing counts csv: %v", err)
		return "", err
	}
	return b.String(), nil
}
