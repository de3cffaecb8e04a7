package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dutycal/dutycal/pkg/schedule"
)

// people accepts either a delimited string or a JSON array of names.
type people []string

func (p *people) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = schedule.SplitNames(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("people must be a string or an array of strings: %w", err)
	}
	*p = schedule.NormalizeNames(list)
	return nil
}

type dayDTO struct {
	Date    string  `json:"date"`
	Year    *int    `json:"year"`
	Month   *int    `json:"month"`
	Day     *int    `json:"day"`
	Weekday *int    `json:"weekday"`
	Summary *string `json:"summary"`
	// Roster exports label the summary column in Chinese.
	LegacySummary       *string        `json:"排班摘要"`
	WorkPeople          people         `json:"work_people"`
	WorkingPeople       people         `json:"workingPeople"`
	RestPeople          people         `json:"rest_people"`
	RestingPeople       people         `json:"restingPeople"`
	PersonDayCount      map[string]int `json:"person_day_count"`
	PersonDayCountCamel map[string]int `json:"personDayCount"`
}

// Decode reads a JSON array of day records. Calendar fields missing from the
// feed are derived from the date; fields present are kept as sent so that
// store construction can reject inconsistent records.
func Decode(r io.Reader) ([]schedule.DayRecord, error) {
	var dtos []dayDTO
	if err := json.NewDecoder(r).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	records := make([]schedule.DayRecord, 0, len(dtos))
	for i, dto := range dtos {
		record, err := dtoToRecord(i, dto)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func dtoToRecord(i int, dto dayDTO) (schedule.DayRecord, error) {
	date, err := schedule.ParseDate(dto.Date)
	if err != nil {
		return schedule.DayRecord{}, &schedule.MalformedFeedError{Index: i, Date: dto.Date, Reason: "invalid date"}
	}

	record := schedule.NewDayRecord(
		date,
		firstString(dto.Summary, dto.LegacySummary),
		firstPeople(dto.WorkPeople, dto.WorkingPeople),
		firstPeople(dto.RestPeople, dto.RestingPeople),
		firstCounts(dto.PersonDayCount, dto.PersonDayCountCamel),
	)
	if dto.Year != nil {
		record.Year = *dto.Year
	}
	if dto.Month != nil {
		record.Month = time.Month(*dto.Month)
	}
	if dto.Day != nil {
		record.Day = *dto.Day
	}
	if dto.Weekday != nil {
		record.Weekday = *dto.Weekday
	}
	return record, nil
}

func firstString(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}

func firstPeople(values ...people) []string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return []string{}
}

func firstCounts(values ...map[string]int) map[string]int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return map[string]int{}
}
