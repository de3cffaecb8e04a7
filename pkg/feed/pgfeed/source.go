package pgfeed

import (
	"context"
	"fmt"
	"time"

	"github.com/dutycal/dutycal/pkg/schedule"
	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Source reads the feed from the roster_day table.
type Source struct {
	db Querier
}

func NewSource(db Querier) *Source {
	return &Source{db: db}
}

func (s *Source) Name() string {
	return "postgres:roster_day"
}

func (s *Source) Fetch(ctx context.Context) ([]schedule.DayRecord, error) {
	query := `SELECT day, summary, working_people, resting_people, person_day_count
			  FROM roster_day
			  ORDER BY day`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster days: %w", err)
	}
	defer rows.Close()

	var records []schedule.DayRecord
	for rows.Next() {
		var (
			day            time.Time
			summary        string
			working        []string
			resting        []string
			personDayCount map[string]int
		)
		if err := rows.Scan(&day, &summary, &working, &resting, &personDayCount); err != nil {
			return nil, fmt.Errorf("failed to scan roster day: %w", err)
		}
		records = append(records, schedule.NewDayRecord(schedule.DateOf(day), summary, working, resting, personDayCount))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster days: %w", err)
	}
	return records, nil
}
