package schedule

import (
	"fmt"
	"sort"
	"time"
)

// MonthBucket holds the days of one calendar month, sorted by day.
type MonthBucket struct {
	Year  int
	Month time.Month
	Days  []*DayRecord
}

func (b MonthBucket) Key() string {
	return fmt.Sprintf("%04d-%02d", b.Year, int(b.Month))
}

func (b MonthBucket) Contains(date Date) bool {
	return date.Year == b.Year && date.Month == b.Month
}

type monthKey struct {
	year  int
	month time.Month
}

// GroupByMonth partitions records into chronologically ordered month buckets.
// Buckets and their days are ordered numerically regardless of input order.
func GroupByMonth(records []*DayRecord) []MonthBucket {
	if len(records) == 0 {
		return []MonthBucket{}
	}

	index := make(map[monthKey]int)
	var buckets []MonthBucket
	for _, r := range records {
		key := monthKey{r.Year, r.Month}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, MonthBucket{Year: r.Year, Month: r.Month})
		}
		buckets[i].Days = append(buckets[i].Days, r)
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Month < buckets[j].Month
	})
	for _, b := range buckets {
		sort.SliceStable(b.Days, func(i, j int) bool {
			return b.Days[i].Day < b.Days[j].Day
		})
	}
	return buckets
}

// FindMonth returns the index of the bucket for year and month, or -1.
func FindMonth(buckets []MonthBucket, year int, month time.Month) int {
	i := sort.Search(len(buckets), func(i int) bool {
		b := buckets[i]
		return b.Year > year || (b.Year == year && b.Month >= month)
	})
	if i < len(buckets) && buckets[i].Year == year && buckets[i].Month == month {
		return i
	}
	return -1
}
