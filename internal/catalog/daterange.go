package catalog

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when the start date falls after the end date.
var ErrInvalidRange = errors.New("start date is after end date")

// DateRange returns every calendar day from start to end inclusive, in
// chronological order. start == end yields exactly one day. Times of day are
// ignored; only the calendar date matters.
func DateRange(start, end time.Time) ([]time.Time, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)

	if start.After(end) {
		return nil, ErrInvalidRange
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
