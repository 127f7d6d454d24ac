// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhartmann/clubplan/models"
)

// QuarterPollID derives the poll id from the quarter start date, making
// "one poll per quarter" a primary-key property.
func QuarterPollID(quarterStart time.Time) string {
	return "quarter-" + quarterStart.Format("2006-01-02")
}

// DueQuarterStart returns the quarter start whose posting date (one week
// before the quarter begins) falls on today. The daily quarterly check
// calls this and posts only when ok is true.
func DueQuarterStart(today time.Time) (start time.Time, ok bool) {
	y, m, d := today.Date()
	todayDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for _, year := range []int{y, y + 1} {
		for _, month := range []time.Month{time.January, time.April, time.July, time.October} {
			qstart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
			postDate := qstart.AddDate(0, 0, -7)
			if postDate.Equal(todayDate) {
				return qstart, true
			}
		}
	}
	return time.Time{}, false
}

// ParseQuarterDays parses a comma-separated list of ISO dates from a form
// submission. Any unparseable entry aborts the whole submission with
// ErrInvalidInput and a corrective hint; no partial set is returned.
func ParseQuarterDays(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	var days []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", p)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date, use YYYY-MM-DD: %w", p, models.ErrInvalidInput)
		}
		days = append(days, d.Format("2006-01-02"))
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no dates given, use YYYY-MM-DD: %w", models.ErrInvalidInput)
	}
	return days, nil
}
