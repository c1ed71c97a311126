package booking

import (
	"math"
	"strings"
	"time"
)

// ParseTimestamp parses an ISO-8601 timestamp (RFC 3339, fractional seconds allowed) or a
// bare calendar date.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// calendarDate drops the time of day, keeping the day as written in the value's own offset.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateEvent returns every problem with the event's fields. An empty slice means valid.
// Start and end dates compare as calendar dates; start and end times compare as instants.
func ValidateEvent(e Event) []string {
	var errs []string
	required := []struct {
		name  string
		value string
	}{
		{"title", e.Title},
		{"location", e.Location},
		{"type", e.Type},
		{"food", e.Food},
		{"drinks", e.Drinks},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, f.name+" is required")
		}
	}
	if e.Capacity <= 0 {
		errs = append(errs, "capacity must be a positive number")
	}
	if !validCost(e.Cost) {
		errs = append(errs, "cost must be a positive number")
	}
	return append(errs, validateSchedule(e)...)
}

func validateSchedule(e Event) []string {
	var errs []string
	parse := func(name, v string) (time.Time, bool) {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, name+" is required")
			return time.Time{}, false
		}
		t, err := ParseTimestamp(v)
		if err != nil {
			errs = append(errs, name+" must be an ISO-8601 timestamp")
			return time.Time{}, false
		}
		return t, true
	}
	startDate, okSD := parse("start_date", e.StartDate)
	endDate, okED := parse("end_date", e.EndDate)
	startTime, okST := parse("start_time", e.StartTime)
	endTime, okET := parse("end_time", e.EndTime)
	if okSD && okED && calendarDate(startDate).After(calendarDate(endDate)) {
		errs = append(errs, "start_date must not be later than end_date")
	}
	if okST && okET && startTime.After(endTime) {
		errs = append(errs, "start_time must not be later than end_time")
	}
	return errs
}

func validCost(cost float64) bool {
	return !math.IsNaN(cost) && !math.IsInf(cost, 0) && cost > 0
}
