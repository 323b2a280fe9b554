package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ActiveHours is a wall-clock polling window like "12:00-02:00". An end
// earlier than the start wraps past midnight. The zero value is always
// active.
type ActiveHours struct {
	start time.Duration
	end   time.Duration
	set   bool
	loc   *time.Location
}

func ParseActiveHours(value string, loc *time.Location) (ActiveHours, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ActiveHours{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return ActiveHours{}, fmt.Errorf("%w: active hours %q must be HH:MM-HH:MM", ErrInvalidInput, value)
	}

	start, err := parseClock(parts[0])
	if err != nil {
		return ActiveHours{}, fmt.Errorf("parse active hours start: %w", err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return ActiveHours{}, fmt.Errorf("parse active hours end: %w", err)
	}

	return ActiveHours{start: start, end: end, set: true, loc: loc}, nil
}

// Contains reports whether t falls inside the window. The start is
// inclusive and the end exclusive, so "12:00-02:00" covers noon through
// 01:59 the next morning.
func (h ActiveHours) Contains(t time.Time) bool {
	if !h.set {
		return true
	}

	local := t.In(h.loc)
	minute := time.Duration(local.Hour())*time.Hour + time.Duration(local.Minute())*time.Minute

	if h.start == h.end {
		return true
	}
	if h.start < h.end {
		return minute >= h.start && minute < h.end
	}
	return minute >= h.start || minute < h.end
}

func parseClock(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: clock %q must be HH:MM", ErrInvalidInput, value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: clock hour %q out of range", ErrInvalidInput, parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: clock minute %q out of range", ErrInvalidInput, parts[1])
	}

	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}
