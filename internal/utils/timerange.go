package utils

import (
	"fmt"
	"time"
)

// Named date ranges accepted by the P&L and trade endpoints.
const (
	RangeToday     = "today"
	RangeYesterday = "yesterday"
	Range7Days     = "7days"
	Range30Days    = "30days"
)

// ResolveTimeRange turns a named range, or an explicit from/to pair, into a
// concrete [start, end] interval in the local timezone. Named ranges win over
// from/to when both are present. End timestamps are inclusive at millisecond
// precision (23:59:59.999) so they match rows written with ms timestamps.
func ResolveTimeRange(name, from, to string, now time.Time) (time.Time, time.Time, error) {
	if name != "" {
		return resolveNamedRange(name, now)
	}

	if from == "" && to == "" {
		// Default window: last 30 days.
		return resolveNamedRange(Range30Days, now)
	}

	start, err := parseDateParam(from, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from: %w", err)
	}

	end := now
	if to != "" {
		end, err = parseDateParam(to, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to: %w", err)
		}
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must not precede from")
	}

	return start, end, nil
}

func resolveNamedRange(name string, now time.Time) (time.Time, time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch name {
	case RangeToday:
		return midnight, endOfDay(midnight), nil
	case RangeYesterday:
		start := midnight.AddDate(0, 0, -1)
		return start, endOfDay(start), nil
	case Range7Days:
		return midnight.AddDate(0, 0, -6), endOfDay(midnight), nil
	case Range30Days:
		return midnight.AddDate(0, 0, -29), endOfDay(midnight), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown range %q", name)
	}
}

// endOfDay returns the last representable millisecond of the day that starts
// at midnight.
func endOfDay(midnight time.Time) time.Time {
	return midnight.AddDate(0, 0, 1).Add(-time.Millisecond)
}

func parseDateParam(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}
