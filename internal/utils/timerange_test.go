package utils

import (
	"testing"
	"time"
)

func TestResolveNamedRanges(t *testing.T) {
	loc := time.FixedZone("TEST", 3*3600)
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, loc)

	tests := []struct {
		name      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      RangeToday,
			wantStart: time.Date(2024, 3, 15, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 15, 23, 59, 59, 999000000, loc),
		},
		{
			name:      RangeYesterday,
			wantStart: time.Date(2024, 3, 14, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 14, 23, 59, 59, 999000000, loc),
		},
		{
			name:      Range7Days,
			wantStart: time.Date(2024, 3, 9, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 15, 23, 59, 59, 999000000, loc),
		},
		{
			name:      Range30Days,
			wantStart: time.Date(2024, 2, 15, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2024, 3, 15, 23, 59, 59, 999000000, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ResolveTimeRange(tt.name, "", "", now)
			if err != nil {
				t.Fatalf("ResolveTimeRange returned error: %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestResolveTimeRangeDefault(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	start, end, err := ResolveTimeRange("", "", "", now)
	if err != nil {
		t.Fatalf("ResolveTimeRange returned error: %v", err)
	}
	if want := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("default start = %v, want %v", start, want)
	}
	if end.Before(now) {
		t.Error("default end should cover the current day")
	}
}

func TestResolveTimeRangeExplicitDates(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	start, end, err := ResolveTimeRange("", "2024-03-01", "2024-03-10", now)
	if err != nil {
		t.Fatalf("ResolveTimeRange returned error: %v", err)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	if want := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}
}

func TestResolveTimeRangeNamedWinsOverExplicit(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	start, _, err := ResolveTimeRange(RangeToday, "2020-01-01", "2020-01-02", now)
	if err != nil {
		t.Fatalf("ResolveTimeRange returned error: %v", err)
	}
	if want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("named range should win, start = %v, want %v", start, want)
	}
}

func TestResolveTimeRangeErrors(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	if _, _, err := ResolveTimeRange("fortnight", "", "", now); err == nil {
		t.Error("unknown named range must fail")
	}
	if _, _, err := ResolveTimeRange("", "not-a-date", "", now); err == nil {
		t.Error("malformed from must fail")
	}
	if _, _, err := ResolveTimeRange("", "2024-03-10", "2024-03-01", now); err == nil {
		t.Error("inverted interval must fail")
	}
}

func TestResolveTimeRangeOpenEnded(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	_, end, err := ResolveTimeRange("", "2024-03-01", "", now)
	if err != nil {
		t.Fatalf("ResolveTimeRange returned error: %v", err)
	}
	if !end.Equal(now) {
		t.Errorf("open-ended range should end now, got %v", end)
	}
}
