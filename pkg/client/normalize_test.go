package client

import (
	"testing"
	"time"
)

func sampleAt(t time.Time, min, max float64) ForecastSample {
	s := ForecastSample{Dt: t.Unix()}
	s.Main.TempMin = min
	s.Main.TempMax = max
	s.Weather = []weatherCondition{{Description: t.Format("15:04"), Icon: "01d"}}
	return s
}

// threeHourly returns n samples spaced three hours apart starting at start.
func threeHourly(start time.Time, n int) []ForecastSample {
	samples := make([]ForecastSample, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * 3 * time.Hour)
		samples = append(samples, sampleAt(ts, float64(i), float64(i+10)))
	}
	return samples
}

func TestBucketDaysDefaults(t *testing.T) {
	samples := threeHourly(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), 40)

	days := BucketDays(samples, 0, time.UTC)
	if len(days) != DefaultForecastDays {
		t.Fatalf("expected %d days, got %d", DefaultForecastDays, len(days))
	}

	seen := map[string]bool{}
	for i, d := range days {
		key := d.Date.Format("2006-01-02")
		if seen[key] {
			t.Errorf("date %s emitted twice", key)
		}
		seen[key] = true

		if i > 0 && !d.Date.After(days[i-1].Date) {
			t.Errorf("expected ascending dates, got %s after %s", d.Date, days[i-1].Date)
		}
	}
}

func TestBucketDaysKeepsFirstSample(t *testing.T) {
	start := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	samples := threeHourly(start, 8)

	days := BucketDays(samples, 5, time.UTC)
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Description != "12:00" || days[0].Temperature.Min != 0 || days[0].Temperature.Max != 10 {
		t.Errorf("expected the 12:00 sample for day one, got %+v", days[0])
	}
	if days[1].Description != "00:00" || days[1].Temperature.Min != 4 {
		t.Errorf("expected the midnight sample for day two, got %+v", days[1])
	}
}

func TestBucketDaysCap(t *testing.T) {
	samples := threeHourly(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), 40)

	for _, n := range []int{1, 3, 5} {
		if got := len(BucketDays(samples, n, time.UTC)); got != n {
			t.Errorf("days=%d: got %d entries", n, got)
		}
	}
	if got := len(BucketDays(samples[:4], 5, time.UTC)); got != 1 {
		t.Errorf("expected short feed to yield 1 day, got %d", got)
	}
	if got := BucketDays(nil, 5, time.UTC); len(got) != 0 {
		t.Errorf("expected empty result for empty feed, got %d", len(got))
	}
}

func TestBucketDaysUsesLocation(t *testing.T) {
	taipei := time.FixedZone("CST", 8*3600)
	// 20:00 and 23:00 UTC on the 14th fall on the 15th in UTC+8.
	samples := []ForecastSample{
		sampleAt(time.Date(2026, 10, 14, 14, 0, 0, 0, time.UTC), 1, 2),
		sampleAt(time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC), 3, 4),
		sampleAt(time.Date(2026, 10, 14, 23, 0, 0, 0, time.UTC), 5, 6),
	}

	if got := len(BucketDays(samples, 5, time.UTC)); got != 1 {
		t.Errorf("expected 1 UTC day, got %d", got)
	}

	local := BucketDays(samples, 5, taipei)
	if len(local) != 2 {
		t.Fatalf("expected 2 days in UTC+8, got %d", len(local))
	}
	if local[1].Date.Format("2006-01-02") != "2026-10-15" {
		t.Errorf("expected second day 2026-10-15, got %s", local[1].Date.Format("2006-01-02"))
	}
}

func TestBucketDaysPop(t *testing.T) {
	s := sampleAt(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), 0, 0)
	s.Pop = 0.47

	days := BucketDays([]ForecastSample{s}, 1, time.UTC)
	if days[0].Pop != 47 {
		t.Errorf("expected pop 47, got %d", days[0].Pop)
	}
}
