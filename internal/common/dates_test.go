package common

import (
	"testing"
	"time"
)

func TestFormatting(t *testing.T) {
	ts := time.Date(2026, time.October, 14, 15, 4, 0, 0, time.UTC)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"long date", FormatDate(ts), "2026年10月14日 星期三"},
		{"short date", FormatShortDate(ts), "10月14日 週三"},
		{"afternoon", FormatTime(ts), "下午03:04"},
		{"midnight", FormatTime(time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)), "上午12:05"},
		{"noon", FormatTime(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)), "下午12:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tt.got)
			}
		})
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "剛剛"},
		{5 * time.Minute, "5 分鐘前"},
		{59 * time.Minute, "59 分鐘前"},
		{3 * time.Hour, "3 小時前"},
		{50 * time.Hour, "2 天前"},
	}

	for _, tt := range tests {
		if got := TimeAgo(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("TimeAgo(-%s): expected %q, got %q", tt.ago, tt.want, got)
		}
	}
}

func TestDayLabel(t *testing.T) {
	now := time.Date(2026, 10, 14, 23, 0, 0, 0, time.UTC)

	if got := DayLabel(now.Add(-time.Hour), now); got != "今天" {
		t.Errorf("expected 今天, got %q", got)
	}
	if got := DayLabel(now.Add(2*time.Hour), now); got != "明天" {
		t.Errorf("expected 明天, got %q", got)
	}
	if got := DayLabel(now.AddDate(0, 0, 2), now); got != "10月16日 週五" {
		t.Errorf("expected short date, got %q", got)
	}
}
