package common

import (
	"fmt"
	"time"
)

var (
	longWeekdays  = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}
	shortWeekdays = [...]string{"週日", "週一", "週二", "週三", "週四", "週五", "週六"}
)

// FormatDate renders t in zh-TW long form, e.g. "2026年10月14日 星期三".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日 %s", t.Year(), int(t.Month()), t.Day(), longWeekdays[t.Weekday()])
}

// FormatShortDate renders t as e.g. "10月14日 週三".
func FormatShortDate(t time.Time) string {
	return fmt.Sprintf("%d月%d日 %s", int(t.Month()), t.Day(), shortWeekdays[t.Weekday()])
}

// FormatTime renders t on a 12-hour clock with a 上午/下午 prefix, e.g. "下午03:04".
func FormatTime(t time.Time) string {
	period := "上午"
	if t.Hour() >= 12 {
		period = "下午"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s%02d:%02d", period, hour, t.Minute())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsToday compares calendar dates in now's location.
func IsToday(t, now time.Time) bool {
	return sameDay(t.In(now.Location()), now)
}

func IsTomorrow(t, now time.Time) bool {
	return sameDay(t.In(now.Location()), now.AddDate(0, 0, 1))
}

// TimeAgo describes how long before now t happened.
func TimeAgo(t, now time.Time) string {
	mins := int(now.Sub(t).Minutes())
	if mins < 1 {
		return "剛剛"
	}
	if mins < 60 {
		return fmt.Sprintf("%d 分鐘前", mins)
	}
	hours := mins / 60
	if hours < 24 {
		return fmt.Sprintf("%d 小時前", hours)
	}
	return fmt.Sprintf("%d 天前", hours/24)
}

// DayLabel is the heading a forecast card shows for t.
func DayLabel(t, now time.Time) string {
	switch {
	case IsToday(t, now):
		return "今天"
	case IsTomorrow(t, now):
		return "明天"
	default:
		return FormatShortDate(t)
	}
}
