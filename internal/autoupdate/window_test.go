package autoupdate

import (
	"testing"
	"time"

	"github.com/muurk/blegw/internal/gwcfg"
)

// 2024-01-01 was a Monday.
func utc(day, hour int) time.Time {
	return time.Date(2024, time.January, day, hour, 30, 0, 0, time.UTC)
}

func TestInWindow(t *testing.T) {
	const (
		sunday = 1 << 0
		monday = 1 << 1
		sat    = 1 << 6
	)
	everyDay := gwcfg.AutoUpdateConfig{Cycle: gwcfg.AutoUpdateRegular, WeekdaysBitmask: 0x7F, IntervalFrom: 0, IntervalTo: 24}

	with := func(mod func(*gwcfg.AutoUpdateConfig)) gwcfg.AutoUpdateConfig {
		c := everyDay
		mod(&c)
		return c
	}

	tests := []struct {
		name string
		cfg  gwcfg.AutoUpdateConfig
		at   time.Time
		want bool
	}{
		{"defaults open all day", everyDay, utc(1, 13), true},
		{"beta follows the same window", with(func(c *gwcfg.AutoUpdateConfig) { c.Cycle = gwcfg.AutoUpdateBeta }), utc(1, 13), true},
		{"manual never opens", with(func(c *gwcfg.AutoUpdateConfig) { c.Cycle = gwcfg.AutoUpdateManual }), utc(1, 13), false},
		{"weekday allowed", with(func(c *gwcfg.AutoUpdateConfig) { c.WeekdaysBitmask = monday }), utc(1, 10), true},
		{"weekday not allowed", with(func(c *gwcfg.AutoUpdateConfig) { c.WeekdaysBitmask = sunday | sat }), utc(1, 10), false},
		{"empty bitmask", with(func(c *gwcfg.AutoUpdateConfig) { c.WeekdaysBitmask = 0 }), utc(1, 10), false},
		{"hour at from", with(func(c *gwcfg.AutoUpdateConfig) { c.IntervalFrom, c.IntervalTo = 10, 12 }), utc(1, 10), true},
		{"hour at to is excluded", with(func(c *gwcfg.AutoUpdateConfig) { c.IntervalFrom, c.IntervalTo = 10, 12 }), utc(1, 12), false},
		{"hour before from", with(func(c *gwcfg.AutoUpdateConfig) { c.IntervalFrom, c.IntervalTo = 10, 12 }), utc(1, 9), false},
		{"empty range", with(func(c *gwcfg.AutoUpdateConfig) { c.IntervalFrom, c.IntervalTo = 5, 5 }), utc(1, 5), false},
		{"wrapping range late", with(func(c *gwcfg.AutoUpdateConfig) { c.IntervalFrom, c.IntervalTo = 22, 4 }), utc(1, 23), true},
		{"wrapping range early", with(func(c *gwcfg.AutoUpdateConfig) { c.IntervalFrom, c.IntervalTo = 22, 4 }), utc(1, 3), true},
		{"wrapping range outside", with(func(c *gwcfg.AutoUpdateConfig) { c.IntervalFrom, c.IntervalTo = 22, 4 }), utc(1, 12), false},
		{"tz offset opens the window", with(func(c *gwcfg.AutoUpdateConfig) {
			// 23:30 UTC is 02:30 at +3.
			c.IntervalFrom, c.IntervalTo, c.TZOffsetHours = 1, 3, 3
		}), utc(1, 23), true},
		{"same range without offset", with(func(c *gwcfg.AutoUpdateConfig) {
			c.IntervalFrom, c.IntervalTo = 1, 3
		}), utc(1, 23), false},
		{"tz offset moves the weekday", with(func(c *gwcfg.AutoUpdateConfig) {
			// 23:30 UTC Sunday is 01:30 Monday at +2.
			c.WeekdaysBitmask, c.TZOffsetHours = monday, 2
		}), time.Date(2023, time.December, 31, 23, 30, 0, 0, time.UTC), true},
		{"negative tz offset", with(func(c *gwcfg.AutoUpdateConfig) {
			// 01:30 UTC Monday is 20:30 Sunday at -5.
			c.WeekdaysBitmask, c.TZOffsetHours = sunday, -5
		}), utc(1, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InWindow(tt.cfg, tt.at); got != tt.want {
				t.Errorf("InWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}
