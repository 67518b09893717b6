package autoupdate

import (
	"time"

	"github.com/muurk/blegw/internal/gwcfg"
)

// InWindow reports whether t falls inside the update window of cfg. The
// weekday bitmask and the [from, to) hour range are evaluated in the
// configured timezone offset. A range with from > to wraps past midnight
// and the weekday is that of the local time being tested. The manual cycle
// never opens a window.
func InWindow(cfg gwcfg.AutoUpdateConfig, t time.Time) bool {
	if cfg.Cycle == gwcfg.AutoUpdateManual {
		return false
	}

	local := t.In(time.FixedZone("", int(cfg.TZOffsetHours)*3600))
	if cfg.WeekdaysBitmask&(1<<uint(local.Weekday())) == 0 {
		return false
	}

	h := uint8(local.Hour())
	from, to := cfg.IntervalFrom, cfg.IntervalTo
	switch {
	case from == to:
		return false
	case from < to:
		return h >= from && h < to
	default:
		return h >= from || h < to
	}
}
