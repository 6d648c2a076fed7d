package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders d with a unit suited to its magnitude:
// whole microseconds below 1ms, whole milliseconds below 1s, and
// time.Duration's own notation beyond that.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.String()
	}
}

var throughputUnits = []string{"", "k", "M", "G"}

// FormatThroughput renders the rate of cells evaluated per second, e.g.
// "12.5 Mcells/s". A non-positive d yields "n/a".
func FormatThroughput(cells int, d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	rate := float64(cells) / d.Seconds()
	unit := 0
	for rate >= 1000 && unit < len(throughputUnits)-1 {
		rate /= 1000
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%.0f cells/s", rate)
	}
	return fmt.Sprintf("%.1f %scells/s", rate, throughputUnits[unit])
}
