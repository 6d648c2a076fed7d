package format

import (
	"fmt"
	"strings"
	"time"
)

// maxETA caps estimates produced from very slow early progress.
const maxETA = 24 * time.Hour

// ProgressState tracks the completion fraction of several strategies running
// concurrently. It is not safe for concurrent use; a single goroutine drains
// the progress channel and owns it.
type ProgressState struct {
	numStrategies int
	progresses    []float64
}

// NewProgressState returns a ProgressState for numStrategies strategies.
func NewProgressState(numStrategies int) *ProgressState {
	return &ProgressState{
		numStrategies: numStrategies,
		progresses:    make([]float64, numStrategies),
	}
}

// Update records value for the strategy at index. Out-of-range indices are
// ignored and values are clamped to [0, 1].
func (ps *ProgressState) Update(index int, value float64) {
	if index < 0 || index >= len(ps.progresses) {
		return
	}
	ps.progresses[index] = min(max(value, 0), 1)
}

// CalculateAverage returns the mean completion over all strategies.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numStrategies == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numStrategies)
}

// ProgressWithETA adds a remaining-time estimate to ProgressState, derived
// from the average completion rate since creation.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	progressRate float64 // fraction per second
}

// NewProgressWithETA returns a ProgressWithETA started now.
func NewProgressWithETA(numStrategies int) *ProgressWithETA {
	return &ProgressWithETA{
		ProgressState: NewProgressState(numStrategies),
		startTime:     time.Now(),
	}
}

// UpdateWithETA records value for index and returns the new average and the
// estimated remaining time.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)
	avg := p.CalculateAverage()
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 && avg > 0 {
		p.progressRate = avg / elapsed
	}
	return avg, p.GetETA()
}

// GetETA returns the estimated remaining time, or 0 while unknown.
func (p *ProgressWithETA) GetETA() time.Duration {
	avg := p.CalculateAverage()
	if p.progressRate <= 0 || avg >= 1 {
		return 0
	}
	eta := time.Duration((1 - avg) / p.progressRate * float64(time.Second))
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

// FormatETA renders an estimate compactly ("45s", "2m30s", "1h15m").
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m, s := int(eta.Minutes()), int(eta.Seconds())%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h, m := int(eta.Hours()), int(eta.Minutes())%60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ProgressBar draws a bar of length cells for progress in [0, 1].
func ProgressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar] 42.00% ETA: 3s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %6.2f%% ETA: %s", ProgressBar(progress, width), progress*100, FormatETA(eta))
}

// FormatNumberString inserts thousands separators into a decimal string.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(n + n/3)
	head := n % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// FormatInt is FormatNumberString for integers.
func FormatInt(n int) string {
	return FormatNumberString(fmt.Sprint(n))
}

// FormatBytes renders a byte count with a binary unit ("1.5 MiB").
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
