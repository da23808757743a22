package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// Progress prints one line per processed key with a running bar
type Progress struct {
	Title     string
	total     int
	done      int
	counts    map[string]int
	startTime time.Time
}

// NewProgress creates a progress printer for a stage
func NewProgress(title string) *Progress {
	return &Progress{
		Title:  title,
		counts: make(map[string]int),
	}
}

// Start resets the tracker for total keys
func (p *Progress) Start(total int) {
	p.total = total
	p.done = 0
	p.counts = make(map[string]int)
	p.startTime = time.Now()
	write(false, "%s %s\n", Magenta("["+strings.ToUpper(p.Title)+"]"), Dim(fmt.Sprintf("%d keys", total)))
}

// Advance records one processed key
func (p *Progress) Advance(label string, status string) {
	p.done++
	p.counts[status]++
	write(false, "%s %s %s\n", p.Bar(), label, colorStatus(status))
}

// Finish prints the per-status totals
func (p *Progress) Finish() {
	write(false, "%s %s in %s\n", Magenta("[DONE]"), p.CountsLine(), p.Elapsed().Round(time.Millisecond))
}

// Bar renders the completed fraction
func (p *Progress) Bar() string {
	filled := 0
	if p.total > 0 {
		filled = p.done * barWidth / p.total
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, barWidth-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, p.done, p.total)
}

// CountsLine lists status totals in a stable order
func (p *Progress) CountsLine() string {
	order := []string{"fetched", "cached", "empty", "failed", "invalid"}
	parts := make([]string, 0, len(order))
	for _, status := range order {
		if n := p.counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", status, n))
		}
	}
	if len(parts) == 0 {
		return "nothing processed"
	}
	return strings.Join(parts, " ")
}

// Done returns the number of keys processed so far
func (p *Progress) Done() int {
	return p.done
}

// Elapsed returns the time since Start
func (p *Progress) Elapsed() time.Duration {
	if p.startTime.IsZero() {
		return 0
	}
	return time.Since(p.startTime)
}

func colorStatus(status string) string {
	switch status {
	case "fetched":
		return Green(status)
	case "cached", "empty":
		return Dim(status)
	case "failed", "invalid":
		return Red(status)
	default:
		return status
	}
}
