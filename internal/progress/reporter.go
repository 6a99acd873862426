// Package progress is the textual status channel for a generation run:
// attempt counters, rate-limit cooldown countdowns, and per-unit
// completion or failure summaries.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Reporter receives human-readable status updates from the orchestration.
type Reporter interface {
	// Attempt announces attempt n of max for the labeled request.
	Attempt(label string, attempt, max int)
	// Cooldown is emitted once per second while waiting out a rate limit.
	Cooldown(label string, remaining time.Duration)
	// UnitDone reports a completed unit of work with a short summary.
	UnitDone(label, summary string)
	// UnitFailed reports a unit of work that was abandoned.
	UnitFailed(label string, err error)
	// Info carries anything that fits no other shape.
	Info(format string, args ...any)
}

// Console writes styled status lines to a terminal.
type Console struct {
	out io.Writer

	labelStyle lipgloss.Style
	waitStyle  lipgloss.Style
	doneStyle  lipgloss.Style
	failStyle  lipgloss.Style
}

// NewConsole returns a Reporter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{
		out:        w,
		labelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		waitStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		doneStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		failStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

func (c *Console) Attempt(label string, attempt, max int) {
	fmt.Fprintf(c.out, "%s attempt %d/%d\n", c.labelStyle.Render(label), attempt, max)
}

func (c *Console) Cooldown(label string, remaining time.Duration) {
	fmt.Fprintf(c.out, "%s %s\n", c.labelStyle.Render(label),
		c.waitStyle.Render(fmt.Sprintf("rate limited, resuming in %ds", int(remaining.Seconds()))))
}

func (c *Console) UnitDone(label, summary string) {
	fmt.Fprintf(c.out, "%s %s\n", c.doneStyle.Render("✓ "+label), summary)
}

func (c *Console) UnitFailed(label string, err error) {
	fmt.Fprintf(c.out, "%s %v\n", c.failStyle.Render("✗ "+label), err)
}

func (c *Console) Info(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Nop discards all updates. Useful in tests.
type Nop struct{}

func (Nop) Attempt(string, int, int)        {}
func (Nop) Cooldown(string, time.Duration)  {}
func (Nop) UnitDone(string, string)         {}
func (Nop) UnitFailed(string, error)        {}
func (Nop) Info(string, ...any)             {}
