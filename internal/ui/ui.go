// Package ui renders human-facing status output with lipgloss.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Output receives all status output. Tests swap it.
var Output io.Writer = os.Stderr

var (
	colorAccent  = lipgloss.Color("#7C3AED") // violet
	colorOK      = lipgloss.Color("#10B981") // emerald
	colorFail    = lipgloss.Color("#EF4444") // red
	colorCaution = lipgloss.Color("#F59E0B") // amber
	colorNote    = lipgloss.Color("#3B82F6") // blue
	colorMuted   = lipgloss.Color("#6B7280") // gray-500
	colorKey     = lipgloss.Color("#9CA3AF") // gray-400
	colorBorder  = lipgloss.Color("#374151") // gray-700
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	cautionStyle = lipgloss.NewStyle().Foreground(colorCaution).Bold(true)
	noteStyle    = lipgloss.NewStyle().Foreground(colorNote).Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	strongStyle  = lipgloss.NewStyle().Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(colorKey).Width(12)
	titleStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).MarginBottom(1)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

const (
	glyphOK      = "✓"
	glyphFail    = "✗"
	glyphCaution = "!"
	glyphNote    = "●"
	glyphArrow   = "→"
	glyphBullet  = "•"
	glyphPackage = "◫"
	glyphGear    = "⚙"
	glyphRecycle = "♻"
)

// status writes one line: a styled glyph followed by space-separated parts.
func status(glyph string, style lipgloss.Style, parts ...string) {
	fmt.Fprintln(Output, style.Render(glyph)+" "+strings.Join(parts, " "))
}

// ----------------------------------------------------------------------------
// Messages
// ----------------------------------------------------------------------------

func Success(msg string, args ...any) { status(glyphOK, okStyle, fmt.Sprintf(msg, args...)) }
func Error(msg string, args ...any)   { status(glyphFail, failStyle, fmt.Sprintf(msg, args...)) }
func Warn(msg string, args ...any)    { status(glyphCaution, cautionStyle, fmt.Sprintf(msg, args...)) }
func Info(msg string, args ...any)    { status(glyphNote, noteStyle, fmt.Sprintf(msg, args...)) }

// Label prints an aligned key and value.
func Label(key, value string) {
	fmt.Fprintf(Output, "  %s %s\n", keyStyle.Render(key), value)
}

// Dim prints an indented muted line.
func Dim(msg string, args ...any) {
	fmt.Fprintf(Output, "  %s\n", mutedStyle.Render(fmt.Sprintf(msg, args...)))
}

func Header(title string) {
	fmt.Fprintf(Output, "\n%s\n", titleStyle.Render(title))
}

// Box prints lines inside a rounded border.
func Box(lines ...string) {
	fmt.Fprintln(Output, boxStyle.Render(strings.Join(lines, "\n")))
}

// ----------------------------------------------------------------------------
// Pipeline
// ----------------------------------------------------------------------------

// Profile prints the header of one packaging run. A counter is shown when
// several profiles run in sequence.
func Profile(idx, total int, name, options string) {
	lead := noteStyle.Render(glyphArrow)
	if total > 1 {
		lead = mutedStyle.Render(fmt.Sprintf("[%d/%d]", idx+1, total))
	}
	title := accentStyle.Render(name)
	if options != "" {
		title += " " + mutedStyle.Render(options)
	}
	fmt.Fprintf(Output, "\n%s %s\n", lead, title)
}

// Phase prints the start of a pipeline phase.
func Phase(name, detail string) {
	status(glyphBullet, noteStyle, mutedStyle.Render(name), detail)
}

func Building(target string) {
	status(glyphGear, noteStyle, mutedStyle.Render("Building"), strongStyle.Render(target))
}

// Built prints the package directory and the elapsed time.
func Built(dir string, d time.Duration) {
	status(glyphOK, okStyle, dir, mutedStyle.Render("("+FormatDuration(d)+")"))
}

func BuildFailed() {
	status(glyphFail, failStyle, "Build failed")
}

// Packaged prints the package directory and the number of curated files.
func Packaged(dir string, files int) {
	status(glyphPackage, okStyle,
		mutedStyle.Render("Packaged"),
		strongStyle.Render(dir),
		mutedStyle.Render(fmt.Sprintf("(%d files)", files)))
}

// Cleaned prints a cache removal message.
func Cleaned(name string) {
	status(glyphRecycle, okStyle, mutedStyle.Render("Removed"), name)
}

// ----------------------------------------------------------------------------
// Table
// ----------------------------------------------------------------------------

// Table collects rows and prints them as aligned columns.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func NewTable(headers ...string) *Table {
	t := &Table{headers: headers, widths: make([]int, len(headers))}
	t.grow(headers)
	return t
}

func (t *Table) AddRow(cols ...string) {
	t.grow(cols)
	t.rows = append(t.rows, cols)
}

func (t *Table) grow(cols []string) {
	for i, c := range cols {
		if i < len(t.widths) {
			t.widths[i] = max(t.widths[i], len(c))
		}
	}
}

// Render prints the header, a rule and the rows.
func (t *Table) Render() {
	rule := make([]string, len(t.widths))
	for i, w := range t.widths {
		rule[i] = strings.Repeat("─", w)
	}

	fmt.Fprintf(Output, "  %s\n", mutedStyle.Render(t.format(t.headers)))
	fmt.Fprintf(Output, "  %s\n", mutedStyle.Render(strings.Join(rule, "  ")))
	for _, row := range t.rows {
		fmt.Fprintf(Output, "  %s\n", t.format(row))
	}
}

// format pads every column except the last to its width.
func (t *Table) format(cols []string) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteString("  ")
		}
		if i < len(t.widths) && i < len(cols)-1 {
			fmt.Fprintf(&b, "%-*s", t.widths[i], c)
		} else {
			b.WriteString(c)
		}
	}
	return b.String()
}

// ----------------------------------------------------------------------------
// Formatting
// ----------------------------------------------------------------------------

// FormatSize formats bytes with binary units.
func FormatSize(b int64) string {
	units := []string{"KB", "MB", "GB"}
	if b < 1024 {
		return fmt.Sprintf("%d B", b)
	}
	v, i := float64(b)/1024, 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}

// FormatDuration prints milliseconds below one second.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
