package render

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	headerStyle  = color.New(color.FgCyan, color.Bold)
	successStyle = color.New(color.FgGreen)
	failStyle    = color.New(color.FgRed)
	warnStyle    = color.New(color.FgYellow)
	infoStyle    = color.New(color.FgBlue)
	faintStyle   = color.New(color.Faint)
	nameStyle    = color.New(color.Bold, color.FgHiWhite)

	titleCaser = cases.Title(language.English)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return warnStyle.Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	// Extract just the error message part (after the last colon if it's an error chain)
	parts := strings.Split(message, ": ")
	msg := parts[len(parts)-1]

	// Capitalize first letter
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return failStyle.Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return successStyle.Sprintf("✅ %s", message)
}

// kindTitle turns "time_travel" into "Time Travel"
func kindTitle(kind string) string {
	return titleCaser.String(strings.ReplaceAll(kind, "_", " "))
}

// formatDuration rounds durations for display
func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

// getRelativePath returns the relative path from current directory
func getRelativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}

	relPath, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}

	return relPath
}

// newTable returns a borderless table in the style used across catapult
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box = table.BoxStyle{
		PaddingLeft:      "  ",
		PaddingRight:     " ",
		MiddleHorizontal: "─",
	}
	t.Style().Format.Header = text.FormatDefault
	return t
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
