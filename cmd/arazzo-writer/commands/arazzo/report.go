package arazzo

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/validator"
	"github.com/charmbracelet/lipgloss"
)

// OutputFormat selects how validate reports results.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

func parseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatText, OutputFormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q, expected text or json", s)
	}
}

const (
	colorGreen  = "#10B981"
	colorYellow = "#F59E0B"
	colorRed    = "#EF4444"
	colorGray   = "#6B7280"
)

var (
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow))
	stageStyle   = lipgloss.NewStyle().Width(10)
)

func statusStyle(s validator.Status) lipgloss.Style {
	switch s {
	case validator.StatusPassed:
		return passedStyle
	case validator.StatusFailed:
		return failedStyle
	default:
		return skippedStyle
	}
}

// formatResult renders one result the way validate prints it in text mode.
func formatResult(r *validator.Result) string {
	var sb strings.Builder

	if r.Err != nil {
		fmt.Fprintf(&sb, "❌ %s could not be validated: %v\n", r.Path, r.Err)
		return sb.String()
	}

	findings := r.Findings()
	errorCount := validation.CountBySeverity(findings, validation.SeverityError)
	warningCount := validation.CountBySeverity(findings, validation.SeverityWarning)

	summary := fmt.Sprintf("%d errors", errorCount)
	if warningCount > 0 {
		summary += fmt.Sprintf(", %d warnings", warningCount)
	}

	if r.Passed() {
		fmt.Fprintf(&sb, "✅ %s is valid - %s\n", r.Path, summary)
	} else {
		fmt.Fprintf(&sb, "❌ %s is invalid - %s:\n", r.Path, summary)
	}

	for _, s := range r.Stages {
		line := "  " + stageStyle.Render(string(s.Stage)) + statusStyle(s.Status).Render(string(s.Status))
		switch {
		case s.Status == validator.StatusSkipped && s.Reason != "":
			line += skippedStyle.Render(" (" + s.Reason + ")")
		case s.Status != validator.StatusSkipped:
			line += skippedStyle.Render(" " + roundDuration(s.Duration).String())
		}
		sb.WriteString(line + "\n")
	}

	if len(findings) > 0 {
		sb.WriteString("\n")
		indexWidth := len(strconv.Itoa(len(findings)))
		for i, f := range findings {
			line := fmt.Sprintf("%*d. %s", indexWidth, i+1, f.Error())
			if severityOf(f) != validation.SeverityError {
				line = warningStyle.Render(line)
			}
			sb.WriteString(line + "\n")
		}
	}

	if external, ok := r.Stage(validator.StageExternal); ok && external.Status == validator.StatusFailed && external.Output != "" {
		sb.WriteString("\nexternal validator output:\n")
		sb.WriteString(indent(strings.TrimRight(external.Output, "\n")+"\n", "  "))
	}

	return sb.String()
}

func severityOf(err error) validation.Severity {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return vErr.Severity
	}
	return validation.SeverityError
}

func roundDuration(d time.Duration) time.Duration {
	rounded := d.Round(time.Millisecond)
	if rounded < time.Millisecond {
		rounded = time.Millisecond
	}
	return rounded
}

// writeReport prints results in the requested format. Text goes to stderr next to the progress messages; JSON goes to stdout so it can be piped.
func writeReport(stdout, stderr io.Writer, format OutputFormat, results []*validator.Result) error {
	if format == OutputFormatJSON {
		if results == nil {
			results = []*validator.Result{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(stderr)
		}
		fmt.Fprint(stderr, formatResult(r))
	}
	return nil
}
