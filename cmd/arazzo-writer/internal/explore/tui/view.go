package tui

import (
	"fmt"
	"strings"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/internal/explore"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the application header with navigation
func (m Model) renderHeader() string {
	appTitle := TitleStyle.Render(m.config.Title)
	navSection := ActiveButtonStyle.Render(m.config.ModeLabel)

	navWidth := lipgloss.Width(navSection)
	titleWidth := lipgloss.Width(appTitle)
	totalContentWidth := navWidth + titleWidth

	var headerLine string
	if m.width > totalContentWidth+4 {
		spacing := strings.Repeat(" ", m.width-totalContentWidth)
		headerLine = navSection + spacing + appTitle
	} else {
		// If not enough space, just show navigation
		headerLine = navSection
	}

	return headerLine + "\n\n"
}

// renderFooter renders the application footer with help text and document info
func (m Model) renderFooter() string {
	helpText := m.config.FooterHelpText
	statusInfo := fmt.Sprintf("%s v%s · %d steps", m.docTitle, m.docVersion, len(m.steps))

	// FooterStyle has Padding(0, 1) which adds 2 chars total
	contentWidth := m.width - 2

	helpTextLen := lipgloss.Width(helpText)
	statusInfoLen := lipgloss.Width(statusInfo)

	var footerContent string
	if helpTextLen+statusInfoLen >= contentWidth {
		// Not enough space for both - prioritize status
		spacing := strings.Repeat(" ", max(0, contentWidth-statusInfoLen))
		footerContent = spacing + statusInfo
	} else {
		spacing := strings.Repeat(" ", contentWidth-helpTextLen-statusInfoLen)
		footerContent = helpText + spacing + statusInfo
	}

	footerStyle := FooterStyle.
		Width(m.width).
		Align(lipgloss.Left)

	return "\n" + footerStyle.Render(footerContent)
}

// renderSteps renders the list of steps grouped by workflow
func (m Model) renderSteps() string {
	var s strings.Builder

	contentHeight := m.calculateContentHeight()
	contentWidth := m.calculateContentWidth()

	startIdx := m.scrollOffset
	endIdx := min(m.scrollOffset+contentHeight, len(m.steps))

	if m.scrollOffset > 0 {
		s.WriteString(ScrollIndicatorStyle.Render("⬆ More items above..."))
		s.WriteString("\n")
	}

	for i := startIdx; i < endIdx; i++ {
		step := m.steps[i]
		highlighted := i == m.cursor

		if m.isWorkflowStart(i) {
			heading := step.WorkflowID
			if step.WorkflowSummary != "" {
				heading += " - " + step.WorkflowSummary
			}
			s.WriteString(WorkflowStyle.Render(heading))
			s.WriteString("\n")
		}

		style := lipgloss.NewStyle()
		if highlighted {
			style = GetHighlightStyle()
		}

		foldIcon := "▶"
		if !step.Folded {
			foldIcon = "▼"
		}

		var line strings.Builder
		line.WriteString(style.Render(foldIcon + " "))
		line.WriteString(GetKindStyle(step.Kind, highlighted).Render(GetKindLabel(step.Kind)))
		line.WriteString(style.Render(fmt.Sprintf(" %d. %s → %s", step.Position, step.StepID, step.Target)))
		if summary := step.GetDisplaySummary(); summary != "" && step.Folded {
			line.WriteString(style.Render("  " + summary))
		}
		line.WriteString(style.Render(strings.Repeat(" ", contentWidth)))

		s.WriteString(style.Render(line.String()))
		s.WriteString("\n")

		if !step.Folded {
			s.WriteString(DetailStyle.Render(m.formatStepDetails(step)))
			s.WriteString("\n")
		}
	}

	if endIdx < len(m.steps) {
		s.WriteString(ScrollIndicatorStyle.Render("⬇ More items below..."))
		s.WriteString("\n")
	}

	return s.String()
}

// formatStepDetails formats the detailed information for a step
func (m Model) formatStepDetails(step explore.StepInfo) string {
	var details strings.Builder

	if step.Description != "" {
		details.WriteString(fmt.Sprintf("Description: %s\n", step.Description))
	}

	details.WriteString(fmt.Sprintf("Target (%s): %s\n", step.Kind, step.Target))

	writeSection(&details, "Parameters", step.Parameters)
	writeSection(&details, "Success Criteria", step.SuccessCriteria)
	writeSection(&details, "On Success", step.OnSuccess)
	writeSection(&details, "On Failure", step.OnFailure)
	writeSection(&details, "Outputs", step.Outputs)

	return details.String()
}

func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString(title + ":\n")
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  - %s\n", l))
	}
}

// renderHelpModal renders the help modal overlay
func (m Model) renderHelpModal() string {
	helpData := [][]string{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"gg", "Move to the top"},
		{"G", "Move to the bottom"},
		{"[ / ]", "Previous / next workflow"},
		{"Ctrl-U", "Scroll up by half a screen"},
		{"Ctrl-D", "Scroll down by half a screen"},
		{"Enter/Space", "Toggle details"},
		{"?", "Toggle help"},
		{"Esc/q", "Close help"},
		{"Ctrl+C", "Quit"},
	}

	maxKeyWidth := 0
	for _, row := range helpData {
		maxKeyWidth = max(maxKeyWidth, len(row[0]))
	}

	var helpItems []string
	for _, row := range helpData {
		key := HelpKeyStyle.Render(fmt.Sprintf("%-*s", maxKeyWidth, row[0]))
		desc := HelpTextStyle.Render(" " + row[1])
		helpItems = append(helpItems, key+desc)
	}

	title := HelpTitleStyle.Render(m.config.HelpTitle)
	modal := HelpModalStyle.Render(title + "\n\n" + strings.Join(helpItems, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
