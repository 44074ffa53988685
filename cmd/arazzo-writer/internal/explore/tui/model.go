package tui

import (
	"strings"
	"time"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/internal/explore"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	// keySequenceThreshold is the max time between key presses for sequences like "gg"
	keySequenceThreshold = 500 * time.Millisecond

	// scrollHalfScreenLines is the number of lines to scroll with Ctrl-D
	scrollHalfScreenLines = 21

	// Layout constants
	headerApproxLines = 2 // Single line header + one empty line
	footerApproxLines = 4
	layoutBuffer      = 2
	leftPaddingChars  = 2 // "▶" + space
)

// Config contains all configuration for the TUI
type Config struct {
	// Title is the main title shown in the header
	Title string
	// ModeLabel is the label shown in the navigation section
	ModeLabel string
	// FooterHelpText is the help text shown in the footer
	FooterHelpText string
	// HelpTitle is the title for the help modal
	HelpTitle string
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Title:          "Arazzo Workflow Explorer",
		ModeLabel:      "Steps",
		FooterHelpText: "Press '?' for help",
		HelpTitle:      "Help",
	}
}

// Model represents the TUI application state
type Model struct {
	// Data
	steps      []explore.StepInfo
	docTitle   string
	docVersion string

	config Config

	// UI state
	cursor       int
	width        int
	height       int
	scrollOffset int
	showHelp     bool

	// Key sequence handling
	lastKey   string
	lastKeyAt time.Time

	quitting bool
}

// NewModel creates a new TUI model with the default configuration
func NewModel(steps []explore.StepInfo, docTitle, docVersion string) Model {
	return NewModelWithConfig(steps, docTitle, docVersion, DefaultConfig())
}

// NewModelWithConfig creates a new TUI model with custom configuration
func NewModelWithConfig(steps []explore.StepInfo, docTitle, docVersion string, config Config) Model {
	return Model{
		steps:      steps,
		docTitle:   docTitle,
		docVersion: docVersion,
		config:     config,
		width:      80,
		height:     24,
	}
}

// Cursor returns the index of the highlighted step
func (m Model) Cursor() int {
	return m.cursor
}

// Steps returns the steps with their current fold state
func (m Model) Steps() []explore.StepInfo {
	return m.steps
}

// Quitting reports whether the user asked to leave the explorer
func (m Model) Quitting() bool {
	return m.quitting
}

// Init initializes the model (required by bubbletea)
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model (required by bubbletea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.showHelp {
				m.showHelp = false
			} else {
				m.quitting = true
				return m, tea.Quit
			}

		case "?":
			m.showHelp = !m.showHelp

		case "esc":
			if m.showHelp {
				m.showHelp = false
			}

		case "up", "k":
			if !m.showHelp && m.cursor > 0 {
				m.cursor--
				m.ensureCursorVisible()
			}

		case "down", "j":
			if !m.showHelp && m.cursor < len(m.steps)-1 {
				m.cursor++
				m.ensureCursorVisible()
			}

		case "ctrl+d":
			if !m.showHelp && len(m.steps) > 0 {
				m.cursor = min(m.cursor+scrollHalfScreenLines, len(m.steps)-1)
				m.ensureCursorVisible()
			}

		case "ctrl+u":
			if !m.showHelp {
				halfLines := max(1, m.calculateContentHeight()/2)
				m.cursor = max(0, m.cursor-halfLines)
				m.ensureCursorVisible()
			}

		case "]":
			if !m.showHelp {
				m.cursor = m.nextWorkflowStart()
				m.ensureCursorVisible()
			}

		case "[":
			if !m.showHelp {
				m.cursor = m.previousWorkflowStart()
				m.ensureCursorVisible()
			}

		case "G":
			if !m.showHelp && len(m.steps) > 0 {
				m.cursor = len(m.steps) - 1
				m.ensureCursorVisible()
			}

		case "g":
			now := time.Now()
			if m.lastKey == "g" && now.Sub(m.lastKeyAt) < keySequenceThreshold {
				if !m.showHelp {
					m.cursor = 0
					m.ensureCursorVisible()
				}

				// Reset so "ggg" wouldn't be triggered
				m.lastKey = ""
				m.lastKeyAt = time.Time{}
			} else {
				m.lastKey = "g"
				m.lastKeyAt = now
			}

		case " ", "enter":
			if !m.showHelp && m.cursor < len(m.steps) {
				m.steps[m.cursor].Folded = !m.steps[m.cursor].Folded
				m.ensureCursorVisible()
			}
		}
	}

	return m, nil
}

// View renders the current state (required by bubbletea)
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelpModal()
	}

	var s strings.Builder

	header := m.renderHeader()
	footer := m.renderFooter()
	content := m.renderSteps()

	headerLines := strings.Count(header, "\n")
	footerLines := strings.Count(footer, "\n")
	contentLines := strings.Count(content, "\n")

	s.WriteString(header)
	s.WriteString(content)

	// Add padding to fill remaining space
	usedLines := headerLines + contentLines + footerLines
	remainingLines := m.height - usedLines - 1
	if remainingLines > 0 {
		s.WriteString(strings.Repeat("\n", remainingLines))
	}

	s.WriteString(footer)

	return s.String()
}

// nextWorkflowStart returns the index of the first step of the following workflow,
// or the current cursor when already in the last workflow
func (m Model) nextWorkflowStart() int {
	if m.cursor >= len(m.steps) {
		return m.cursor
	}
	current := m.steps[m.cursor].WorkflowID
	for i := m.cursor + 1; i < len(m.steps); i++ {
		if m.steps[i].WorkflowID != current {
			return i
		}
	}
	return m.cursor
}

// previousWorkflowStart returns the index of the first step of the current workflow,
// or of the preceding workflow when the cursor is already on a first step
func (m Model) previousWorkflowStart() int {
	if m.cursor == 0 || m.cursor >= len(m.steps) {
		return 0
	}
	i := m.cursor
	if m.steps[i-1].WorkflowID != m.steps[i].WorkflowID {
		i--
	}
	for i > 0 && m.steps[i-1].WorkflowID == m.steps[i].WorkflowID {
		i--
	}
	return i
}

// isWorkflowStart reports whether the step at index opens a new workflow group
func (m Model) isWorkflowStart(index int) bool {
	return index == 0 || m.steps[index-1].WorkflowID != m.steps[index].WorkflowID
}

// calculateContentHeight returns the available height for content
func (m Model) calculateContentHeight() int {
	return max(1, m.height-headerApproxLines-footerApproxLines-layoutBuffer)
}

// calculateContentWidth returns the available width for content
func (m Model) calculateContentWidth() int {
	return max(1, m.width-leftPaddingChars)
}

// getItemHeight returns the height in lines of an item at the given index
func (m Model) getItemHeight(index int) int {
	if index >= len(m.steps) {
		return 1
	}

	height := 1
	if m.isWorkflowStart(index) {
		height++
	}

	step := m.steps[index]
	if step.Folded {
		return height
	}

	details := m.formatStepDetails(step)
	return height + strings.Count(details, "\n") + 1
}

// ensureCursorVisible adjusts scrollOffset to keep cursor visible
func (m *Model) ensureCursorVisible() {
	contentHeight := m.calculateContentHeight()

	if m.cursor == 0 {
		m.scrollOffset = 0
		return
	}

	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
		return
	}

	if m.linesUsed(m.scrollOffset) <= contentHeight {
		return
	}

	// Find the minimum scroll offset that keeps cursor visible
	for offset := m.scrollOffset + 1; offset <= m.cursor; offset++ {
		if m.linesUsed(offset) <= contentHeight {
			m.scrollOffset = offset
			return
		}
	}
	m.scrollOffset = m.cursor
}

// linesUsed counts the lines rendered from offset through the cursor
func (m Model) linesUsed(offset int) int {
	used := 0
	if offset > 0 {
		used++ // "More items above" indicator
	}
	for i := offset; i <= m.cursor && i < len(m.steps); i++ {
		used += m.getItemHeight(i)
	}
	return used
}
