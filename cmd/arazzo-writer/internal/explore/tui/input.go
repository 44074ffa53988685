package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errorTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))

// InputModel is a single line prompt for a path. Enter submits once the value passes validation.
type InputModel struct {
	textInput textinput.Model
	prompt    string
	validate  func(string) error
	err       error
	submitted bool
	cancelled bool
}

// NewInputModel creates a prompt prefilled with defaultValue. validate may be nil.
func NewInputModel(prompt, defaultValue string, validate func(string) error) InputModel {
	ti := textinput.New()
	ti.Placeholder = defaultValue
	ti.SetValue(defaultValue)
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	return InputModel{
		textInput: ti,
		prompt:    prompt,
		validate:  validate,
	}
}

func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			value := strings.TrimSpace(m.textInput.Value())
			if value == "" {
				m.err = errors.New("a path is required")
				return m, nil
			}
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	// Any edit clears the previous error
	m.err = nil

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m InputModel) View() string {
	style := HelpModalStyle.Width(70)

	var body strings.Builder
	body.WriteString(TitleStyle.Render(m.prompt))
	body.WriteString("\n\n")
	body.WriteString(m.textInput.View())
	if m.err != nil {
		body.WriteString("\n")
		body.WriteString(errorTextStyle.Render(m.err.Error()))
	}
	body.WriteString("\n\n")
	body.WriteString(ScrollIndicatorStyle.Italic(true).Render("Enter: confirm • Esc: cancel"))

	return lipgloss.Place(80, 24, lipgloss.Center, lipgloss.Center, style.Render(body.String()))
}

// GetValue returns the submitted value, or empty if the prompt was not submitted
func (m InputModel) GetValue() string {
	if m.submitted {
		return strings.TrimSpace(m.textInput.Value())
	}
	return ""
}

// Err returns the validation error currently shown, if any
func (m InputModel) Err() error {
	return m.err
}

// IsCancelled returns true if the user cancelled
func (m InputModel) IsCancelled() bool {
	return m.cancelled
}

// DirectoryPath rejects paths that exist but are not directories.
func DirectoryPath(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// PromptForFilePath shows a TUI prompt for a path with a default value.
// Returns an empty string if cancelled.
func PromptForFilePath(prompt, defaultValue string, validate func(string) error) (string, error) {
	finalModel, err := tea.NewProgram(NewInputModel(prompt, defaultValue, validate)).Run()
	if err != nil {
		return "", fmt.Errorf("error running input prompt: %w", err)
	}

	inputModel, ok := finalModel.(InputModel)
	if !ok {
		return "", errors.New("unexpected model type")
	}

	if inputModel.IsCancelled() {
		return "", nil
	}

	return inputModel.GetValue(), nil
}
