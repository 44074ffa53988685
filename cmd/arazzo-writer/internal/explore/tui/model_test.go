package tui_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/internal/explore"
	"github.com/SteakFisher/arazzo-writer/cmd/arazzo-writer/internal/explore/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSteps() []explore.StepInfo {
	return []explore.StepInfo{
		{WorkflowID: "login", StepID: "token", Position: 1, Kind: explore.TargetKindOperationID, Target: "createToken", Folded: true},
		{WorkflowID: "order", WorkflowSummary: "Place an order", StepID: "auth", Position: 1, Kind: explore.TargetKindWorkflowID, Target: "login", Folded: true},
		{
			WorkflowID:      "order",
			StepID:          "place",
			Position:        2,
			Kind:            explore.TargetKindOperationPath,
			Target:          "{$sourceDescriptions.api.url}#/paths/~1orders/post",
			Description:     "Places the order",
			SuccessCriteria: []string{"$statusCode == 201"},
			Outputs:         []string{"orderId: $response.body#/id"},
			Folded:          true,
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m tui.Model, keys ...tea.KeyMsg) tui.Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(tui.Model)
		require.True(t, ok, "update should return a tui.Model")
	}
	return m
}

func TestModel_Navigation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		keys     []tea.KeyMsg
		expected int
	}{
		{name: "down moves to next step", keys: []tea.KeyMsg{runes("j")}, expected: 1},
		{name: "up stops at first step", keys: []tea.KeyMsg{runes("k"), runes("k")}, expected: 0},
		{name: "down stops at last step", keys: []tea.KeyMsg{runes("j"), runes("j"), runes("j"), runes("j")}, expected: 2},
		{name: "G jumps to bottom", keys: []tea.KeyMsg{runes("G")}, expected: 2},
		{name: "gg jumps to top", keys: []tea.KeyMsg{runes("G"), runes("g"), runes("g")}, expected: 0},
		{name: "ctrl+d clamps to last step", keys: []tea.KeyMsg{{Type: tea.KeyCtrlD}}, expected: 2},
		{name: "ctrl+u clamps to first step", keys: []tea.KeyMsg{runes("G"), {Type: tea.KeyCtrlU}}, expected: 0},
		{name: "next workflow", keys: []tea.KeyMsg{runes("]")}, expected: 1},
		{name: "next workflow stays in last workflow", keys: []tea.KeyMsg{runes("]"), runes("]")}, expected: 1},
		{name: "previous workflow from inside a workflow", keys: []tea.KeyMsg{runes("G"), runes("[")}, expected: 1},
		{name: "previous workflow from a first step", keys: []tea.KeyMsg{runes("]"), runes("[")}, expected: 0},
		{name: "navigation ignored while help is shown", keys: []tea.KeyMsg{runes("?"), runes("j")}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := press(t, tui.NewModel(testSteps(), "Orders", "1.0.0"), tt.keys...)
			assert.Equal(t, tt.expected, m.Cursor())
		})
	}
}

func TestModel_ToggleDetails(t *testing.T) {
	t.Parallel()

	m := tui.NewModel(testSteps(), "Orders", "1.0.0")
	m = press(t, m, runes("G"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Steps()[2].Folded, "enter should unfold the highlighted step")

	view := m.View()
	assert.Contains(t, view, "Description: Places the order")
	assert.Contains(t, view, "Success Criteria:")
	assert.Contains(t, view, "- $statusCode == 201")
	assert.Contains(t, view, "- orderId: $response.body#/id")

	m = press(t, m, runes(" "))
	assert.True(t, m.Steps()[2].Folded, "space should fold the step again")
	assert.NotContains(t, m.View(), "Success Criteria:")
}

func TestModel_View(t *testing.T) {
	t.Parallel()

	m := tui.NewModel(testSteps(), "Orders", "1.0.0")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(tui.Model)

	view := m.View()
	assert.Contains(t, view, "Arazzo Workflow Explorer")
	assert.Contains(t, view, "order - Place an order")
	assert.Contains(t, view, "OP")
	assert.Contains(t, view, "FLOW")
	assert.Contains(t, view, "1. token → createToken")
	assert.Contains(t, view, "2. place → {$sourceDescriptions.api.url}#/paths/~1orders/post")
	assert.Contains(t, view, "Orders v1.0.0 · 3 steps")
}

func TestModel_HelpAndQuit(t *testing.T) {
	t.Parallel()

	m := tui.NewModel(testSteps(), "Orders", "1.0.0")

	m = press(t, m, runes("?"))
	assert.Contains(t, m.View(), "Previous / next workflow")

	m = press(t, m, runes("q"))
	assert.False(t, m.Quitting(), "q should close help before quitting")
	assert.NotContains(t, m.View(), "Previous / next workflow")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd, "q should return the quit command")
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestInputModel(t *testing.T) {
	t.Parallel()

	m := tui.NewInputModel("Install directory", "/tmp/skills", nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	submitted := next.(tui.InputModel)
	assert.Equal(t, "/tmp/skills", submitted.GetValue())
	assert.False(t, submitted.IsCancelled())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	cancelled := next.(tui.InputModel)
	assert.True(t, cancelled.IsCancelled())
	assert.Empty(t, cancelled.GetValue())
}

func TestInputModel_Validation(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "SKILL.md")
	require.NoError(t, os.WriteFile(file, []byte("# Skill\n"), 0o600))

	m := tui.NewInputModel("Install directory", file, tui.DirectoryPath)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "an invalid path should not submit")

	rejected := next.(tui.InputModel)
	require.Error(t, rejected.Err())
	assert.ErrorContains(t, rejected.Err(), "is not a directory")
	assert.Empty(t, rejected.GetValue())

	next, _ = rejected.Update(runes("x"))
	assert.NoError(t, next.(tui.InputModel).Err(), "editing should clear the error")

	empty := tui.NewInputModel("Install directory", "", nil)
	next, cmd = empty.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.EqualError(t, next.(tui.InputModel).Err(), "a path is required")
}

func TestDirectoryPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.NoError(t, tui.DirectoryPath(dir))
	assert.NoError(t, tui.DirectoryPath(filepath.Join(dir, "missing")), "missing directories are created on install")
}
