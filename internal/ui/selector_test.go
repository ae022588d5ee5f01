package ui_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/temirov/instancectl/internal/ui"
)

var testSelectorBranches = []string{"main", "dev", "release"}

func applyKeys(model tea.Model, keys ...tea.KeyMsg) (tea.Model, tea.Cmd) {
	var command tea.Cmd
	for _, key := range keys {
		model, command = model.Update(key)
	}
	return model, command
}

func requireQuit(testInstance *testing.T, command tea.Cmd) {
	testInstance.Helper()
	require.NotNil(testInstance, command)
	_, isQuit := command().(tea.QuitMsg)
	require.True(testInstance, isQuit)
}

func TestBranchSelectorModelKeys(testInstance *testing.T) {
	testCases := []struct {
		name            string
		keys            []tea.KeyMsg
		expectedBranch  string
		expectSelection bool
	}{
		{
			name:            "enter_selects_first_branch",
			keys:            []tea.KeyMsg{{Type: tea.KeyEnter}},
			expectedBranch:  "main",
			expectSelection: true,
		},
		{
			name:            "cursor_moves_before_enter",
			keys:            []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyEnter}},
			expectedBranch:  "release",
			expectSelection: true,
		},
		{
			name: "escape_cancels",
			keys: []tea.KeyMsg{{Type: tea.KeyEsc}},
		},
		{
			name: "interrupt_cancels",
			keys: []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyCtrlC}},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			finalModel, command := applyKeys(ui.NewBranchSelectorModel("svc1", testSelectorBranches), testCase.keys...)
			requireQuit(testInstance, command)

			selectorModel, isSelector := finalModel.(ui.BranchSelectorModel)
			require.True(testInstance, isSelector)
			selectedBranch, selected := selectorModel.Selection()
			require.Equal(testInstance, testCase.expectSelection, selected)
			require.Equal(testInstance, testCase.expectedBranch, selectedBranch)
		})
	}
}

func TestBranchSelectorModelView(testInstance *testing.T) {
	selectorModel := ui.NewBranchSelectorModel("svc1", testSelectorBranches)
	view := selectorModel.View()
	require.Contains(testInstance, view, "Branches of svc1")
	require.Contains(testInstance, view, "main")
	require.Contains(testInstance, view, "esc cancel")
}

func TestSelectBranchRunsProgram(testInstance *testing.T) {
	selectedBranch, selectionError := ui.SelectBranch(context.Background(), "svc1", testSelectorBranches, strings.NewReader("\r"), &bytes.Buffer{})
	require.NoError(testInstance, selectionError)
	require.Equal(testInstance, "main", selectedBranch)
}

func TestSelectBranchWithoutBranches(testInstance *testing.T) {
	_, selectionError := ui.SelectBranch(context.Background(), "svc1", nil, strings.NewReader(""), &bytes.Buffer{})
	require.ErrorIs(testInstance, selectionError, ui.ErrNoBranchesAvailable)
}
