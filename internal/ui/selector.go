package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	selectorTitleTemplateConstant          = "Branches of %s"
	selectorHelpTextConstant               = "enter select · / filter · esc cancel"
	selectorDefaultWidthConstant           = 60
	selectorDefaultHeightConstant          = 20
	selectorKeyEnterConstant               = "enter"
	selectorKeyEscapeConstant              = "esc"
	selectorKeyQuitConstant                = "q"
	selectorKeyInterruptConstant           = "ctrl+c"
	selectionCancelledMessageConstant      = "branch selection cancelled"
	noBranchesAvailableMessageConstant     = "no branches available to select"
	selectorExecutionErrorTemplateConstant = "branch selector failed: %w"
)

var (
	// ErrSelectionCancelled indicates the user left the selector without choosing a branch.
	ErrSelectionCancelled = errors.New(selectionCancelledMessageConstant)
	// ErrNoBranchesAvailable indicates there was nothing to choose from.
	ErrNoBranchesAvailable = errors.New(noBranchesAvailableMessageConstant)
)

var (
	selectorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginLeft(2)
	selectorHelpStyle  = lipgloss.NewStyle().Faint(true).PaddingLeft(2)
)

type branchItem string

func (item branchItem) Title() string       { return string(item) }
func (item branchItem) Description() string { return "" }
func (item branchItem) FilterValue() string { return string(item) }

// BranchSelectorModel is the bubbletea model behind SelectBranch.
type BranchSelectorModel struct {
	list           list.Model
	selectedBranch string
	finished       bool
	cancelled      bool
}

// NewBranchSelectorModel builds a selector listing branchNames for instanceName.
func NewBranchSelectorModel(instanceName string, branchNames []string) BranchSelectorModel {
	items := make([]list.Item, 0, len(branchNames))
	for _, branchName := range branchNames {
		items = append(items, branchItem(branchName))
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	branchList := list.New(items, delegate, selectorDefaultWidthConstant, selectorDefaultHeightConstant)
	branchList.Title = fmt.Sprintf(selectorTitleTemplateConstant, instanceName)
	branchList.Styles.Title = selectorTitleStyle
	branchList.SetShowStatusBar(false)
	branchList.SetShowHelp(false)

	return BranchSelectorModel{list: branchList}
}

// Init implements tea.Model.
func (model BranchSelectorModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (model BranchSelectorModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case tea.WindowSizeMsg:
		model.list.SetSize(typedMessage.Width, typedMessage.Height-1)
		return model, nil
	case tea.KeyMsg:
		keyName := typedMessage.String()
		if keyName == selectorKeyInterruptConstant {
			model.cancelled = true
			return model, tea.Quit
		}
		if model.list.FilterState() == list.Filtering {
			break
		}
		switch keyName {
		case selectorKeyEnterConstant:
			if selectedItem, isBranch := model.list.SelectedItem().(branchItem); isBranch {
				model.selectedBranch = string(selectedItem)
				model.finished = true
				return model, tea.Quit
			}
		case selectorKeyEscapeConstant:
			if model.list.FilterState() == list.FilterApplied {
				break
			}
			model.cancelled = true
			return model, tea.Quit
		case selectorKeyQuitConstant:
			model.cancelled = true
			return model, tea.Quit
		}
	}

	var command tea.Cmd
	model.list, command = model.list.Update(message)
	return model, command
}

// View implements tea.Model.
func (model BranchSelectorModel) View() string {
	if model.finished || model.cancelled {
		return ""
	}
	return model.list.View() + "\n" + selectorHelpStyle.Render(selectorHelpTextConstant)
}

// Selection reports the chosen branch, if any.
func (model BranchSelectorModel) Selection() (string, bool) {
	return model.selectedBranch, model.finished && !model.cancelled
}

// SelectBranch runs an interactive list of branchNames and returns the chosen one.
// A nil input or output falls back to the terminal.
func SelectBranch(selectionContext context.Context, instanceName string, branchNames []string, input io.Reader, output io.Writer) (string, error) {
	if len(branchNames) == 0 {
		return "", ErrNoBranchesAvailable
	}
	if selectionContext == nil {
		selectionContext = context.Background()
	}

	programOptions := []tea.ProgramOption{tea.WithContext(selectionContext)}
	if input != nil {
		programOptions = append(programOptions, tea.WithInput(input))
	}
	if output != nil {
		programOptions = append(programOptions, tea.WithOutput(output))
	}

	finalModel, runError := tea.NewProgram(NewBranchSelectorModel(instanceName, branchNames), programOptions...).Run()
	if runError != nil {
		return "", fmt.Errorf(selectorExecutionErrorTemplateConstant, runError)
	}

	selectorModel, isSelector := finalModel.(BranchSelectorModel)
	if !isSelector {
		return "", ErrSelectionCancelled
	}
	selectedBranch, selected := selectorModel.Selection()
	if !selected {
		return "", ErrSelectionCancelled
	}
	return selectedBranch, nil
}
