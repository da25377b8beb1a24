package tui

import (
	"fmt"
	"strings"

	"github.com/waabox/cplog/internal/domain"
)

// StageListModel is an immutable model for the stage table.
type StageListModel struct {
	stages []domain.StageState
	cursor int
}

// NewStageListModel creates a stage list model.
func NewStageListModel(stages []domain.StageState) StageListModel {
	return StageListModel{stages: stages, cursor: 0}
}

// UpdateStages replaces the stages and keeps the cursor on the same stage name
// when it still exists, otherwise clamps it to the new length.
func (m StageListModel) UpdateStages(stages []domain.StageState) StageListModel {
	selected := m.SelectedStage().StageName
	m.stages = stages
	for i, s := range stages {
		if s.StageName == selected {
			m.cursor = i
			return m
		}
	}
	if m.cursor >= len(stages) {
		m.cursor = max(len(stages)-1, 0)
	}
	return m
}

// MoveDown returns a new model with the cursor moved down by one.
func (m StageListModel) MoveDown() StageListModel {
	if m.cursor < len(m.stages)-1 {
		m.cursor++
	}
	return m
}

// MoveUp returns a new model with the cursor moved up by one.
func (m StageListModel) MoveUp() StageListModel {
	if m.cursor > 0 {
		m.cursor--
	}
	return m
}

// Cursor returns the current cursor position.
func (m StageListModel) Cursor() int {
	return m.cursor
}

// Stages returns the full stage slice.
func (m StageListModel) Stages() []domain.StageState {
	return m.stages
}

// SelectedStage returns the highlighted stage, or a zero value when empty.
func (m StageListModel) SelectedStage() domain.StageState {
	if len(m.stages) == 0 {
		return domain.StageState{}
	}
	return m.stages[m.cursor]
}

// View renders the stage table with cursor indicators.
func (m StageListModel) View() string {
	if len(m.stages) == 0 {
		return "No stages found."
	}
	var sb strings.Builder
	for i, s := range m.stages {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		status, execID := "", "--"
		if s.LatestExecution != nil {
			status = s.LatestExecution.Status
			if s.LatestExecution.PipelineExecutionID != "" {
				execID = domain.DisplayName(s.LatestExecution.PipelineExecutionID)
			}
		}
		sb.WriteString(fmt.Sprintf("%s%-25s %-10s %s\n",
			prefix,
			truncate(s.StageName, 25),
			execID,
			RenderStageStatus(status),
		))
	}
	return sb.String()
}
