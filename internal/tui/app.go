package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/waabox/cplog/internal/domain"
)

// refreshInterval is how often the run status is reloaded while the TUI is open.
const refreshInterval = 30 * time.Second

// StatusLoadedMsg is sent when the pipeline run status has been fetched.
// It is exported so that tests can inject it directly into AppModel.Update.
type StatusLoadedMsg struct {
	Status domain.PipelineRunStatus
	Err    error
}

// LogsLoadedMsg is sent when the aggregate pipeline log has been fetched.
// It is exported so that tests can inject it directly into AppModel.Update.
type LogsLoadedMsg struct {
	Content string
	Err     error
}

// tickMsg is sent by the auto-refresh ticker.
type tickMsg struct{}

// viewState indicates the current navigation level.
type viewState int

const (
	viewStages viewState = iota
	viewLogs
)

// AppModel is the root Bubbletea model for cplog.
type AppModel struct {
	ctx          context.Context
	reader       domain.PipelineReader
	pipelineName string
	view         viewState
	stages       StageListModel
	status       domain.PipelineRunStatus
	loading      bool
	err          error
	width        int
	height       int
	// Log viewer state
	logLoading bool
	logContent string
	logOffset  int
	logErr     error
}

// NewAppModel creates the root application model for one pipeline.
func NewAppModel(ctx context.Context, reader domain.PipelineReader, pipelineName string) AppModel {
	return AppModel{
		ctx:          ctx,
		reader:       reader,
		pipelineName: pipelineName,
		stages:       NewStageListModel(nil),
		loading:      true,
	}
}

// Init triggers the initial status load.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.loadStatus(), tickEvery(refreshInterval))
}

func (m AppModel) loadStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.reader.JobMeta(m.ctx, m.pipelineName)
		return StatusLoadedMsg{Status: status, Err: err}
	}
}

func (m AppModel) loadLogs() tea.Cmd {
	return func() tea.Msg {
		content, err := m.reader.JobLog(m.ctx, m.pipelineName)
		return LogsLoadedMsg{Content: content, Err: err}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles all incoming messages and key events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case StatusLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.status = msg.Status
		m.stages = m.stages.UpdateStages(msg.Status.Stages)

	case tickMsg:
		return m, tea.Batch(m.loadStatus(), tickEvery(refreshInterval))

	case LogsLoadedMsg:
		m.logLoading = false
		if msg.Err != nil {
			// Log errors are non-fatal: stay on the stage table.
			m.logErr = msg.Err
			return m, nil
		}
		m.logErr = nil
		m.view = viewLogs
		m.logContent = msg.Content
		m.logOffset = 0
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			m.loading = true
			return m, m.loadStatus()
		}
		switch m.view {
		case viewStages:
			return m.updateStages(msg)
		case viewLogs:
			return m.updateLogs(msg)
		}
	}
	return m, nil
}

func (m AppModel) updateStages(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "down":
		m.stages = m.stages.MoveDown()
	case "up":
		m.stages = m.stages.MoveUp()
	case "l":
		if !m.logLoading {
			m.logLoading = true
			return m, m.loadLogs()
		}
	}
	return m, nil
}

func (m AppModel) updateLogs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maxOffset := strings.Count(m.logContent, "\n")
	switch msg.String() {
	case "down":
		if m.logOffset < maxOffset {
			m.logOffset++
		}
	case "up":
		if m.logOffset > 0 {
			m.logOffset--
		}
	case "pgup":
		m.logOffset = max(m.logOffset-m.visibleLogLines(), 0)
	case "pgdown":
		m.logOffset = min(m.logOffset+m.visibleLogLines(), maxOffset)
	case "g":
		m.logOffset = 0
	case "G":
		m.logOffset = maxOffset
	case "esc":
		m.view = viewStages
		m.logContent = ""
		m.logOffset = 0
	}
	return m, nil
}

// View renders the full TUI.
func (m AppModel) View() string {
	if m.logLoading {
		return "Loading logs...\n"
	}
	if m.view == viewLogs {
		return m.renderLogView()
	}
	if m.loading {
		return "Loading pipeline status...\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'ctrl+r' to retry or 'q' to quit.\n", m.err)
	}
	return m.renderStagesView()
}

func (m AppModel) header() string {
	return fmt.Sprintf(" %s | %s / run %s %s\n",
		titleStyle.Render("cplog"), m.pipelineName,
		m.status.DisplayName, RenderResult(m.status.Result))
}

func (m AppModel) renderStagesView() string {
	title := fmt.Sprintf(" Stages (pipeline version %d)\n", m.status.PipelineVersion)
	statusBar := fmt.Sprintf(" execution %s\n", m.status.RunID)
	if m.logErr != nil {
		statusBar = fmt.Sprintf(" logs unavailable: %v\n", m.logErr)
	}
	footer := " ↑/↓: navigate   l: logs   ctrl+r: refresh   q: quit\n"
	return m.header() + separator + title + m.stages.View() + "\n" + separator + statusBar + separator + footer
}

// visibleLogLines returns the number of log lines visible in the current terminal height.
func (m AppModel) visibleLogLines() int {
	lines := m.height - 4 // header, two separators and footer
	if lines < 10 {
		return 10
	}
	return lines
}

// renderLogView renders the fullscreen log viewer.
func (m AppModel) renderLogView() string {
	header := fmt.Sprintf(" %s  %s  [logs] run %s\n",
		titleStyle.Render("cplog"), m.pipelineName, m.status.DisplayName)
	footer := " ↑/↓: scroll   PgUp/PgDn: page   g/G: top/bottom   esc: back\n"

	if m.logContent == "" {
		return header + separator + dimStyle.Render("No build logs for this pipeline.") + "\n" + separator + footer
	}

	lines := strings.Split(m.logContent, "\n")
	start := min(max(m.logOffset, 0), len(lines)-1)
	end := min(start+m.visibleLogLines(), len(lines))

	body := strings.Join(lines[start:end], "\n")
	return header + separator + body + "\n" + separator + footer
}

// Run starts the Bubbletea program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, reader domain.PipelineReader, pipelineName string) error {
	p := tea.NewProgram(NewAppModel(ctx, reader, pipelineName), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
