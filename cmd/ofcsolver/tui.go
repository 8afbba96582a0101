package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/ofcsolver/ofcsolver/internal/config"
	"github.com/ofcsolver/ofcsolver/ofc/solver"
)

// viewStyles mirrors the teacher's TUI palette (internal/display/tui.go),
// reused here for a single-pane live-progress view rather than a full
// hand table.
type viewStyles struct {
	header lipgloss.Style
	info   lipgloss.Style
	value  lipgloss.Style
	done   lipgloss.Style
	errTxt lipgloss.Style
}

func newViewStyles() viewStyles {
	return viewStyles{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true),
		info: lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		done:   lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		errTxt: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
}

type tickMsg time.Time

type decisionMsg struct {
	decision solver.Decision
	err      error
}

// viewModel is the bubbletea model driving the `view` subcommand: it
// shows elapsed time while Solve runs in the background, then the final
// decision.
type viewModel struct {
	resultCh chan decisionMsg
	styles   viewStyles
	start    time.Time
	log      viewport.Model
	logLines []string
	ticks    int

	elapsed  time.Duration
	decision solver.Decision
	err      error
	done     bool
	quitting bool
}

func newViewModel(resultCh chan decisionMsg) *viewModel {
	vp := viewport.New(60, 6)
	lines := []string{"searching…"}
	vp.SetContent(strings.Join(lines, "\n"))
	return &viewModel{resultCh: resultCh, styles: newViewStyles(), start: time.Now(), log: vp, logLines: lines}
}

func (m *viewModel) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	m.log.SetContent(strings.Join(m.logLines, "\n"))
	m.log.GotoBottom()
}

func (m *viewModel) Init() tea.Cmd {
	return tea.Batch(waitForDecision(m.resultCh), tickCmd())
}

func waitForDecision(ch chan decisionMsg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tickMsg:
		m.elapsed = time.Since(m.start)
		if m.done {
			return m, nil
		}
		m.ticks++
		m.appendLog(fmt.Sprintf("[%5.1fs] still searching (tick %d)", m.elapsed.Seconds(), m.ticks))
		return m, tickCmd()
	case decisionMsg:
		m.done = true
		m.decision = msg.decision
		m.err = msg.err
		m.elapsed = time.Since(m.start)
		m.appendLog(fmt.Sprintf("[%5.1fs] search finished", m.elapsed.Seconds()))
		return m, nil
	}
	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m *viewModel) View() string {
	if m.quitting {
		return ""
	}
	header := m.styles.header.Render("ofcsolver — live search")
	if !m.done {
		return fmt.Sprintf("%s\n\n%s\n\n%s\n",
			header,
			m.styles.info.Render(fmt.Sprintf("searching… elapsed %.1fs (ctrl+c to cancel)", m.elapsed.Seconds())),
			m.log.View())
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s\n", header, m.styles.errTxt.Render(m.err.Error()), m.log.View())
	}
	d := m.decision
	return fmt.Sprintf(
		"%s\n\n%s\n  simulations: %s\n  value:       %s\n  confidence:  %s\n  elapsed:     %s\n  complete:    %s\n",
		header,
		m.styles.done.Render("search finished"),
		m.styles.value.Render(fmt.Sprintf("%d", d.SimulationsRun)),
		m.styles.value.Render(fmt.Sprintf("%.2f", d.ExpectedScore)),
		m.styles.value.Render(fmt.Sprintf("%.2f", d.Confidence)),
		m.styles.value.Render(d.Elapsed.String()),
		m.styles.value.Render(fmt.Sprintf("%v", d.Complete)),
	)
}

// RunView solves in the background while rendering live progress, then
// prints the final decision as JSON once the TUI exits.
func (cmd *ViewCmd) RunView(ctx context.Context, cfg *config.EngineConfig) error {
	state, err := buildState(cmd.Arrangement, cmd.Dealt, cmd.Street)
	if err != nil {
		return err
	}

	resultCh := make(chan decisionMsg, 1)
	sv := solver.New(log.Logger.With().Str("component", "view").Logger())
	go func() {
		decision, err := sv.Solve(ctx, state, cmd.budget(cfg), cmd.options(cfg))
		resultCh <- decisionMsg{decision: decision, err: err}
	}()

	model := newViewModel(resultCh)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return err
	}

	fm := final.(*viewModel)
	if fm.err != nil {
		return fm.err
	}
	return printJSON(fm.decision)
}
