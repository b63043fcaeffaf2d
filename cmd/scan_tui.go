package cmd

import (
	"fmt"
	"sync"

	"rom-checker/scanner"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// ScanProgressMsg carries one file result from the running operation
type ScanProgressMsg struct {
	Result scanner.FileResult
}

// scanDoneMsg is sent once the progress channel is closed
type scanDoneMsg struct{}

// scanResult is filled in by the operation goroutine before it closes the channel
type scanResult struct {
	once    sync.Once
	outcome *scanner.Outcome
	err     error
}

// ScanModel controls the UI for scan and update
type ScanModel struct {
	spinner      spinner.Model
	progressChan chan ScanProgressMsg
	run          func() (*scanner.Outcome, error)
	result       *scanResult

	// State
	status   string
	recent   []string
	failures []string
	done     bool

	// Counters
	totalFiles int
	counts     map[scanner.Status]int
}

const recentLimit = 5

func initialScanModel(op, dir string, run func() (*scanner.Outcome, error)) ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ScanModel{
		spinner:      s,
		progressChan: make(chan ScanProgressMsg, 100),
		run:          run,
		result:       &scanResult{},
		status:       fmt.Sprintf("Running %s on %s...", op, dir),
		counts:       make(map[scanner.Status]int),
	}
}

func (m ScanModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startScan(),
		m.waitForActivity(),
	)
}

func (m ScanModel) startScan() tea.Cmd {
	return func() tea.Msg {
		m.launch()
		return nil
	}
}

// launch starts the operation once, whoever asks first.
func (m ScanModel) launch() {
	m.result.once.Do(func() {
		go func() {
			defer close(m.progressChan)
			m.result.outcome, m.result.err = m.run()
		}()
	})
}

func (m ScanModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressChan
		if !ok {
			return scanDoneMsg{}
		}
		return msg
	}
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanDoneMsg:
		m.done = true
		m.status = "Finished"
		return m, tea.Quit

	case ScanProgressMsg:
		res := msg.Result
		m.totalFiles++
		m.counts[res.Status]++
		m.status = fmt.Sprintf("Processed %d files", m.totalFiles)
		if res.Status == scanner.StatusFailed || res.Err != nil {
			m.failures = append(m.failures, fmt.Sprintf("%s: %v", truncate(res.Path, 60), res.Err))
		}
		m.recent = append(m.recent, fmt.Sprintf("%-13s %s", res.Status, truncate(res.Path, 60)))
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}
		return m, m.waitForActivity()
	}

	return m, nil
}

func (m ScanModel) View() string {
	var symbol string
	if m.done {
		symbol = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	} else {
		symbol = m.spinner.View()
	}

	s := fmt.Sprintf("\n %s %s\n\n", symbol, m.status)

	if len(m.recent) > 0 {
		s += lipgloss.NewStyle().Bold(true).Render("Latest:") + "\n"
		for _, r := range m.recent {
			s += fmt.Sprintf("  • %s\n", r)
		}
		s += "\n"
	}

	if len(m.failures) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Errors:") + "\n"
		for _, e := range m.failures {
			s += fmt.Sprintf("  • %s\n", e)
		}
		s += "\n"
	}

	s += fmt.Sprintf(" exact %d  partial %d  miss %d  moved %d  gone %d\n",
		m.counts[scanner.StatusExact],
		m.counts[scanner.StatusPartial],
		m.counts[scanner.StatusMiss],
		m.counts[scanner.StatusMoved],
		m.counts[scanner.StatusGone],
	)
	return s
}

// runWithProgress runs op while the progress view follows the scanner.
func runWithProgress(sc *scanner.Scanner, op fileOp, dir string) (*scanner.Outcome, error) {
	m := initialScanModel(op.name, dir, func() (*scanner.Outcome, error) {
		return op.run(sc, dir)
	})
	sc.Observe(func(res scanner.FileResult) {
		m.progressChan <- ScanProgressMsg{Result: res}
	})
	defer sc.Observe(nil)

	if _, err := tea.NewProgram(m).Run(); err != nil {
		runLog.Warnw("Progress view failed, waiting for the operation", zap.Error(err))
	}
	// The view may quit early or never start; the operation still runs to completion.
	m.launch()
	for range m.progressChan {
	}
	return m.result.outcome, m.result.err
}
