package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rom-checker/scanner"
)

// fileBrowseCmd represents the browse command
var fileBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the stored results of a directory interactively",
	Long:  `Launch an interactive TUI listing the games found in a directory and what is missing from each.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBrowse(cmd)
	},
}

// GameInfo is one row of the browser
type GameInfo struct {
	Name     string
	Status   string // "full" or "partial"
	Found    int    // roms with an exact match
	Total    int
	Missing  []string
	Misnamed []string
}

// Model represents the state of the TUI
type Model struct {
	games         []GameInfo
	unmatched     []string
	basePath      string
	selectedIndex int
	expanded      bool
	width         int
	height        int
}

func newBrowseModel(out *scanner.Outcome) Model {
	m := Model{basePath: out.BasePath, width: 80, height: 24}
	for _, g := range out.Games {
		info := GameInfo{
			Name:    g.Name,
			Status:  "partial",
			Found:   g.Exact,
			Total:   g.TotalRoms,
			Missing: g.Missing,
		}
		if g.Full {
			info.Status = "full"
		}
		for _, mn := range g.Misnamed {
			info.Misnamed = append(info.Misnamed, fmt.Sprintf("%s -> %s", displayPath(out.BasePath, mn.Path), mn.Expected))
		}
		m.games = append(m.games, info)
	}
	for _, f := range out.Filter(scanner.StatusMiss) {
		m.unmatched = append(m.unmatched, displayPath(out.BasePath, f.Path))
	}
	return m
}

// Initialize the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case "down", "j":
		if m.selectedIndex < len(m.games)-1 {
			m.selectedIndex++
		}
	case "enter", " ":
		if len(m.games) > 0 {
			m.expanded = !m.expanded
		}
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if len(m.games) == 0 {
		out := fmt.Sprintf("No games found in %s. Run a scan first!\n", m.basePath)
		if len(m.unmatched) > 0 {
			out += fmt.Sprintf("%d files did not match the catalog.\n", len(m.unmatched))
		}
		return out + "\n" + renderFooter()
	}

	var output string
	output += renderHeader()
	output += "\n"

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		output += m.renderGameRow(i, m.games[i])
		output += "\n"
		if m.expanded && i == m.selectedIndex {
			output += renderDetails(m.games[i])
		}
	}

	if len(m.unmatched) > 0 {
		output += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).
			Render(fmt.Sprintf("%d files did not match the catalog", len(m.unmatched)))
	}
	output += "\n" + renderFooter()
	return output
}

// visibleRange keeps the selected row on screen.
func (m Model) visibleRange() (int, int) {
	rows := m.height - 4
	if rows < 1 {
		rows = 1
	}
	if len(m.games) <= rows {
		return 0, len(m.games)
	}
	start := m.selectedIndex - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > len(m.games) {
		start = len(m.games) - rows
	}
	return start, start + rows
}

func renderHeader() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	return headerStyle.Render(fmt.Sprintf("%-50s %-10s %-10s", "Game", "Roms", "Status"))
}

func renderFooter() string {
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	return footerStyle.Render("↑/k: up  ↓/j: down  enter: details  q: quit")
}

func (m Model) renderGameRow(index int, game GameInfo) string {
	statusColor := "11" // Yellow
	if game.Status == "full" {
		statusColor = "10" // Green
	}

	rowStyle := lipgloss.NewStyle().Padding(0, 1)
	if index == m.selectedIndex {
		rowStyle = rowStyle.
			Background(lipgloss.Color("8")).
			Bold(true)
	}

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(statusColor))

	// Pad status before applying color to maintain column alignment
	paddedStatus := fmt.Sprintf("%-10s", game.Status)

	row := fmt.Sprintf("%-50s %-10s %s",
		truncate(game.Name, 48),
		fmt.Sprintf("%d/%d", game.Found, game.Total),
		statusStyle.Render(paddedStatus),
	)
	return rowStyle.Render(row)
}

func renderDetails(game GameInfo) string {
	var b strings.Builder
	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7")).PaddingLeft(4)
	for _, name := range game.Misnamed {
		b.WriteString(detailStyle.Render("misnamed " + truncate(name, 70)))
		b.WriteString("\n")
	}
	for _, name := range game.Missing {
		b.WriteString(detailStyle.Render("missing  " + truncate(name, 70)))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		b.WriteString(detailStyle.Render("all roms present"))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}

func runBrowse(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("directory")
	opts, err := scannerOptions(cmd, cfg)
	if err != nil {
		return err
	}
	out, err := runFileOp(opList, dir, opts, false)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newBrowseModel(out), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		runLog.Errorw("Failed to run browser", zap.Error(err))
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
