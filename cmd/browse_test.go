package cmd

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"rom-checker/scanner"
)

func sampleOutcome() *scanner.Outcome {
	return &scanner.Outcome{
		BasePath: "/roms",
		Files: []scanner.FileResult{
			{Path: "/roms/a.bin", Status: scanner.StatusExact, GameName: "Alpha", RomName: "a.bin"},
			{Path: "/roms/junk.txt", Status: scanner.StatusMiss},
		},
		Games: []scanner.GameReport{
			{Name: "Alpha", TotalRoms: 1, Exact: 1, Full: true},
			{
				Name: "Beta", TotalRoms: 3, Exact: 1, Partial: 1,
				Missing:  []string{"b3.bin"},
				Misnamed: []scanner.Misnamed{{Path: "/roms/wrong.bin", Expected: "b2.bin"}},
			},
		},
	}
}

// TestBrowseModelFromOutcome tests that game reports become browser rows
func TestBrowseModelFromOutcome(t *testing.T) {
	m := newBrowseModel(sampleOutcome())

	if len(m.games) != 2 {
		t.Fatalf("Expected 2 games, got %d", len(m.games))
	}
	if m.games[0].Status != "full" || m.games[1].Status != "partial" {
		t.Fatalf("Unexpected statuses: %q, %q", m.games[0].Status, m.games[1].Status)
	}
	if got := m.games[1].Misnamed; len(got) != 1 || got[0] != "wrong.bin -> b2.bin" {
		t.Fatalf("Misnamed not rendered relative to the base path: %v", got)
	}
	if len(m.unmatched) != 1 || m.unmatched[0] != "junk.txt" {
		t.Fatalf("Unexpected unmatched files: %v", m.unmatched)
	}
}

// TestBrowseNavigation tests key handling and bounds
func TestBrowseNavigation(t *testing.T) {
	var model tea.Model = newBrowseModel(sampleOutcome())

	press := func(key string) {
		var msg tea.KeyMsg
		switch key {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		model, _ = model.Update(msg)
	}

	press("up")
	if model.(Model).selectedIndex != 0 {
		t.Fatal("selectedIndex should not go below 0")
	}
	press("down")
	press("j")
	if model.(Model).selectedIndex != 1 {
		t.Fatalf("selectedIndex should stop at the last row, got %d", model.(Model).selectedIndex)
	}
	press("k")
	if model.(Model).selectedIndex != 0 {
		t.Fatal("k should move up")
	}

	press("down")
	press("enter")
	if !model.(Model).expanded {
		t.Fatal("enter should expand the selected game")
	}
	view := model.View()
	for _, want := range []string{"Beta", "missing  b3.bin", "misnamed wrong.bin -> b2.bin", "1 files did not match"} {
		if !strings.Contains(view, want) {
			t.Errorf("View is missing %q:\n%s", want, view)
		}
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
}

// TestBrowseEmpty tests the view without any game
func TestBrowseEmpty(t *testing.T) {
	m := newBrowseModel(&scanner.Outcome{BasePath: "/roms"})
	if !strings.Contains(m.View(), "No games found in /roms") {
		t.Fatalf("Unexpected view: %s", m.View())
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next.(Model).expanded {
		t.Fatal("Nothing to expand without games")
	}
}

// TestVisibleRange tests that the selected row stays on screen
func TestVisibleRange(t *testing.T) {
	m := Model{height: 8}
	for i := 0; i < 20; i++ {
		m.games = append(m.games, GameInfo{Name: string(rune('a' + i))})
	}

	tests := []struct {
		selected   int
		start, end int
	}{
		{0, 0, 4},
		{10, 8, 12},
		{19, 16, 20},
	}
	for _, tt := range tests {
		m.selectedIndex = tt.selected
		start, end := m.visibleRange()
		if start != tt.start || end != tt.end {
			t.Errorf("visibleRange() with selection %d = (%d, %d), want (%d, %d)", tt.selected, start, end, tt.start, tt.end)
		}
	}
}

// TestTruncateFunction tests the truncate helper function
func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"Hello World", 5, "He..."},
		{"Hi", 5, "Hi"},
		{"Test", 4, "Test"},
		{"LongString", 7, "Long..."},
		{"", 5, ""},
	}

	for _, test := range tests {
		result := truncate(test.input, test.maxLen)
		if result != test.expected {
			t.Fatalf("truncate(%q, %d) = %q, expected %q", test.input, test.maxLen, result, test.expected)
		}
	}
}
