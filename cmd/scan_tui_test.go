package cmd

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"rom-checker/scanner"
)

func TestScanModelCountsProgress(t *testing.T) {
	var model tea.Model = initialScanModel("scan", "/roms", nil)

	results := []scanner.FileResult{
		{Path: "/roms/a.bin", Status: scanner.StatusExact},
		{Path: "/roms/b.bin", Status: scanner.StatusPartial},
		{Path: "/roms/c.bin", Status: scanner.StatusFailed, Err: errors.New("permission denied")},
	}
	for _, res := range results {
		var cmd tea.Cmd
		model, cmd = model.Update(ScanProgressMsg{Result: res})
		if cmd == nil {
			t.Fatal("Progress should keep waiting for activity")
		}
	}

	m := model.(ScanModel)
	if m.totalFiles != 3 {
		t.Fatalf("totalFiles = %d, want 3", m.totalFiles)
	}
	if m.counts[scanner.StatusExact] != 1 || m.counts[scanner.StatusPartial] != 1 {
		t.Fatalf("Unexpected counts: %v", m.counts)
	}
	if len(m.failures) != 1 || !strings.Contains(m.failures[0], "permission denied") {
		t.Fatalf("Unexpected failures: %v", m.failures)
	}

	view := m.View()
	for _, want := range []string{"Processed 3 files", "exact 1", "partial 1", "Errors:"} {
		if !strings.Contains(view, want) {
			t.Errorf("View is missing %q:\n%s", want, view)
		}
	}

	model, cmd := model.Update(scanDoneMsg{})
	if !model.(ScanModel).done || cmd == nil {
		t.Fatal("Done should mark the model finished and quit")
	}
}

func TestScanModelKeepsRecentFiles(t *testing.T) {
	var model tea.Model = initialScanModel("update", "/roms", nil)
	for i := 0; i < recentLimit+3; i++ {
		model, _ = model.Update(ScanProgressMsg{Result: scanner.FileResult{Path: string(rune('a' + i)), Status: scanner.StatusMiss}})
	}
	m := model.(ScanModel)
	if len(m.recent) != recentLimit {
		t.Fatalf("recent holds %d entries, want %d", len(m.recent), recentLimit)
	}
	if !strings.HasSuffix(m.recent[len(m.recent)-1], "h") {
		t.Fatalf("Last entry should be the newest file: %q", m.recent[len(m.recent)-1])
	}
}

func TestScanModelLaunchRunsOnce(t *testing.T) {
	calls := 0
	want := &scanner.Outcome{BasePath: "/roms"}
	m := initialScanModel("scan", "/roms", func() (*scanner.Outcome, error) {
		calls++
		return want, nil
	})

	m.launch()
	m.launch()
	for range m.progressChan {
	}

	if calls != 1 {
		t.Fatalf("run called %d times, want 1", calls)
	}
	if m.result.outcome != want || m.result.err != nil {
		t.Fatalf("Unexpected result: %+v", m.result)
	}
}
