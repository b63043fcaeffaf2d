package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"rom-checker/scanner"
)

func TestFileLine(t *testing.T) {
	r := reporter{}
	base := "/roms"

	tests := []struct {
		name string
		in   scanner.FileResult
		want string
	}{
		{
			name: "exact",
			in:   scanner.FileResult{Path: "/roms/a.bin", Hash: "aa", Status: scanner.StatusExact, GameName: "Alpha"},
			want: "[OK  ] aa a.bin (Game: Alpha)",
		},
		{
			name: "renamed",
			in:   scanner.FileResult{Path: "/roms/a.bin", PreviousPath: "/roms/x.bin", Hash: "aa", Status: scanner.StatusExact, GameName: "Alpha"},
			want: "[OK  ] aa a.bin (Game: Alpha) renamed from x.bin",
		},
		{
			name: "partial",
			in:   scanner.FileResult{Path: "/roms/x.bin", Hash: "aa", Status: scanner.StatusPartial, GameName: "Alpha", RomName: "a.bin"},
			want: "[NAME] aa x.bin (Expected: a.bin, Game: Alpha)",
		},
		{
			name: "miss",
			in:   scanner.FileResult{Path: "/roms/sub/junk", Hash: "ff", Status: scanner.StatusMiss},
			want: "[MISS] ff sub/junk",
		},
		{
			name: "mismatch",
			in:   scanner.FileResult{Path: "/roms/a.bin", Hash: "bb", Expected: "aa", Status: scanner.StatusHashMismatch},
			want: "[HASH] bb a.bin (Expected: aa)",
		},
		{
			name: "new",
			in:   scanner.FileResult{Path: "/roms/n.bin", Status: scanner.StatusNew},
			want: "[NEW ] n.bin",
		},
		{
			name: "gone with candidates",
			in:   scanner.FileResult{Path: "/roms/old.bin", Hash: "aa", Status: scanner.StatusGone, Candidates: []string{"/roms/c1.bin", "/roms/c2.bin"}},
			want: "[GONE] aa old.bin (Candidates: c1.bin, c2.bin)",
		},
		{
			name: "moved",
			in:   scanner.FileResult{Path: "/roms/new.bin", PreviousPath: "/roms/old.bin", Hash: "aa", Status: scanner.StatusMoved},
			want: "[MOVE] aa old.bin -> new.bin",
		},
		{
			name: "failed",
			in:   scanner.FileResult{Path: "/roms/bad.zip", Status: scanner.StatusFailed, Err: errors.New("zip: not a valid zip file")},
			want: "[FAIL] bad.zip: zip: not a valid zip file",
		},
		{
			name: "outside base",
			in:   scanner.FileResult{Path: "/elsewhere/a.bin", Status: scanner.StatusNew},
			want: "[NEW ] /elsewhere/a.bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.fileLine(base, tt.in); got != tt.want {
				t.Errorf("fileLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReporterShowFilter(t *testing.T) {
	var buf bytes.Buffer
	r, err := newReporter(&buf, []string{"partial", "none"})
	if err != nil {
		t.Fatalf("newReporter failed: %v", err)
	}

	out := sampleOutcome()
	out.Files = append(out.Files,
		scanner.FileResult{Path: "/roms/wrong.bin", Status: scanner.StatusPartial, GameName: "Beta", RomName: "b2.bin"},
		scanner.FileResult{Path: "/roms/gone.bin", Status: scanner.StatusGone},
	)
	r.printFiles(out)

	got := buf.String()
	if strings.Contains(got, "[OK  ]") {
		t.Errorf("Exact lines should be hidden:\n%s", got)
	}
	for _, want := range []string{"[NAME]", "[MISS]", "[GONE]"} {
		if !strings.Contains(got, want) {
			t.Errorf("Output is missing %q:\n%s", want, got)
		}
	}

	if _, err := newReporter(&buf, []string{"moved"}); err == nil {
		t.Error("Expected error for an unsupported --show value")
	}
}

func TestReporterGamesAndSummary(t *testing.T) {
	var buf bytes.Buffer
	r, err := newReporter(&buf, nil)
	if err != nil {
		t.Fatalf("newReporter failed: %v", err)
	}
	out := sampleOutcome()
	out.Games[0].Duplicates = []scanner.Duplicate{{Rom: "a.bin", Paths: []string{"/roms/a.bin", "/roms/copy/a.bin"}}}
	out.Err = errors.New("read /roms/bad: permission denied")
	r.print(out)

	got := buf.String()
	for _, want := range []string{
		"Found Games:",
		"[FULL] Alpha",
		"duplicate a.bin: a.bin, copy/a.bin",
		"[PART] Beta (1 exact matches, 1 partial matches, 1 missing of 3)",
		"  [NAME] wrong.bin (Expected: b2.bin)",
		"  [MISS] b3.bin",
		"/roms: 1 exact, 1 miss",
		"[FAIL] some files could not be processed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Output is missing %q:\n%s", want, got)
		}
	}
}

func TestReporterEmptyOutcome(t *testing.T) {
	var buf bytes.Buffer
	r, _ := newReporter(&buf, nil)
	r.print(&scanner.Outcome{BasePath: "/empty"})
	if !strings.Contains(buf.String(), "No files in /empty") {
		t.Errorf("Unexpected output: %q", buf.String())
	}
	if strings.Contains(buf.String(), "Found Games") {
		t.Error("Games section should be omitted without games")
	}
}
