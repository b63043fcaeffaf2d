package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"rom-checker/scanner"
	"rom-checker/ui"
)

// reporter prints operation outcomes as tagged lines.
type reporter struct {
	w     io.Writer
	color bool
	show  map[scanner.Status]bool // nil shows every status
}

func newReporter(w io.Writer, show []string) (reporter, error) {
	r := reporter{w: w, color: ui.ShouldColorize(w)}
	if len(show) == 0 {
		return r, nil
	}
	r.show = make(map[scanner.Status]bool, len(show))
	for _, s := range show {
		switch status := scanner.Status(strings.ToLower(strings.TrimSpace(s))); status {
		case scanner.StatusExact, scanner.StatusPartial, scanner.StatusMiss:
			r.show[status] = true
		case "none":
			r.show[scanner.StatusMiss] = true
		case "":
		default:
			return reporter{}, fmt.Errorf("--show accepts exact, partial and miss, got %q", s)
		}
	}
	return r, nil
}

// visible applies the --show filter. It only narrows the match statuses;
// moved, gone, new, mismatched and failed files are always printed.
func (r reporter) visible(status scanner.Status) bool {
	if r.show == nil {
		return true
	}
	switch status {
	case scanner.StatusExact, scanner.StatusPartial, scanner.StatusMiss:
		return r.show[status]
	default:
		return true
	}
}

func (r reporter) tag(t ui.Tag) string {
	return t.Render(r.color)
}

func displayPath(base, path string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// fileLine renders one file result.
func (r reporter) fileLine(base string, f scanner.FileResult) string {
	path := displayPath(base, f.Path)
	switch f.Status {
	case scanner.StatusExact:
		line := fmt.Sprintf("%s %s %s (Game: %s)", r.tag(ui.TagOK), f.Hash, path, f.GameName)
		if f.PreviousPath != "" {
			line += fmt.Sprintf(" renamed from %s", displayPath(base, f.PreviousPath))
		}
		return line
	case scanner.StatusPartial:
		line := fmt.Sprintf("%s %s %s (Expected: %s, Game: %s)", r.tag(ui.TagName), f.Hash, path, f.RomName, f.GameName)
		if len(f.Candidates) > 1 {
			line += fmt.Sprintf(" one of %d candidates", len(f.Candidates))
		}
		if f.Err != nil {
			line += fmt.Sprintf(" rename failed: %v", f.Err)
		}
		return line
	case scanner.StatusMiss:
		return fmt.Sprintf("%s %s %s", r.tag(ui.TagMiss), f.Hash, path)
	case scanner.StatusHashMismatch:
		return fmt.Sprintf("%s %s %s (Expected: %s)", r.tag(ui.TagHash), f.Hash, path, f.Expected)
	case scanner.StatusNew:
		return fmt.Sprintf("%s %s", r.tag(ui.TagNew), path)
	case scanner.StatusGone:
		line := fmt.Sprintf("%s %s %s", r.tag(ui.TagGone), f.Hash, path)
		if len(f.Candidates) > 0 {
			shown := make([]string, len(f.Candidates))
			for i, c := range f.Candidates {
				shown[i] = displayPath(base, c)
			}
			line += fmt.Sprintf(" (Candidates: %s)", strings.Join(shown, ", "))
		}
		return line
	case scanner.StatusMoved:
		return fmt.Sprintf("%s %s %s -> %s", r.tag(ui.TagMove), f.Hash, displayPath(base, f.PreviousPath), path)
	default:
		return fmt.Sprintf("%s %s: %v", r.tag(ui.TagFail), path, f.Err)
	}
}

// printFiles writes the visible file results.
func (r reporter) printFiles(out *scanner.Outcome) {
	for _, f := range out.Files {
		if r.visible(f.Status) {
			fmt.Fprintln(r.w, r.fileLine(out.BasePath, f))
		}
	}
}

// printGames writes the per-game coverage section.
func (r reporter) printGames(out *scanner.Outcome) {
	if len(out.Games) == 0 {
		return
	}
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, ui.Title("Found Games:", r.color))
	for _, g := range out.Games {
		if g.Full {
			fmt.Fprintf(r.w, "%s %s\n", r.tag(ui.TagFull), g.Name)
		} else {
			fmt.Fprintf(r.w, "%s %s (%d exact matches, %d partial matches, %d missing of %d)\n",
				r.tag(ui.TagPart), g.Name, g.Exact, g.Partial, len(g.Missing), g.TotalRoms)
			for _, m := range g.Misnamed {
				fmt.Fprintf(r.w, "  %s %s (Expected: %s)\n", r.tag(ui.TagName), displayPath(out.BasePath, m.Path), m.Expected)
			}
			for _, name := range g.Missing {
				fmt.Fprintf(r.w, "  %s %s\n", r.tag(ui.TagMiss), name)
			}
		}
		for _, d := range g.Duplicates {
			shown := make([]string, len(d.Paths))
			for i, p := range d.Paths {
				shown[i] = displayPath(out.BasePath, p)
			}
			fmt.Fprintf(r.w, "  duplicate %s: %s\n", d.Rom, strings.Join(shown, ", "))
		}
	}
}

// printSummary writes the status counts and the collected per-file errors.
func (r reporter) printSummary(out *scanner.Outcome) {
	statuses := []scanner.Status{
		scanner.StatusExact, scanner.StatusPartial, scanner.StatusMiss,
		scanner.StatusMoved, scanner.StatusGone, scanner.StatusNew,
		scanner.StatusHashMismatch, scanner.StatusFailed,
	}
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if n := out.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	fmt.Fprintln(r.w)
	if len(parts) == 0 {
		fmt.Fprintf(r.w, "No files in %s\n", out.BasePath)
	} else {
		fmt.Fprintf(r.w, "%s: %s\n", out.BasePath, strings.Join(parts, ", "))
	}
	if out.Err != nil {
		fmt.Fprintf(r.w, "%s some files could not be processed: %v\n", r.tag(ui.TagFail), out.Err)
	}
}

// print writes the whole outcome.
func (r reporter) print(out *scanner.Outcome) {
	r.printFiles(out)
	r.printGames(out)
	r.printSummary(out)
}
