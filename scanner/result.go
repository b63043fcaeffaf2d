package scanner

import (
	"rom-checker/catalog"
)

// Status classifies one file of an operation.
type Status string

const (
	StatusExact        Status = "exact"
	StatusPartial      Status = "partial"
	StatusMiss         Status = "miss"
	StatusMoved        Status = "moved"
	StatusGone         Status = "gone"
	StatusNew          Status = "new"
	StatusHashMismatch Status = "hash-mismatch"
	StatusFailed       Status = "failed"
)

func statusOf(mt catalog.MatchType) Status {
	switch mt {
	case catalog.MatchExact:
		return StatusExact
	case catalog.MatchPartial:
		return StatusPartial
	default:
		return StatusMiss
	}
}

// FileResult is the per-file output of an operation. A file matching several
// catalog roms yields one result per (game, rom) pair.
type FileResult struct {
	Path         string
	PreviousPath string // original path of a renamed or moved file
	Hash         string
	HashType     catalog.HashType
	Status       Status
	GameName     string
	RomName      string
	Expected     string   // stored hash for HashMismatch
	Candidates   []string // competing roms of a partial, competing paths of a gone file
	Cached       bool     // taken from the stored record without hashing
	Err          error
}

// Misnamed is a file whose content matches Expected under another name.
type Misnamed struct {
	Path     string
	Expected string
}

// Duplicate lists the files that exactly match the same rom.
type Duplicate struct {
	Rom   string
	Paths []string
}

// GameReport summarizes how much of one game the operation found.
type GameReport struct {
	Name       string
	TotalRoms  int
	Exact      int // declared roms with an exact match
	Partial    int // declared roms with only misnamed matches
	Full       bool
	Missing    []string
	Misnamed   []Misnamed
	Duplicates []Duplicate
}

// Outcome is everything an operation produced. Err collects the per-file
// failures that did not stop the walk.
type Outcome struct {
	BasePath string
	Files    []FileResult
	Games    []GameReport
	Err      error
}

// Count returns how many file results have the status.
func (o *Outcome) Count(status Status) int {
	n := 0
	for _, f := range o.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Filter returns the file results whose status is in statuses.
func (o *Outcome) Filter(statuses ...Status) []FileResult {
	keep := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		keep[s] = true
	}
	out := make([]FileResult, 0)
	for _, f := range o.Files {
		if keep[f.Status] {
			out = append(out, f)
		}
	}
	return out
}
