package scanner

import (
	"fmt"
	"sort"

	"rom-checker/catalog"

	"go.uber.org/zap"
)

type pathSet map[string]struct{}

func (p pathSet) sorted() []string {
	out := make([]string, 0, len(p))
	for path := range p {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// gameStatus tracks which declared roms of a game were found, and by which files.
type gameStatus struct {
	roms    []catalog.Rom
	exact   map[string]pathSet
	partial map[string]pathSet
}

type aggregate struct {
	searcher catalog.Searcher
	games    map[string]*gameStatus
	log      *zap.SugaredLogger
}

func newAggregate(searcher catalog.Searcher, log *zap.SugaredLogger) *aggregate {
	return &aggregate{searcher: searcher, games: make(map[string]*gameStatus), log: log}
}

func (a *aggregate) status(game string) (*gameStatus, error) {
	if st, ok := a.games[game]; ok {
		return st, nil
	}
	games, err := a.searcher.SearchByGameName(game)
	if err != nil {
		return nil, fmt.Errorf("look up game %q: %w", game, err)
	}
	if len(games) == 0 {
		a.log.Warnw("Matched game is missing from the catalog", zap.String("game", game))
		return nil, fmt.Errorf("%w: game %q", catalog.ErrNotFound, game)
	}
	st := &gameStatus{
		roms:    games[0].Roms,
		exact:   make(map[string]pathSet),
		partial: make(map[string]pathSet),
	}
	a.games[game] = st
	return st, nil
}

func (a *aggregate) addExact(game, rom, path string) error {
	st, err := a.status(game)
	if err != nil {
		return err
	}
	add(st.exact, rom, path)
	return nil
}

func (a *aggregate) addPartial(game, rom, path string) error {
	st, err := a.status(game)
	if err != nil {
		return err
	}
	add(st.partial, rom, path)
	return nil
}

func add(m map[string]pathSet, rom, path string) {
	set, ok := m[rom]
	if !ok {
		set = make(pathSet)
		m[rom] = set
	}
	set[path] = struct{}{}
}

// reports builds one report per game that is fully matched, has at least one
// exact match, or whose exact and partial matches together cover every rom.
func (a *aggregate) reports() []GameReport {
	names := make([]string, 0, len(a.games))
	for name := range a.games {
		names = append(names, name)
	}
	sort.Strings(names)

	reports := make([]GameReport, 0, len(names))
	for _, name := range names {
		if report, ok := a.games[name].report(name); ok {
			reports = append(reports, report)
		}
	}
	return reports
}

func (st *gameStatus) report(name string) (GameReport, bool) {
	if len(st.exact) == 0 && len(st.partial) == 0 {
		return GameReport{}, false
	}

	r := GameReport{Name: name, TotalRoms: len(st.roms)}
	covered := 0
	for _, rom := range st.roms {
		_, isExact := st.exact[rom.Name]
		_, isPartial := st.partial[rom.Name]
		switch {
		case isExact:
			r.Exact++
			covered++
		case isPartial:
			r.Partial++
			covered++
		default:
			r.Missing = append(r.Missing, rom.Name)
		}
	}
	r.Full = r.TotalRoms > 0 && r.Exact == r.TotalRoms

	if !r.Full && r.Exact == 0 && covered != r.TotalRoms {
		return GameReport{}, false
	}

	for _, rom := range sortedKeys(st.partial) {
		for _, path := range st.partial[rom].sorted() {
			r.Misnamed = append(r.Misnamed, Misnamed{Path: path, Expected: rom})
		}
	}
	for _, rom := range sortedKeys(st.exact) {
		if paths := st.exact[rom]; len(paths) > 1 {
			r.Duplicates = append(r.Duplicates, Duplicate{Rom: rom, Paths: paths.sorted()})
		}
	}
	return r, true
}

func sortedKeys(m map[string]pathSet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
