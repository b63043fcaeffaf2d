package scanner

import (
	"testing"

	"rom-checker/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAggregateReports(t *testing.T) {
	backend := newIndex(
		catalog.Game{Name: "Multi", Roms: []catalog.Rom{rom("1.bin", "h1"), rom("2.bin", "h2"), rom("3.bin", "h3")}},
		catalog.Game{Name: "Covered", Roms: []catalog.Rom{rom("x.bin", "hx")}},
		catalog.Game{Name: "Unreported", Roms: []catalog.Rom{rom("y.bin", "hy"), rom("z.bin", "hz")}},
		catalog.Game{Name: "Dupes", Roms: []catalog.Rom{rom("d.bin", "hd")}},
	)
	agg := newAggregate(backend, zap.NewNop().Sugar())

	require.NoError(t, agg.addExact("Multi", "1.bin", "/r/1.bin"))
	require.NoError(t, agg.addPartial("Multi", "2.bin", "/r/two.bin"))
	require.NoError(t, agg.addPartial("Covered", "x.bin", "/r/ex.bin"))
	require.NoError(t, agg.addPartial("Unreported", "y.bin", "/r/why.bin"))
	require.NoError(t, agg.addExact("Dupes", "d.bin", "/r/b/d.bin"))
	require.NoError(t, agg.addExact("Dupes", "d.bin", "/r/a/d.bin"))

	reports := agg.reports()
	require.Len(t, reports, 3)

	assert.Equal(t, GameReport{
		Name: "Covered", TotalRoms: 1, Partial: 1,
		Misnamed: []Misnamed{{Path: "/r/ex.bin", Expected: "x.bin"}},
	}, reports[0])

	assert.Equal(t, GameReport{
		Name: "Dupes", TotalRoms: 1, Exact: 1, Full: true,
		Duplicates: []Duplicate{{Rom: "d.bin", Paths: []string{"/r/a/d.bin", "/r/b/d.bin"}}},
	}, reports[1])

	assert.Equal(t, GameReport{
		Name: "Multi", TotalRoms: 3, Exact: 1, Partial: 1,
		Missing:  []string{"3.bin"},
		Misnamed: []Misnamed{{Path: "/r/two.bin", Expected: "2.bin"}},
	}, reports[2])
}

func TestAggregateUnknownGame(t *testing.T) {
	agg := newAggregate(newIndex(), zap.NewNop().Sugar())

	err := agg.addExact("Ghost", "g.bin", "/r/g.bin")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Empty(t, agg.reports())
}
