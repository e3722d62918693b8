package grid_test

import (
	"testing"

	"github.com/ironveil/tactics/internal/game/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPoint_InBounds verifies the board boundary on all four edges.
func TestPoint_InBounds(t *testing.T) {
	assert.True(t, grid.Point{Row: 0, Col: 0}.InBounds())
	assert.True(t, grid.Point{Row: 7, Col: 7}.InBounds())
	assert.False(t, grid.Point{Row: -1, Col: 0}.InBounds())
	assert.False(t, grid.Point{Row: 0, Col: 8}.InBounds())
	assert.False(t, grid.Point{Row: 8, Col: 0}.InBounds())
}

// TestPoint_Manhattan verifies the distance metric is symmetric and exact.
func TestPoint_Manhattan(t *testing.T) {
	a := grid.Point{Row: 2, Col: 3}
	b := grid.Point{Row: 5, Col: 1}
	assert.Equal(t, 5, a.Manhattan(b))
	assert.Equal(t, 5, b.Manhattan(a))
	assert.Equal(t, 0, a.Manhattan(a))
}

// TestDirectionToward verifies dominant-axis selection with the vertical
// tie-break.
func TestDirectionToward(t *testing.T) {
	from := grid.Point{Row: 3, Col: 3}
	assert.Equal(t, grid.Point{Row: 1}, grid.DirectionToward(from, grid.Point{Row: 6, Col: 4}),
		"dominant vertical axis wins")
	assert.Equal(t, grid.Point{Col: -1}, grid.DirectionToward(from, grid.Point{Row: 4, Col: 0}),
		"dominant horizontal axis wins")
	assert.Equal(t, grid.Point{Row: -1}, grid.DirectionToward(from, grid.Point{Row: 1, Col: 5}),
		"equal axes fall back to vertical")
	assert.Equal(t, grid.Point{}, grid.DirectionToward(from, from),
		"same cell yields zero delta")
}

// TestReachableCells_UnitCost verifies plain flood fill: budget 2 from an
// open center reaches the Manhattan diamond minus the origin.
func TestReachableCells_UnitCost(t *testing.T) {
	origin := grid.Point{Row: 3, Col: 3}
	cells := grid.ReachableCells(origin, 2, nil, nil)

	require.Len(t, cells, 12, "Manhattan diamond of radius 2 has 13 cells incl. origin")
	assert.False(t, grid.ContainsCell(cells, origin), "origin is never a move target")
	for _, c := range cells {
		assert.LessOrEqual(t, origin.Manhattan(c), 2)
	}
}

// TestReachableCells_BlockedCellsExcluded verifies occupied cells are
// neither entered nor passed through.
func TestReachableCells_BlockedCellsExcluded(t *testing.T) {
	origin := grid.Point{Row: 0, Col: 0}
	wall := map[grid.Point]bool{
		{Row: 0, Col: 1}: true,
		{Row: 1, Col: 0}: true,
	}
	cells := grid.ReachableCells(origin, 3, nil, func(p grid.Point) bool { return wall[p] })
	assert.Empty(t, cells, "origin boxed in by occupied neighbors has no moves")
}

// TestReachableCells_TerrainCost verifies expensive terrain consumes extra
// budget.
func TestReachableCells_TerrainCost(t *testing.T) {
	origin := grid.Point{Row: 3, Col: 3}
	costAt := func(p grid.Point) int {
		if p.Col > 3 {
			return 2
		}
		return 1
	}
	cells := grid.ReachableCells(origin, 2, costAt, nil)

	assert.True(t, grid.ContainsCell(cells, grid.Point{Row: 3, Col: 4}),
		"one expensive step fits in budget 2")
	assert.False(t, grid.ContainsCell(cells, grid.Point{Row: 3, Col: 5}),
		"two expensive steps exceed budget 2")
	assert.True(t, grid.ContainsCell(cells, grid.Point{Row: 3, Col: 1}),
		"two cheap steps fit in budget 2")
}

// TestReachableCells_EdgeCases verifies degenerate inputs yield no cells.
func TestReachableCells_EdgeCases(t *testing.T) {
	assert.Nil(t, grid.ReachableCells(grid.Point{Row: -1, Col: 0}, 3, nil, nil),
		"off-board origin has no reachable cells")
	assert.Nil(t, grid.ReachableCells(grid.Point{Row: 3, Col: 3}, 0, nil, nil),
		"zero budget has no reachable cells")
}

// TestReachableCells_SortedRowMajor verifies deterministic enumeration
// order, which AI tie-breaking depends on.
func TestReachableCells_SortedRowMajor(t *testing.T) {
	cells := grid.ReachableCells(grid.Point{Row: 3, Col: 3}, 2, nil, nil)
	for i := 1; i < len(cells); i++ {
		prev, cur := cells[i-1], cells[i]
		ordered := prev.Row < cur.Row || (prev.Row == cur.Row && prev.Col < cur.Col)
		assert.True(t, ordered, "cells[%d]=%v must precede cells[%d]=%v", i-1, prev, i, cur)
	}
}

// TestReachableCells_Property verifies every reachable cell is in bounds,
// unblocked, and within budget of the origin for arbitrary block sets.
func TestReachableCells_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		origin := grid.Point{
			Row: rapid.IntRange(0, 7).Draw(rt, "row"),
			Col: rapid.IntRange(0, 7).Draw(rt, "col"),
		}
		budget := rapid.IntRange(1, 6).Draw(rt, "budget")
		blockedCells := rapid.MapOf(
			rapid.Custom(func(rt *rapid.T) grid.Point {
				return grid.Point{
					Row: rapid.IntRange(0, 7).Draw(rt, "brow"),
					Col: rapid.IntRange(0, 7).Draw(rt, "bcol"),
				}
			}),
			rapid.Just(true),
		).Draw(rt, "blocked")

		cells := grid.ReachableCells(origin, budget, nil, func(p grid.Point) bool {
			return blockedCells[p]
		})
		for _, c := range cells {
			assert.True(rt, c.InBounds())
			assert.False(rt, blockedCells[c], "blocked cell %v must not be reachable", c)
			assert.NotEqual(rt, origin, c)
			assert.LessOrEqual(rt, origin.Manhattan(c), budget,
				"unit-cost reachability can never beat Manhattan distance")
		}
	})
}

// TestWithinRadius verifies the Manhattan diamond clips at board edges.
func TestWithinRadius(t *testing.T) {
	center := grid.Point{Row: 0, Col: 0}
	cells := grid.WithinRadius(center, 1)
	assert.ElementsMatch(t, []grid.Point{
		{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0},
	}, cells)

	full := grid.WithinRadius(grid.Point{Row: 3, Col: 3}, 2)
	assert.Len(t, full, 13, "open radius-2 diamond has 13 cells")
}

// TestLineFrom verifies line extension stops at the board edge and
// excludes the origin.
func TestLineFrom(t *testing.T) {
	origin := grid.Point{Row: 6, Col: 3}
	line := grid.LineFrom(origin, grid.Point{Row: 1}, 3)
	assert.Equal(t, []grid.Point{{Row: 7, Col: 3}}, line,
		"line clips at the bottom edge")

	line = grid.LineFrom(origin, grid.Point{Col: 1}, 2)
	assert.Equal(t, []grid.Point{{Row: 6, Col: 4}, {Row: 6, Col: 5}}, line)

	assert.Nil(t, grid.LineFrom(origin, grid.Point{}, 3), "zero delta yields no line")
}
