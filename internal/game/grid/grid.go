// Package grid provides board geometry for 8x8 tactical combat: positions,
// Manhattan distance, bounded-cost movement reachability, and the cell
// shapes used by area skills. All functions are pure; occupancy and terrain
// cost come in as callbacks so the package stays free of combat state.
package grid

import "sort"

// Size is the board edge length. Rows and columns run [0, Size).
const Size = 8

// Point is a board cell (or a cell delta, for the cardinal directions).
type Point struct {
	Row int
	Col int
}

// InBounds reports whether p lies on the board.
func (p Point) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Add returns p shifted by delta.
func (p Point) Add(delta Point) Point {
	return Point{Row: p.Row + delta.Row, Col: p.Col + delta.Col}
}

// Manhattan returns the Manhattan distance between p and q. All range
// checks in combat use this metric.
func (p Point) Manhattan(q Point) int {
	return absInt(p.Row-q.Row) + absInt(p.Col-q.Col)
}

// directions lists the four cardinal deltas in enumeration order: up,
// left, right, down. Reachability and AI tie-breaking depend on this
// order staying fixed.
var directions = [4]Point{{Row: -1}, {Col: -1}, {Col: 1}, {Row: 1}}

// Directions returns the cardinal deltas in enumeration order.
func Directions() [4]Point {
	return directions
}

// DirectionToward returns the unit cardinal delta pointing from p toward q
// along the dominant axis. Ties prefer the vertical axis. Returns the zero
// Point when p == q.
func DirectionToward(p, q Point) Point {
	dr := q.Row - p.Row
	dc := q.Col - p.Col
	if dr == 0 && dc == 0 {
		return Point{}
	}
	if absInt(dr) >= absInt(dc) {
		return Point{Row: signInt(dr)}
	}
	return Point{Col: signInt(dc)}
}

// ReachableCells returns every cell reachable from origin within budget
// movement points, moving in cardinal steps. Entering a cell costs
// costAt(cell) points (nil means cost 1 everywhere); blocked cells (nil
// means none) can be neither entered nor passed through. The origin itself
// is excluded.
//
// Precondition: costAt, when non-nil, must return >= 1 for every in-bounds
// cell.
// Postcondition: Result is sorted row-major and contains only in-bounds,
// unblocked cells distinct from origin.
func ReachableCells(origin Point, budget int, costAt func(Point) int, blocked func(Point) bool) []Point {
	if !origin.InBounds() || budget <= 0 {
		return nil
	}
	best := map[Point]int{origin: 0}
	queue := []Point{origin}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range directions {
			next := cur.Add(d)
			if !next.InBounds() {
				continue
			}
			if blocked != nil && blocked(next) {
				continue
			}
			step := 1
			if costAt != nil {
				step = costAt(next)
			}
			cost := best[cur] + step
			if cost > budget {
				continue
			}
			if prev, seen := best[next]; seen && prev <= cost {
				continue
			}
			best[next] = cost
			queue = append(queue, next)
		}
	}
	out := make([]Point, 0, len(best)-1)
	for p := range best {
		if p != origin {
			out = append(out, p)
		}
	}
	SortCells(out)
	return out
}

// WithinRadius returns every in-bounds cell whose Manhattan distance from
// center is at most radius, in row-major order. The center itself is
// included.
func WithinRadius(center Point, radius int) []Point {
	if radius < 0 {
		return nil
	}
	var out []Point
	for row := center.Row - radius; row <= center.Row+radius; row++ {
		for col := center.Col - radius; col <= center.Col+radius; col++ {
			p := Point{Row: row, Col: col}
			if p.InBounds() && center.Manhattan(p) <= radius {
				out = append(out, p)
			}
		}
	}
	return out
}

// LineFrom returns up to length cells extending from origin in the given
// cardinal direction, nearest first, stopping at the board edge. The
// origin itself is excluded. A zero delta yields nil.
func LineFrom(origin, delta Point, length int) []Point {
	if delta == (Point{}) {
		return nil
	}
	var out []Point
	cur := origin
	for i := 0; i < length; i++ {
		cur = cur.Add(delta)
		if !cur.InBounds() {
			break
		}
		out = append(out, cur)
	}
	return out
}

// ContainsCell reports whether cells includes p.
func ContainsCell(cells []Point, p Point) bool {
	for _, c := range cells {
		if c == p {
			return true
		}
	}
	return false
}

// SortCells orders cells row-major in place.
func SortCells(cells []Point) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func signInt(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
