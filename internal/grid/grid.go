// apps/go-server/internal/grid/grid.go
//
// Letter grid for a single level.
// Responsibilities:
//   - Build the grid from the level's words: row r holds letter r of every
//     word, each row shuffled on its own so columns no longer spell words.
//   - Keep one selected column per row; the selected letters read top to
//     bottom form the candidate word.
//   - Consume the selected letters after an accepted word and compact what
//     is left back into a rectangle.
//
// Invariants (hold after every exported mutation):
//   - All rows have the same length; short rows are padded with Empty.
//   - Letters in a row are packed to the left, so a row's occupied cells are
//     exactly [0, Occupied(r)).
//   - No row is entirely Empty unless the grid has no rows at all.
//   - Selection for a row is in [0, Occupied(r)-1], or 0 for an empty row.
//
// Out-of-range row/column arguments are clamped, never rejected: drag input
// routinely overshoots the row while the finger is still moving.
package grid

import (
	"math"
	"math/rand/v2"
	"strings"
)

// Empty marks a cell whose letter has been consumed.
const Empty rune = 0

// Grid owns the letter matrix and the per-row selection.
type Grid struct {
	rows [][]rune
	sel  []int
}

// New builds a grid for words: len(longest word) rows by len(words) columns.
// Each row is shuffled independently with rng (nil uses the global source).
func New(words []string, rng *rand.Rand) *Grid {
	height := 0
	letters := make([][]rune, len(words))
	for i, w := range words {
		letters[i] = []rune(strings.ToUpper(strings.TrimSpace(w)))
		if len(letters[i]) > height {
			height = len(letters[i])
		}
	}

	rows := make([][]rune, height)
	for r := range rows {
		row := make([]rune, len(words))
		for c, w := range letters {
			if r < len(w) {
				row[c] = w[r]
			} else {
				row[c] = Empty
			}
		}
		rows[r] = Shuffle(row, rng)
	}
	return FromRows(rows)
}

// FromRows builds a grid from explicit rows (copied), compacts it and
// centers every row's selection.
func FromRows(rows [][]rune) *Grid {
	g := &Grid{
		rows: make([][]rune, len(rows)),
		sel:  make([]int, len(rows)),
	}
	for i, r := range rows {
		g.rows[i] = append([]rune(nil), r...)
	}
	g.Compact()
	for r := range g.rows {
		g.sel[r] = g.Occupied(r) / 2
	}
	return g
}

// Shuffle returns a uniformly random permutation of row (Fisher–Yates).
// The input is not modified.
func Shuffle(row []rune, rng *rand.Rand) []rune {
	out := append([]rune(nil), row...)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng == nil {
		rand.Shuffle(len(out), swap)
	} else {
		rng.Shuffle(len(out), swap)
	}
	return out
}

// Height is the number of rows.
func (g *Grid) Height() int { return len(g.rows) }

// Width is the common row length.
func (g *Grid) Width() int {
	if len(g.rows) == 0 {
		return 0
	}
	return len(g.rows[0])
}

// Occupied is the number of letters left in row r (0 for a bad index).
func (g *Grid) Occupied(r int) int {
	if r < 0 || r >= len(g.rows) {
		return 0
	}
	n := 0
	for _, c := range g.rows[r] {
		if c != Empty {
			n++
		}
	}
	return n
}

// Cell returns the letter at (r, c), or Empty when out of range.
func (g *Grid) Cell(r, c int) rune {
	if r < 0 || r >= len(g.rows) || c < 0 || c >= len(g.rows[r]) {
		return Empty
	}
	return g.rows[r][c]
}

// Selection returns the selected column of row r (0 for a bad index).
func (g *Grid) Selection(r int) int {
	if r < 0 || r >= len(g.sel) {
		return 0
	}
	return g.sel[r]
}

// Candidate reads the selected letter of every row, skipping Empty cells.
func (g *Grid) Candidate() string {
	if len(g.rows) == 0 || len(g.rows[0]) == 0 {
		return ""
	}
	var b strings.Builder
	for r, row := range g.rows {
		if c := g.sel[r]; c < len(row) && row[c] != Empty {
			b.WriteRune(row[c])
		}
	}
	return b.String()
}

// Select moves row's selection to col. Both are clamped.
// It reports whether the selection changed.
func (g *Grid) Select(row, col int) bool {
	if len(g.rows) == 0 {
		return false
	}
	row = clamp(row, 0, len(g.rows)-1)
	col = clamp(col, 0, g.Occupied(row)-1)
	if g.sel[row] == col {
		return false
	}
	g.sel[row] = col
	return true
}

// Move selects the column nearest to a continuous drag position: position
// is measured from the center of column 0 and spacing is the distance
// between column centers. Non-positive spacing counts as 1.
// Rows outside the grid and NaN positions are ignored.
func (g *Grid) Move(row int, position, spacing float64) bool {
	if row < 0 || row >= len(g.rows) || math.IsNaN(position) {
		return false
	}
	if spacing <= 0 || math.IsNaN(spacing) || math.IsInf(spacing, 0) {
		spacing = 1
	}
	last := g.Occupied(row) - 1
	f := math.Round(position / spacing)
	col := 0
	switch {
	case f <= 0:
		col = 0
	case f >= float64(last):
		col = last
	default:
		col = int(f)
	}
	return g.Select(row, col)
}

// Consume empties the selected cell of every row, compacts the grid and
// returns the word that was selected.
func (g *Grid) Consume() string {
	word := g.Candidate()
	for r, row := range g.rows {
		if c := g.sel[r]; c >= 0 && c < len(row) {
			row[c] = Empty
		}
	}
	g.Compact()
	return word
}

// Compact removes Empty cells from each row (keeping letter order), drops
// rows left with no letters, pads the rest to a common width and clamps the
// selection. A selection that fell off the end of its row lands on the
// nearest letter to its left. Compacting a compacted grid changes nothing.
func (g *Grid) Compact() {
	rows := make([][]rune, 0, len(g.rows))
	sel := make([]int, 0, len(g.sel))
	width := 0
	for r, row := range g.rows {
		packed := make([]rune, 0, len(row))
		for _, c := range row {
			if c != Empty {
				packed = append(packed, c)
			}
		}
		if len(packed) == 0 {
			continue
		}
		if len(packed) > width {
			width = len(packed)
		}
		rows = append(rows, packed)
		sel = append(sel, g.sel[r])
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, Empty)
		}
		rows[i] = row
	}
	g.rows, g.sel = rows, sel
	g.clampSelection()
}

func (g *Grid) clampSelection() {
	for r := range g.sel {
		g.sel[r] = clamp(g.sel[r], 0, g.Occupied(r)-1)
	}
}

// IsEmpty reports whether no letters are left.
func (g *Grid) IsEmpty() bool {
	for _, row := range g.rows {
		for _, c := range row {
			if c != Empty {
				return false
			}
		}
	}
	return true
}

// clamp bounds v to [lo, hi]; hi < lo yields lo.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
