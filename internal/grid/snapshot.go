package grid

// CellView is one cell as the presentation layer sees it.
type CellView struct {
	Letter   string `json:"letter"` // "" when empty
	Empty    bool   `json:"empty"`
	Selected bool   `json:"selected"`
}

// Snapshot is a read-only copy of the grid and its selection.
type Snapshot struct {
	Rows      [][]CellView `json:"rows"`
	Selection []int        `json:"selection"`
	Candidate string       `json:"candidate"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
}

// Snapshot copies the current state; later mutations do not affect it.
func (g *Grid) Snapshot() Snapshot {
	s := Snapshot{
		Rows:      make([][]CellView, len(g.rows)),
		Selection: append([]int(nil), g.sel...),
		Candidate: g.Candidate(),
		Width:     g.Width(),
		Height:    g.Height(),
	}
	for r, row := range g.rows {
		views := make([]CellView, len(row))
		for c, ch := range row {
			v := CellView{Empty: ch == Empty, Selected: c == g.sel[r]}
			if ch != Empty {
				v.Letter = string(ch)
			}
			views[c] = v
		}
		s.Rows[r] = views
	}
	return s
}

// Letters returns a copy of the raw rows (Empty cells included).
func (g *Grid) Letters() [][]rune {
	out := make([][]rune, len(g.rows))
	for i, row := range g.rows {
		out[i] = append([]rune(nil), row...)
	}
	return out
}
