package grid

// Grid: dense per-pixel last-writer map for color-clash scoring. Each cell
// holds the id of the player that painted it most recently, or "" when
// untouched. A player's score is the number of cells they own; it is
// always derived from the cells, never tracked separately.
// Not safe for concurrent use; the owning room serializes access.
type Grid struct {
	width  int
	height int
	owners []string
}

func New(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		owners: make([]string, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Paint: claims every cell within brushSize of (x, y), clipped to canvas
// bounds, for userID. Last write wins; there is no blending. Work is
// bounded by the brush, never by the canvas. Returns the number of cells
// touched.
func (g *Grid) Paint(userID string, x, y, brushSize int) int {
	if brushSize < 1 {
		return 0
	}

	minX := clamp(x-brushSize, 0, g.width-1)
	maxX := clamp(x+brushSize, 0, g.width-1)
	minY := clamp(y-brushSize, 0, g.height-1)
	maxY := clamp(y+brushSize, 0, g.height-1)
	if minX > maxX || minY > maxY {
		return 0
	}

	painted := 0
	rr := brushSize * brushSize
	for cy := minY; cy <= maxY; cy++ {
		dy := cy - y
		for cx := minX; cx <= maxX; cx++ {
			dx := cx - x
			if dx*dx+dy*dy > rr {
				continue
			}
			g.owners[cy*g.width+cx] = userID
			painted++
		}
	}
	return painted
}

// Owner: returns the current owner of a cell, or "" when unowned or out
// of bounds
func (g *Grid) Owner(x, y int) string {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return ""
	}
	return g.owners[y*g.width+x]
}

// Score: counts the cells currently owned by userID
func (g *Grid) Score(userID string) int {
	score := 0
	for _, owner := range g.owners {
		if owner == userID {
			score++
		}
	}
	return score
}

// Scores: counts owned cells for every painter in one pass
func (g *Grid) Scores() map[string]int {
	scores := make(map[string]int)
	for _, owner := range g.owners {
		if owner != "" {
			scores[owner]++
		}
	}
	return scores
}

// Reset: releases every cell. Called when a game starts so leftover
// paint from the waiting phase never counts.
func (g *Grid) Reset() {
	for i := range g.owners {
		g.owners[i] = ""
	}
}

// Dump: returns a copy of the cell owners for snapshotting
func (g *Grid) Dump() []string {
	out := make([]string, len(g.owners))
	copy(out, g.owners)
	return out
}

// Restore: replaces the cell owners from a snapshot. Ignored when the
// snapshot dimensions don't match.
func (g *Grid) Restore(owners []string) bool {
	if len(owners) != len(g.owners) {
		return false
	}
	copy(g.owners, owners)
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
