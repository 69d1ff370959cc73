package stroke

import "time"

// Point: one coordinate of a stroke path
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke: one continuous drawing action authored by one identity.
// Immutable once appended to a Store.
type Stroke struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Points    []Point   `json:"points"`
	Color     string    `json:"color"`
	Size      float64   `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
