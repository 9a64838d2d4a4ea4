package schema

// CategoryDelta captures how one taxonomy category differs between the two
// compared slices.
type CategoryDelta struct {
	Category string  `json:"category"`
	CountA   int     `json:"count_a"`
	CountB   int     `json:"count_b"`
	Delta    int     `json:"delta"`   // CountB - CountA
	ShareA   float64 `json:"share_a"` // Percent of slice A's total
	ShareB   float64 `json:"share_b"` // Percent of slice B's total
}

// ComparisonResult holds the per-category deltas between two filtered slices
// of the corpus, plus a one-line relative size summary.
type ComparisonResult struct {
	Categories []CategoryDelta `json:"categories"`
	TotalA     int             `json:"total_a"`
	TotalB     int             `json:"total_b"`
	Summary    string          `json:"summary"`
}
