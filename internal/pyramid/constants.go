package pyramid

const (
	minFilterLen  = 2 // Shortest admissible filter
	detailBands2D = 3 // H, V, D
)
