package domain

// Vec is a world-space position used for kickoff spawn points.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
