package model

// Defender positions with unconditional role assignments.
const (
	PositionSafety     = "S"
	PositionLinebacker = "LB"
)

// Defender is a coverage player with both a hard role label and a soft
// probability distribution over roles. Build one with alignment.Classify.
type Defender struct {
	Name     string
	Team     string
	Position string
	Stats    CoverageStats
	Role     Role
	Probs    RoleWeights
}
