// Package models contains domain types for logia-engine.
package models

// Rank is a member's grade within the lodge. Ranks form a total order:
// aprendiz < companero < maestro.
type Rank string

// Rank constants, lowest grade first.
const (
	RankAprendiz  Rank = "aprendiz"
	RankCompanero Rank = "companero"
	RankMaestro   Rank = "maestro"
)

// ValidRanks contains all valid rank values in ascending order.
var ValidRanks = []Rank{RankAprendiz, RankCompanero, RankMaestro}

// rankWeights maps each rank to its position in the total order.
var rankWeights = map[Rank]int{
	RankAprendiz:  1,
	RankCompanero: 2,
	RankMaestro:   3,
}

// Weight returns the rank's position in the total order. Unknown ranks
// weigh 0, below every valid rank.
func (r Rank) Weight() int {
	return rankWeights[r]
}

// AtLeast reports whether r is equal to or above other in the grade order.
func (r Rank) AtLeast(other Rank) bool {
	return r.Weight() >= other.Weight()
}

// IsValidRank checks if the given rank is valid.
func IsValidRank(rank string) bool {
	_, ok := rankWeights[Rank(rank)]
	return ok
}

// ParseRank validates a raw rank string at the API boundary.
func ParseRank(raw string) (Rank, bool) {
	if IsValidRank(raw) {
		return Rank(raw), true
	}
	return "", false
}
