package analysis

import "github.com/vytor/openingstats/internal/models"

// IsTimeout reports whether a status belongs to the timeout family. Lichess does
// not reliably record a winner for these.
func IsTimeout(status string) bool {
	return status == models.StatusTimeout || status == models.StatusOutOfTime
}

// EligibleForResults decides whether a game takes part in the win/loss/draw
// analysis.
func EligibleForResults(g *models.Game) bool {
	if g == nil || !g.HasOpening() {
		return false
	}
	return !IsTimeout(g.Status)
}

// EligibleForPhase decides whether a game takes part in the opening-phase
// analysis.
func EligibleForPhase(g *models.Game) bool {
	return g != nil && g.HasOpening() && g.HasAnalysis()
}
