package world

import "math"

// Elo K-factor and logistic scale for the ranked ladder.
const (
	eloK     = 32
	eloScale = 400
)

// EloDelta returns the points the winner takes from the loser. Zero-sum;
// never less than 1, so a win over a far weaker opponent still counts.
func EloDelta(winnerRating, loserRating int) int {
	expected := 1 / (1 + math.Pow(10, float64(loserRating-winnerRating)/eloScale))
	d := int(math.Round(eloK * (1 - expected)))
	if d < 1 {
		d = 1
	}
	return d
}
