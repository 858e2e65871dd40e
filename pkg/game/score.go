// This file combines the title and artist similarities with a time bonus into
// the final round score. The weights and the correctness threshold were tuned
// by play testing; they are kept on a struct so deployments can adjust them
// through configuration instead of rebuilding.

package game

import "math"

// GuessResult holds the outcome of a scored round. At most one result exists
// per round and it is never modified after creation.
type GuessResult struct {
	Score   int  `json:"score"`
	Correct bool `json:"correct"`
}

// Scoring bundles the tunable constants of the score calculation.
type Scoring struct {
	// CorrectThreshold is the similarity both components must exceed for
	// the guess to count as correct.
	CorrectThreshold float64
	// SimilarityWeight and TimeBonusWeight are the point shares of the
	// averaged similarity and the time bonus. They normally sum to 100.
	SimilarityWeight float64
	TimeBonusWeight  float64
	// BonusWindow is the number of seconds over which the time bonus
	// decays linearly to zero.
	BonusWindow float64
}

// DefaultScoring is the standard tuning: 80/20 split, 0.8 correctness
// threshold and a 30 second bonus window.
var DefaultScoring = Scoring{
	CorrectThreshold: 0.8,
	SimilarityWeight: 80,
	TimeBonusWeight:  20,
	BonusWindow:      30,
}

// Score rates the typed guesses against the canonical title and artist. The
// two similarities are averaged, a time bonus ramps down linearly over
// BonusWindow seconds, and the result is rounded to an integer. A guess is
// correct only when both similarities exceed CorrectThreshold, independent of
// the numeric score. The function is pure; callers may invoke it from any
// goroutine.
func (s Scoring) Score(titleGuess, artistGuess, title, artist string, elapsed float64) GuessResult {
	titleSim := Similarity(titleGuess, title)
	artistSim := Similarity(artistGuess, artist)
	avg := (titleSim + artistSim) / 2
	bonus := 1 - elapsed/s.BonusWindow
	if bonus < 0 {
		bonus = 0
	}
	return GuessResult{
		Score:   int(math.Round(avg*s.SimilarityWeight + bonus*s.TimeBonusWeight)),
		Correct: titleSim > s.CorrectThreshold && artistSim > s.CorrectThreshold,
	}
}
