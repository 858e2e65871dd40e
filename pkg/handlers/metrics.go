// This file defines the Prometheus collectors for the game. Rounds and scores
// are the interesting signals; HTTP-level metrics are left to the reverse
// proxy.

package handlers

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"Guess-The-Track/pkg/game"
)

var (
	roundsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "guessthetrack",
		Name:      "rounds_started_total",
		Help:      "Number of rounds for which playback was started.",
	})
	guessesScored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guessthetrack",
		Name:      "guesses_scored_total",
		Help:      "Number of scored guesses, labelled by correctness.",
	}, []string{"correct"})
	guessScores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "guessthetrack",
		Name:      "guess_score",
		Help:      "Distribution of final round scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
)

func init() {
	prometheus.MustRegister(roundsStarted, guessesScored, guessScores)
}

// ObserveResult feeds a scored round into the metrics. It is installed as the
// game manager's completion hook so every scored round is counted exactly
// once.
func ObserveResult(res game.GuessResult) {
	guessesScored.WithLabelValues(strconv.FormatBool(res.Correct)).Inc()
	guessScores.Observe(float64(res.Score))
}
