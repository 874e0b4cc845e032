// Package telemetry provides Prometheus metrics for the trivia engine.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	GamesStarted       *prometheus.CounterVec // mode=normal|super
	GameOutcomes       *prometheus.CounterVec // outcome=correct|incorrect|expired|cleared
	SourcingFailures   *prometheus.CounterVec // source name
	SourcingExhausted  prometheus.Counter
	SpecialRolls       *prometheus.CounterVec // status=shiny|toxic
	CooldownRejections prometheus.Counter
	ActiveGamesGauge   prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		GamesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trivia_games_started_total",
			Help: "Number of trivia games started",
		}, []string{"mode"})
		GameOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trivia_game_outcomes_total",
			Help: "Terminal trivia game outcomes",
		}, []string{"outcome"})
		SourcingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trivia_sourcing_failures_total",
			Help: "Question fetch/validation failures per source",
		}, []string{"source"})
		SourcingExhausted = promauto.NewCounter(prometheus.CounterOpts{
			Name: "trivia_sourcing_exhausted_total",
			Help: "Sourcing attempts that exhausted every candidate source",
		})
		SpecialRolls = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trivia_special_rolls_total",
			Help: "Shiny and toxic modifiers applied to new games",
		}, []string{"status"})
		CooldownRejections = promauto.NewCounter(prometheus.CounterOpts{
			Name: "trivia_super_cooldown_rejections_total",
			Help: "Super trivia batches rejected by the per-channel cooldown",
		})
		ActiveGamesGauge = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "trivia_active_games",
			Help: "Currently active trivia games across all channels",
		})
	})
}

// RecordSourcingFailure increments the per-source failure counter if
// metrics are initialized.
func RecordSourcingFailure(source string) {
	if SourcingFailures != nil {
		SourcingFailures.WithLabelValues(source).Inc()
	}
}

// RecordSourcingExhausted increments the exhaustion counter.
func RecordSourcingExhausted() {
	if SourcingExhausted != nil {
		SourcingExhausted.Inc()
	}
}

// RecordCooldownRejection increments the cooldown rejection counter.
func RecordCooldownRejection() {
	if CooldownRejections != nil {
		CooldownRejections.Inc()
	}
}

// RecordOutcome increments a terminal outcome counter.
func RecordOutcome(outcome string) {
	if GameOutcomes != nil {
		GameOutcomes.WithLabelValues(outcome).Inc()
	}
}

// RecordGameStart increments the started counter for a mode.
func RecordGameStart(mode string) {
	if GamesStarted != nil {
		GamesStarted.WithLabelValues(mode).Inc()
	}
}

// RecordSpecialRoll increments the special status counter.
func RecordSpecialRoll(status string) {
	if SpecialRolls != nil {
		SpecialRolls.WithLabelValues(status).Inc()
	}
}

// SetActiveGames records the current number of live games.
func SetActiveGames(n int) {
	if ActiveGamesGauge != nil {
		ActiveGamesGauge.Set(float64(n))
	}
}
