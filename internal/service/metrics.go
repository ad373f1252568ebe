package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// result: strict, lenient, malformed_reply, completion_failed
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parenting_evaluations_total",
			Help: "Total number of response evaluations by result.",
		},
		[]string{"result"},
	)
	roundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parenting_rounds_total",
			Help: "Total number of submitted rounds by status.",
		},
		[]string{"status"}, // completed, failed
	)
	finishedGamesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parenting_finished_games_total",
			Help: "Total number of concluded games by outcome.",
		},
		[]string{"outcome"},
	)
	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parenting_sessions_created_total",
		Help: "Number of sessions created since start.",
	})
)
