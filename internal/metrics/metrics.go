package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teenpatti"

var (
	// Rooms is the number of rooms with a running dealer
	Rooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rooms",
		Help:      "Number of rooms with a running dealer.",
	})

	// SeatedPlayers is the number of players holding a seat
	SeatedPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "seated_players",
		Help:      "Number of players holding a seat across all rooms.",
	})

	// Rounds counts finished rounds by how they ended
	Rounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_total",
		Help:      "Rounds finished, by reason.",
	}, []string{"reason"})

	// RejectedActions counts player actions the engine refused
	RejectedActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_actions_total",
		Help:      "Player actions rejected by the game, by action.",
	}, []string{"action"})

	// Departures counts players leaving a seat by reason
	Departures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "departures_total",
		Help:      "Players removed from a seat, by reason.",
	}, []string{"reason"})
)

// Handler serves the metrics in the prometheus exposition format
func Handler() http.Handler {
	return promhttp.Handler()
}
