package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Sessions  prometheus.Gauge
	Rooms     prometheus.Gauge
	Messages  *prometheus.CounterVec
	Rejected  *prometheus.CounterVec
	Reclaimed *prometheus.CounterVec
	Dropped   prometheus.Counter
	Finished  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "toguz_relay_sessions",
			Help: "Open websocket sessions.",
		}),
		Rooms: f.NewGauge(prometheus.GaugeOpts{
			Name: "toguz_relay_rooms",
			Help: "Rooms in the room table.",
		}),
		Messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "toguz_relay_messages_total",
			Help: "Inbound messages by type.",
		}, []string{"type"}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "toguz_relay_rejected_total",
			Help: "Moves refused, by path.",
		}, []string{"path"}),
		Reclaimed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "toguz_relay_rooms_reclaimed_total",
			Help: "Rooms removed by the sweeper, by reason.",
		}, []string{"reason"}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "toguz_relay_dropped_messages_total",
			Help: "Outbound messages dropped on a full send buffer.",
		}),
		Finished: f.NewCounter(prometheus.CounterOpts{
			Name: "toguz_relay_games_finished_total",
			Help: "Games that reached a final position.",
		}),
	}
}
