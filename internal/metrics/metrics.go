package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Capture metrics
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nikki_submissions_total",
			Help: "Total accepted submissions",
		},
		[]string{"outcome"}, // "delivered" or "queued"
	)

	Drained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nikki_drained_entries_total",
			Help: "Total queued entries delivered by the drain worker",
		},
	)

	DrainRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nikki_drain_runs_total",
			Help: "Total drain passes",
		},
		[]string{"result"}, // "empty", "complete", "interrupted", "offline"
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nikki_queue_depth",
			Help: "Entries waiting in the offline queue",
		},
	)

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nikki_uploads_total",
			Help: "Total file uploads",
		},
		[]string{"result"}, // "ok" or "error"
	)

	// Session metrics
	Connects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nikki_connects_total",
			Help: "Total session connect attempts",
		},
		[]string{"result"},
	)

	Online = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nikki_session_online",
			Help: "1 when the remote session is connected",
		},
	)

	ProbeRestores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nikki_probe_restores_total",
			Help: "Total restore attempts by the session monitor",
		},
		[]string{"probe", "result"},
	)
)

// Result maps an error to the "ok"/"error" label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
