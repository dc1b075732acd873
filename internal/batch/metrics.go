package batch

import "github.com/prometheus/client_golang/prometheus"

var runsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "julea_batch_runs_total",
		Help: "Batch engine runs dispatched, by dispatch path and result.",
	},
	[]string{"path", "result"},
)

func init() {
	prometheus.MustRegister(runsTotal)
}
