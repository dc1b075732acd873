package pool

import "github.com/prometheus/client_golang/prometheus"

var (
	idleConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "julea_pool_idle_connections",
			Help: "Number of idle pooled connections, by pool and server index.",
		},
		[]string{"pool", "server"},
	)

	leasedConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "julea_pool_leased_connections",
			Help: "Number of currently leased connections, by pool and server index.",
		},
		[]string{"pool", "server"},
	)
)

func init() {
	prometheus.MustRegister(idleConnections, leasedConnections)
}
