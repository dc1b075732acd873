package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	framesReceivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "julea_server_frames_received_total",
		Help: "Request frames decoded, by opcode.",
	}, []string{"op"})

	framesSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "julea_server_frames_sent_total",
		Help: "Reply frames encoded, by opcode.",
	}, []string{"op"})

	dispatchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "julea_server_dispatch_errors_total",
		Help: "Per-operation backend errors swallowed during dispatch, by opcode.",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(framesReceivedTotal, framesSentTotal, dispatchErrorsTotal)
}

// NewMetricsServer returns an http.Server exposing /metrics on addr, using
// the same ReadHeaderTimeout-guarded construction the rest of this module's
// HTTP side channels use. Callers start it with ListenAndServe in a
// goroutine and stop it with Shutdown, same as the main listener.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
