package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Redemption attempts by result (success/invalid/used/expired/config_error/error).",
		},
		[]string{"result"},
	)

	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Order transitions by resulting status (pending/paid/cancelled/expired).",
		},
		[]string{"status"},
	)

	emailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code_emails_total",
			Help: "Redemption-code email deliveries by result (sent/failed/skipped).",
		},
		[]string{"result"},
	)

	redeemLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redeem_latency_ms",
			Help:    "Redemption request latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			redemptionsTotal, ordersTotal, emailsTotal, redeemLatencyMs,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(norm(result)).Inc()
}

func IncOrder(status string) {
	ordersTotal.WithLabelValues(norm(status)).Inc()
}

func IncEmail(result string) {
	emailsTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveRedeemLatency(ms float64) {
	redeemLatencyMs.Observe(ms)
}
