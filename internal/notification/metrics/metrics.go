package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the notification subsystem.
type Metrics struct {
	Created        *prometheus.CounterVec
	MarkedRead     prometheus.Counter
	ReadAllUpdated prometheus.Histogram
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	UnreadFailSoft prometheus.Counter
}

// New creates and registers the notification metrics.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "addiscares_notifications_created_total",
			Help: "Notifications created, by addressing shape",
		}, []string{"shape"}),
		MarkedRead: promauto.NewCounter(prometheus.CounterOpts{
			Name: "addiscares_notifications_marked_read_total",
			Help: "Read receipts newly appended to the ledger",
		}),
		ReadAllUpdated: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "addiscares_notifications_read_all_updated",
			Help:    "Notifications updated per mark-all-read batch",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "addiscares_unread_cache_hits_total",
			Help: "Unread-count lookups served from Redis",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "addiscares_unread_cache_misses_total",
			Help: "Unread-count lookups recomputed from the ledger",
		}),
		UnreadFailSoft: promauto.NewCounter(prometheus.CounterOpts{
			Name: "addiscares_unread_fail_soft_total",
			Help: "Unread-count requests degraded to zero by a store failure",
		}),
	}
}
