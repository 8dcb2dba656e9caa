package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	UpdateProcessingTime prometheus.Histogram
	ErrorsTotal          prometheus.Counter
	RateLimited          prometheus.Counter
	QuotesShown          *prometheus.CounterVec
	BookingsSubmitted    *prometheus.CounterVec
	ExportsSent          prometheus.Counter
}

// NewMetrics registers the bot metrics with reg, or with the default
// registry when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		UpdateProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Panics recovered while handling updates",
		}),

		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_rate_limited_total",
			Help: "Updates dropped by the per-user rate limit",
		}),

		QuotesShown: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_quotes_shown_total",
			Help: "Price quotes shown to users",
		}, []string{"price_model"}),

		BookingsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_bookings_submitted_total",
			Help: "Booking requests submitted from the bot",
		}, []string{"result"}),

		ExportsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_exports_sent_total",
			Help: "Booking exports sent to hosts",
		}),
	}
}
