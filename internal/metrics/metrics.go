package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	quotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "quotes_total",
			Help:      "Quotes computed by price model and validity.",
		},
		[]string{"price_model", "valid"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "booking_requests_total",
			Help:      "Booking submissions by outcome.",
		},
		[]string{"outcome"},
	)

	forwards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "venuebook",
			Name:      "booking_forwards_total",
			Help:      "Booking payloads forwarded to the backend by result.",
		},
		[]string{"result"},
	)

	quotedTotal = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "venuebook",
			Name:      "quoted_total_amount",
			Help:      "Distribution of quoted totals.",
			Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000},
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, quotes, bookings, forwards, quotedTotal)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// ObserveQuote records a computed quote. total is ignored for quote-only venues.
func ObserveQuote(priceModel string, valid bool, total float64, priced bool) {
	v := "false"
	if valid {
		v = "true"
	}
	quotes.WithLabelValues(priceModel, v).Inc()
	if priced {
		quotedTotal.Observe(total)
	}
}

func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

func IncForward(result string) {
	forwards.WithLabelValues(result).Inc()
}
