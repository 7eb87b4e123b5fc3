package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bvl"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		},
		[]string{"route", "status"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of upstream API calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"api", "method", "status"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking changes by event and booking type.",
		},
		[]string{"event", "booking_type"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, upstreamDuration, bookings)
	})
}

// IncHTTP counts a served request. Route is the matched route pattern, not the raw path.
func IncHTTP(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveUpstream records one upstream call. Status 0 means the call failed before a response.
func ObserveUpstream(api, method string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	upstreamDuration.WithLabelValues(api, method, label).Observe(d.Seconds())
}

func IncBooking(event, bookingType string) {
	bookings.WithLabelValues(event, bookingType).Inc()
}
