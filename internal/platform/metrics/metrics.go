package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Customer lookup outcomes.
const (
	OutcomeFound        = "found"
	OutcomeNotFound     = "not_found"
	OutcomeUnauthorized = "unauthorized"
	OutcomeOther        = "other"
)

// Cache results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// OrdersMetrics holds the Prometheus collectors of the orders service.
type OrdersMetrics struct {
	customerLookups  *prometheus.CounterVec
	customerDuration prometheus.Histogram
	customerCache    *prometheus.CounterVec
	ordersCreated    prometheus.Counter
	violations       *prometheus.CounterVec
	eventsPublished  *prometheus.CounterVec
}

// NewOrdersMetrics registers the collectors with the default registerer.
func NewOrdersMetrics() *OrdersMetrics {
	return NewOrdersMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrdersMetricsWithRegisterer registers the collectors with registerer.
// Registering twice returns the already registered collectors.
func NewOrdersMetricsWithRegisterer(registerer prometheus.Registerer) *OrdersMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrdersMetrics{
		customerLookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_customer_lookups_total",
			Help: "Customer service lookups by outcome",
		}, []string{"outcome"}),
		customerDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orders_customer_lookup_duration_seconds",
			Help:    "Duration of customer service lookups in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		customerCache: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_customer_cache_total",
			Help: "Customer cache accesses by result",
		}, []string{"result"}),
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders persisted",
		}),
		violations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_constraint_violations_total",
			Help: "Rejected order submissions by rule key",
		}, []string{"key"}),
		eventsPublished: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_events_published_total",
			Help: "Order events handed to the broker by result",
		}, []string{"result"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCustomerLookup counts one remote lookup and its latency.
func (m *OrdersMetrics) RecordCustomerLookup(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.customerLookups.WithLabelValues(outcome).Inc()
	m.customerDuration.Observe(duration.Seconds())
}

// RecordCacheAccess counts a customer cache hit, miss or error.
func (m *OrdersMetrics) RecordCacheAccess(result string) {
	if m == nil {
		return
	}
	m.customerCache.WithLabelValues(result).Inc()
}

// RecordOrderCreated counts a persisted order.
func (m *OrdersMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordViolations counts each rule key of a rejected submission.
func (m *OrdersMetrics) RecordViolations(keys []string) {
	if m == nil {
		return
	}
	for _, key := range keys {
		m.violations.WithLabelValues(key).Inc()
	}
}

// RecordEventPublished counts a publish attempt; ok=false marks a failure.
func (m *OrdersMetrics) RecordEventPublished(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}

// Handler exposes the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor exposes gatherer in the Prometheus text format.
func HandlerFor(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
