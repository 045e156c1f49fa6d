package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Ledger metrics
	CreditsDebitedTotal  *prometheus.CounterVec
	CreditsCreditedTotal *prometheus.CounterVec
	JournalErrorsTotal   prometheus.Counter

	// Marketplace metrics
	GateDecisionsTotal   *prometheus.CounterVec
	GenerationsTotal     *prometheus.CounterVec
	GenerationDuration   *prometheus.HistogramVec
	ChatMessagesTotal    *prometheus.CounterVec
	VerificationsTotal   *prometheus.CounterVec
	PurchasesTotal       *prometheus.CounterVec
	ExportsTotal         *prometheus.CounterVec
	ActiveSessions       prometheus.Gauge
	ProfileStoreErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "samonya_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "samonya_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "route"},
		),

		CreditsDebitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_credits_debited_total",
				Help: "Total credits spent, by purpose",
			},
			[]string{"purpose"},
		),
		CreditsCreditedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_credits_credited_total",
				Help: "Total credits granted, by source",
			},
			[]string{"source"},
		),
		JournalErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "samonya_journal_errors_total",
				Help: "Total ledger journal write failures",
			},
		),

		GateDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_gate_decisions_total",
				Help: "Access gate decisions",
			},
			[]string{"action", "decision"},
		),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_generations_total",
				Help: "Generation requests by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "samonya_generation_duration_seconds",
				Help:    "Generation collaborator latency",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"tool"},
		),
		ChatMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_chat_messages_total",
				Help: "Chat messages by outcome",
			},
			[]string{"outcome"},
		),
		VerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_payment_verifications_total",
				Help: "Payment verifications by result",
			},
			[]string{"result"},
		),
		PurchasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_purchases_total",
				Help: "Verified plan purchases",
			},
			[]string{"plan"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_exports_total",
				Help: "Exports by format and result",
			},
			[]string{"format", "result"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "samonya_active_sessions",
				Help: "Sessions currently held in memory",
			},
		),
		ProfileStoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samonya_profile_store_errors_total",
				Help: "Client memory store failures",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.CreditsDebitedTotal,
		m.CreditsCreditedTotal,
		m.JournalErrorsTotal,
		m.GateDecisionsTotal,
		m.GenerationsTotal,
		m.GenerationDuration,
		m.ChatMessagesTotal,
		m.VerificationsTotal,
		m.PurchasesTotal,
		m.ExportsTotal,
		m.ActiveSessions,
		m.ProfileStoreErrors,
	)

	return m
}

// NewNopMetrics returns metrics registered against a throwaway registry
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// routeLabel uses the mux route template so session IDs don't explode cardinality
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
