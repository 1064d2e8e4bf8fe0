// Package metrics exposes Prometheus collectors for the reply service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook message outcomes recorded per inbound event.
const (
	OutcomeModerated = "moderated"
	OutcomeAnswered  = "answered"
	OutcomeFallback  = "fallback"
	OutcomeIgnored   = "ignored"
)

var (
	webhookMessagesTotal       *prometheus.CounterVec
	outboundSendsTotal         *prometheus.CounterVec
	crawlPagesTotal            *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times.
func Init() {
	once.Do(func() {
		webhookMessagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replydesk_webhook_messages_total",
				Help: "Inbound webhook messages, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		outboundSendsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replydesk_outbound_sends_total",
				Help: "Outbound message deliveries, labeled by result.",
			},
			[]string{"result"},
		)
		crawlPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replydesk_crawl_pages_total",
				Help: "Pages processed by training crawls, labeled by result.",
			},
			[]string{"result"},
		)
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replydesk_http_requests_total",
				Help: "HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)
		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "replydesk_http_request_duration_seconds",
				Help:    "HTTP request latencies, labeled by method.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method"},
		)
	})
}

// ObserveWebhookMessage records one inbound message outcome.
func ObserveWebhookMessage(outcome string) {
	Init()
	webhookMessagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveSend records one outbound delivery attempt.
func ObserveSend(ok bool) {
	Init()
	outboundSendsTotal.WithLabelValues(resultLabel(ok)).Inc()
}

// ObserveCrawlPage records one crawled URL result.
func ObserveCrawlPage(ok bool) {
	Init()
	crawlPagesTotal.WithLabelValues(resultLabel(ok)).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// Instrument wraps an http.Handler with request counting and latency
// observation.
func Instrument(next http.Handler) http.Handler {
	Init()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
		httpRequestDurationSeconds.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
