// Package observability wires the prometheus registry the HTTP layer
// and the ingestion pipeline report into.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	pipelineRuns       *prometheus.CounterVec
	candidatesAdmitted prometheus.Counter
	candidatesFailed   prometheus.Counter
	annotationsSaved   prometheus.Counter
	bytesCompressed    prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "annothub_api_requests_total",
			Help: "HTTP requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "annothub_api_request_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "annothub_api_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "annothub_pipeline_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		candidatesAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "annothub_pipeline_candidates_admitted_total",
			Help: "Candidates that passed admission.",
		}),
		candidatesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "annothub_pipeline_candidates_failed_total",
			Help: "Candidates that failed processing.",
		}),
		annotationsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "annothub_pipeline_annotations_saved_total",
			Help: "Annotations published to the store.",
		}),
		bytesCompressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "annothub_pipeline_compressed_bytes_total",
			Help: "Bytes of block-compressed artifacts written.",
		}),
	}
	m.registry.MustRegister(
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.pipelineRuns, m.candidatesAdmitted, m.candidatesFailed,
		m.annotationsSaved, m.bytesCompressed,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route string, status int, elapsed time.Duration) {
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) APIInflightInc() { m.apiInflight.Inc() }
func (m *Metrics) APIInflightDec() { m.apiInflight.Dec() }

func (m *Metrics) PipelineRun(outcome string)        { m.pipelineRuns.WithLabelValues(outcome).Inc() }
func (m *Metrics) CandidatesAdmitted(n int)          { m.candidatesAdmitted.Add(float64(n)) }
func (m *Metrics) CandidateFailed()                  { m.candidatesFailed.Inc() }
func (m *Metrics) AnnotationsSaved(n int)            { m.annotationsSaved.Add(float64(n)) }
func (m *Metrics) CompressedBytes(n int64)           { m.bytesCompressed.Add(float64(n)) }
