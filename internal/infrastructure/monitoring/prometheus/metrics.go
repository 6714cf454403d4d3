package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds every metric the node normalization service exposes.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPRequestSize     HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Normalization Layer
	NormalizeRequestsTotal  CounterVec
	NormalizeCuriesTotal    CounterVec
	NormalizeDuration       HistogramVec
	NormalizeCliqueSize     HistogramVec

	// SetID Layer
	SetIDRequestsTotal CounterVec
	SetIDDuration      HistogramVec

	// TRAPI Message Layer
	MessageQueryTotal       CounterVec
	MessageQueryDuration    HistogramVec
	MessageNodesNormalized  CounterVec
	CallbackDeliveryTotal   CounterVec
	CallbackDeliveryRetries CounterVec
	CallbackDeliveryLatency HistogramVec

	// Store Layer
	StoreOperationDuration HistogramVec
	StoreOperationErrors   CounterVec
	StorePipelineFlushSize HistogramVec

	// Ingestion Layer
	IngestCliquesTotal  CounterVec
	IngestFileDuration  HistogramVec
	IngestRecordErrors  CounterVec

	// System Health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultIngestDurationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600}
	DefaultSizeBuckets           = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
	DefaultStoreDurationBuckets  = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultCliqueSizeBuckets     = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500}
)

// NewAppMetrics registers every metric with collector and returns the bundle.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPRequestSize = collector.RegisterHistogram("http_request_size_bytes", "HTTP request size", DefaultSizeBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Normalization
	m.NormalizeRequestsTotal = collector.RegisterCounter("normalize_requests_total", "get_normalized_nodes requests", "status")
	m.NormalizeCuriesTotal = collector.RegisterCounter("normalize_curies_total", "CURIEs submitted for normalization", "result")
	m.NormalizeDuration = collector.RegisterHistogram("normalize_duration_seconds", "Normalization request duration", DefaultHTTPDurationBuckets, "status")
	m.NormalizeCliqueSize = collector.RegisterHistogram("normalize_clique_size", "Resolved clique member count", DefaultCliqueSizeBuckets)

	// SetID
	m.SetIDRequestsTotal = collector.RegisterCounter("setid_requests_total", "get_setid requests", "status")
	m.SetIDDuration = collector.RegisterHistogram("setid_duration_seconds", "SetID generation duration", DefaultHTTPDurationBuckets, "status")

	// TRAPI message
	m.MessageQueryTotal = collector.RegisterCounter("message_query_total", "/query and /asyncquery requests", "mode", "status")
	m.MessageQueryDuration = collector.RegisterHistogram("message_query_duration_seconds", "TRAPI message normalization duration", DefaultHTTPDurationBuckets, "mode")
	m.MessageNodesNormalized = collector.RegisterCounter("message_nodes_normalized_total", "Query-graph node bindings rewritten", "status")
	m.CallbackDeliveryTotal = collector.RegisterCounter("callback_delivery_total", "/asyncquery callback deliveries", "status")
	m.CallbackDeliveryRetries = collector.RegisterCounter("callback_delivery_retries_total", "/asyncquery callback delivery retries")
	m.CallbackDeliveryLatency = collector.RegisterHistogram("callback_delivery_latency_seconds", "Time from async acceptance to callback delivery", DefaultIngestDurationBuckets)

	// Store
	m.StoreOperationDuration = collector.RegisterHistogram("store_operation_duration_seconds", "MultiStore operation duration", DefaultStoreDurationBuckets, "store", "operation")
	m.StoreOperationErrors = collector.RegisterCounter("store_operation_errors_total", "MultiStore operation errors", "store", "operation")
	m.StorePipelineFlushSize = collector.RegisterHistogram("store_pipeline_flush_size", "Write pipeline flush batch size", DefaultCliqueSizeBuckets, "store")

	// Ingestion
	m.IngestCliquesTotal = collector.RegisterCounter("ingest_cliques_total", "Cliques loaded by the ingestion CLI", "source")
	m.IngestFileDuration = collector.RegisterHistogram("ingest_file_duration_seconds", "Ingestion file load duration", DefaultIngestDurationBuckets, "source")
	m.IngestRecordErrors = collector.RegisterCounter("ingest_record_errors_total", "Malformed ingestion records skipped", "source", "reason")

	// System Health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// RegisterAppMetrics is an alias for NewAppMetrics.
func RegisterAppMetrics(collector MetricsCollector) *AppMetrics {
	return NewAppMetrics(collector)
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, reqSize, respSize int64) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

func RecordNormalize(metrics *AppMetrics, curieCount, resolvedCount int, cliqueSizes []int, duration time.Duration, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	metrics.NormalizeRequestsTotal.WithLabelValues(status).Inc()
	metrics.NormalizeDuration.WithLabelValues(status).Observe(duration.Seconds())
	metrics.NormalizeCuriesTotal.WithLabelValues("resolved").Add(float64(resolvedCount))
	metrics.NormalizeCuriesTotal.WithLabelValues("unresolved").Add(float64(curieCount - resolvedCount))
	for _, size := range cliqueSizes {
		metrics.NormalizeCliqueSize.WithLabelValues().Observe(float64(size))
	}
}

func RecordCallbackDelivery(metrics *AppMetrics, success bool, retries int, latency time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.CallbackDeliveryTotal.WithLabelValues(status).Inc()
	metrics.CallbackDeliveryRetries.WithLabelValues().Add(float64(retries))
	metrics.CallbackDeliveryLatency.WithLabelValues().Observe(latency.Seconds())
}

func RecordStoreOperation(metrics *AppMetrics, store, operation string, duration time.Duration, err error) {
	metrics.StoreOperationDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.StoreOperationErrors.WithLabelValues(store, operation).Inc()
		metrics.ErrorsTotal.WithLabelValues(store, "store_error", "error").Inc()
	}
}

func RecordIngestFile(metrics *AppMetrics, source string, cliqueCount int, duration time.Duration) {
	metrics.IngestCliquesTotal.WithLabelValues(source).Add(float64(cliqueCount))
	metrics.IngestFileDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}
