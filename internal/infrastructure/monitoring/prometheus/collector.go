// Package prometheus wraps github.com/prometheus/client_golang behind a
// small interface so the rest of the service depends on MetricsCollector
// rather than concrete prometheus types, the same indirection the service
// uses for its logging backend.
package prometheus

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
)

var errNamespaceRequired = errors.New("prometheus: CollectorConfig.Namespace must be set")

var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

var defaultObjectives = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}

// MetricsCollector is the seam between application code and the concrete
// metrics backend. Every metric family the service exposes is registered
// through one of the Register* methods rather than by touching
// prometheus.* types directly.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	RegisterSummary(name, help string, objectives map[float64]float64, labels ...string) SummaryVec
	Handler() http.Handler
	MustRegister(collectors ...prometheus.Collector)
	Unregister(collector prometheus.Collector) bool
}

type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
	With(labels map[string]string) Counter
}

type Counter interface {
	Inc()
	Add(delta float64)
}

type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
	With(labels map[string]string) Gauge
}

type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
	Add(delta float64)
	Sub(delta float64)
}

type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
	With(labels map[string]string) Histogram
}

type Histogram interface {
	Observe(value float64)
}

type SummaryVec interface {
	WithLabelValues(lvs ...string) Summary
	With(labels map[string]string) Summary
}

type Summary interface {
	Observe(value float64)
}

// CollectorConfig configures a collector instance. Namespace is required;
// Subsystem and ConstLabels are applied to every metric family it
// registers.
type CollectorConfig struct {
	Namespace               string
	Subsystem               string
	ConstLabels             map[string]string
	DefaultHistogramBuckets []float64
	EnableProcessMetrics    bool
	EnableGoMetrics         bool
}

// metricKind distinguishes the four families a collector can register, used
// only to produce a readable mismatch error when a name is reused across
// kinds.
type metricKind int

const (
	kindCounter metricKind = iota
	kindGauge
	kindHistogram
	kindSummary
)

func (k metricKind) String() string {
	switch k {
	case kindCounter:
		return "counter"
	case kindGauge:
		return "gauge"
	case kindHistogram:
		return "histogram"
	case kindSummary:
		return "summary"
	default:
		return "unknown"
	}
}

type registeredMetric struct {
	kind      metricKind
	collector prometheus.Collector
}

// collector is the default MetricsCollector, backed by a private
// prometheus.Registry (not the global DefaultRegisterer) so multiple
// instances never collide and tests can spin up disposable ones.
type collector struct {
	registry *prometheus.Registry
	cfg      CollectorConfig
	logger   logging.Logger

	mu    sync.Mutex
	byFQN map[string]registeredMetric
}

// NewMetricsCollector builds a collector, optionally seeding it with the
// process and Go runtime collectors client_golang ships out of the box.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, errNamespaceRequired
	}
	if cfg.DefaultHistogramBuckets == nil {
		cfg.DefaultHistogramBuckets = defaultBuckets
	}

	reg := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: cfg.Namespace}))
	}
	if cfg.EnableGoMetrics {
		reg.MustRegister(prometheus.NewGoCollector())
	}

	return &collector{
		registry: reg,
		cfg:      cfg,
		logger:   logger,
		byFQN:    make(map[string]registeredMetric),
	}, nil
}

func (c *collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (c *collector) MustRegister(collectors ...prometheus.Collector) {
	c.registry.MustRegister(collectors...)
}

func (c *collector) Unregister(coll prometheus.Collector) bool {
	return c.registry.Unregister(coll)
}

// registerOnce registers newColl under name unless a metric of that name
// already exists, in which case the existing collector is returned so
// repeated calls (e.g. from request-scoped code paths) are idempotent.
func (c *collector) registerOnce(kind metricKind, name string, newColl prometheus.Collector) (prometheus.Collector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fqn := prometheus.BuildFQName(c.cfg.Namespace, c.cfg.Subsystem, name)
	if existing, ok := c.byFQN[fqn]; ok {
		if existing.kind != kind {
			c.logger.Warn("metric already registered under a different kind",
				logging.String("metric", fqn),
				logging.String("existing_kind", existing.kind.String()),
				logging.String("requested_kind", kind.String()),
			)
			return nil, false
		}
		return existing.collector, true
	}

	if err := c.registry.Register(newColl); err != nil {
		c.logger.Error("metric registration failed", logging.String("metric", fqn), logging.Err(err))
		return nil, false
	}
	c.byFQN[fqn] = registeredMetric{kind: kind, collector: newColl}
	return newColl, true
}

func (c *collector) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.cfg.Namespace, Subsystem: c.cfg.Subsystem,
		Name: name, Help: help, ConstLabels: c.cfg.ConstLabels,
	}, labels)

	got, ok := c.registerOnce(kindCounter, name, vec)
	if !ok {
		return disabledCounterVec{}
	}
	return counterVecAdapter{vec: got.(*prometheus.CounterVec)}
}

func (c *collector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.cfg.Namespace, Subsystem: c.cfg.Subsystem,
		Name: name, Help: help, ConstLabels: c.cfg.ConstLabels,
	}, labels)

	got, ok := c.registerOnce(kindGauge, name, vec)
	if !ok {
		return disabledGaugeVec{}
	}
	return gaugeVecAdapter{vec: got.(*prometheus.GaugeVec)}
}

func (c *collector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = c.cfg.DefaultHistogramBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.cfg.Namespace, Subsystem: c.cfg.Subsystem,
		Name: name, Help: help, ConstLabels: c.cfg.ConstLabels, Buckets: buckets,
	}, labels)

	got, ok := c.registerOnce(kindHistogram, name, vec)
	if !ok {
		return disabledHistogramVec{}
	}
	return histogramVecAdapter{vec: got.(*prometheus.HistogramVec)}
}

func (c *collector) RegisterSummary(name, help string, objectives map[float64]float64, labels ...string) SummaryVec {
	if objectives == nil {
		objectives = defaultObjectives
	}
	vec := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: c.cfg.Namespace, Subsystem: c.cfg.Subsystem,
		Name: name, Help: help, ConstLabels: c.cfg.ConstLabels, Objectives: objectives,
	}, labels)

	got, ok := c.registerOnce(kindSummary, name, vec)
	if !ok {
		return disabledSummaryVec{}
	}
	return summaryVecAdapter{vec: got.(*prometheus.SummaryVec)}
}

// ─── live adapters: thin wrappers over the registered client_golang vecs ───

type counterVecAdapter struct{ vec *prometheus.CounterVec }

func (a counterVecAdapter) WithLabelValues(lvs ...string) Counter {
	return counterAdapter{a.vec.WithLabelValues(lvs...)}
}
func (a counterVecAdapter) With(labels map[string]string) Counter {
	return counterAdapter{a.vec.With(labels)}
}

type counterAdapter struct{ prometheus.Counter }

func (a counterAdapter) Add(delta float64) { a.Counter.Add(delta) }

type gaugeVecAdapter struct{ vec *prometheus.GaugeVec }

func (a gaugeVecAdapter) WithLabelValues(lvs ...string) Gauge {
	return gaugeAdapter{a.vec.WithLabelValues(lvs...)}
}
func (a gaugeVecAdapter) With(labels map[string]string) Gauge {
	return gaugeAdapter{a.vec.With(labels)}
}

type gaugeAdapter struct{ prometheus.Gauge }

func (a gaugeAdapter) Add(delta float64) { a.Gauge.Add(delta) }
func (a gaugeAdapter) Sub(delta float64) { a.Gauge.Sub(delta) }

type histogramVecAdapter struct{ vec *prometheus.HistogramVec }

func (a histogramVecAdapter) WithLabelValues(lvs ...string) Histogram {
	return a.vec.WithLabelValues(lvs...)
}
func (a histogramVecAdapter) With(labels map[string]string) Histogram {
	return a.vec.With(labels)
}

type summaryVecAdapter struct{ vec *prometheus.SummaryVec }

func (a summaryVecAdapter) WithLabelValues(lvs ...string) Summary {
	return a.vec.WithLabelValues(lvs...)
}
func (a summaryVecAdapter) With(labels map[string]string) Summary {
	return a.vec.With(labels)
}

// ─── disabled adapters: returned when registration fails or collides ───
//
// Callers register metrics at startup and then call Inc/Observe/etc. from
// hot request paths without checking an error; a disabled vec absorbs
// those calls silently rather than forcing every call site to branch on a
// registration outcome it can't act on.

type disabledCounterVec struct{}

func (disabledCounterVec) WithLabelValues(...string) Counter { return disabledCounter{} }
func (disabledCounterVec) With(map[string]string) Counter    { return disabledCounter{} }

type disabledCounter struct{}

func (disabledCounter) Inc()              {}
func (disabledCounter) Add(delta float64) {}

type disabledGaugeVec struct{}

func (disabledGaugeVec) WithLabelValues(...string) Gauge { return disabledGauge{} }
func (disabledGaugeVec) With(map[string]string) Gauge    { return disabledGauge{} }

type disabledGauge struct{}

func (disabledGauge) Set(float64) {}
func (disabledGauge) Inc()        {}
func (disabledGauge) Dec()        {}
func (disabledGauge) Add(float64) {}
func (disabledGauge) Sub(float64) {}

type disabledHistogramVec struct{}

func (disabledHistogramVec) WithLabelValues(...string) Histogram { return disabledHistogram{} }
func (disabledHistogramVec) With(map[string]string) Histogram    { return disabledHistogram{} }

type disabledHistogram struct{}

func (disabledHistogram) Observe(float64) {}

type disabledSummaryVec struct{}

func (disabledSummaryVec) WithLabelValues(...string) Summary { return disabledSummary{} }
func (disabledSummaryVec) With(map[string]string) Summary    { return disabledSummary{} }

type disabledSummary struct{}

func (disabledSummary) Observe(float64) {}

// Timer measures elapsed wall-clock time and reports it to a Histogram
// when stopped. The zero value is not usable; construct with NewTimer.
type Timer struct {
	target  Histogram
	started time.Time
}

func NewTimer(target Histogram) *Timer {
	return &Timer{target: target, started: time.Now()}
}

// ObserveDuration records the elapsed time since NewTimer and returns it.
// Calling it on a Timer built from a nil Histogram is a no-op that still
// returns the elapsed duration, so callers can log it even when the
// metric itself is unavailable.
func (t *Timer) ObserveDuration() time.Duration {
	elapsed := time.Since(t.started)
	if t.target != nil {
		t.target.Observe(elapsed.Seconds())
	}
	return elapsed
}
