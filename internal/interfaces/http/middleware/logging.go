package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
)

// LoggingConfig controls what the request-logging middleware records and
// how loudly it records it.
type LoggingConfig struct {
	SkipPaths       []string
	LogRequestBody  bool
	LogResponseBody bool
	SlowThreshold   time.Duration
	MaxBodyLogSize  int
}

// DefaultLoggingConfig logs every request except health checks, escalating
// to a warning once a request runs past three seconds.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:      []string{"/health", "/healthz", "/readyz"},
		SlowThreshold:  3 * time.Second,
		MaxBodyLogSize: 1024,
	}
}

// responseRecorder sits between the handler and the real ResponseWriter so
// the middleware can report the status and size of a response it never
// otherwise sees.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	written     int64
	headersSent bool
}

func wrapResponse(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.headersSent {
		r.status = code
		r.headersSent = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.headersSent {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("middleware: underlying ResponseWriter does not support hijacking")
	}
	return hj.Hijack()
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// requestOutcome classifies a completed request for level selection and
// carries the fields every log line shares.
type requestOutcome struct {
	method     string
	path       string
	status     int
	elapsed    time.Duration
	bytes      int64
	remoteAddr string
	requestID  string
	userAgent  string
}

func describeRequest(r *http.Request, rec *responseRecorder, start time.Time) requestOutcome {
	path := r.URL.Path
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}
	return requestOutcome{
		method:     r.Method,
		path:       path,
		status:     rec.status,
		elapsed:    time.Since(start),
		bytes:      rec.written,
		remoteAddr: r.RemoteAddr,
		requestID:  r.Header.Get("X-Request-ID"),
		userAgent:  r.UserAgent(),
	}
}

func (o requestOutcome) fields() []logging.Field {
	fields := []logging.Field{
		logging.String("method", o.method),
		logging.String("path", o.path),
		logging.Int64("status", int64(o.status)),
		logging.String("duration_ms", fmt.Sprintf("%.2f", float64(o.elapsed.Nanoseconds())/1e6)),
		logging.Int64("bytes", o.bytes),
		logging.String("remote_addr", o.remoteAddr),
		logging.String("request_id", o.requestID),
	}
	if o.userAgent != "" {
		fields = append(fields, logging.String("user_agent", o.userAgent))
	}
	return fields
}

// emit picks a log level from the outcome's status and elapsed time, then
// writes a single completion line.
func (o requestOutcome) emit(logger logging.Logger, slowThreshold time.Duration) {
	fields := o.fields()
	switch {
	case o.status >= http.StatusInternalServerError:
		logger.Error("HTTP request completed with server error", fields...)
	case o.status >= http.StatusBadRequest:
		logger.Warn("HTTP request completed with client error", fields...)
	case slowThreshold > 0 && o.elapsed >= slowThreshold:
		logger.Warn("HTTP request completed (slow)", fields...)
	default:
		logger.Info("HTTP request completed", fields...)
	}
}

// RequestLogging returns middleware that emits one structured log line per
// completed request, skipping config.SkipPaths entirely.
func RequestLogging(logger logging.Logger, config LoggingConfig) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, exempt := skip[r.URL.Path]; exempt {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := wrapResponse(w)
			next.ServeHTTP(rec, r)

			describeRequest(r, rec, start).emit(logger, config.SlowThreshold)
		})
	}
}
