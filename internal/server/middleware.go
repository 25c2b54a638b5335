package server

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	logMessage      = "http_request"
	requestIDHeader = "X-Request-Id"
	maxLogLength    = 512
)

// cutStr limits string length by adding ellipsis if needed
func cutStr(str string, max int) string {
	if len(str) > max {
		return str[:max] + "..."
	}
	return str
}

func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// responseRecorder captures the status code. Handlers that only write a
// body get the implicit 200.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLog tags each request with an id, logs it and counts it by status.
type RequestLog struct {
	logger  *slog.Logger
	metrics *Metrics
}

func NewRequestLog(logger *slog.Logger, metrics *Metrics) *RequestLog {
	return &RequestLog{logger: logger, metrics: metrics}
}

// Execute wraps the next handler with request logging
func (l *RequestLog) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		id := req.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)

		l.metrics.observeRequest(rec.status)
		l.logger.Info(logMessage,
			slog.String("request_id", cutStr(id, 64)),
			slog.String("method", strings.ToUpper(req.Method)),
			slog.String("uri", cutStr(req.URL.RequestURI(), maxLogLength)),
			slog.Int("status", rec.status),
			slog.String("duration", time.Since(start).String()),
			slog.String("remote_ip", remoteIP(req)),
			slog.String("user_agent", cutStr(req.UserAgent(), maxLogLength)),
		)
	})
}
