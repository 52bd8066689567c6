package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"nfl-projections-go/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacking not supported")
}

// RequestLogger logs method, path, status and latency of every request.
func RequestLogger(next http.Handler) http.Handler {
	logger := logging.WithPrefix("HTTP")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		elapsed := time.Since(start).Round(time.Microsecond)
		switch {
		case rec.status >= 500:
			logger.Errorf("%s %s %d %dB %v", r.Method, r.URL.Path, rec.status, rec.bytes, elapsed)
		case rec.status >= 400:
			logger.Warnf("%s %s %d %dB %v", r.Method, r.URL.Path, rec.status, rec.bytes, elapsed)
		default:
			logger.Debugf("%s %s %d %dB %v", r.Method, r.URL.Path, rec.status, rec.bytes, elapsed)
		}
	})
}
