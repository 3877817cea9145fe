package transhttp

import (
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/negroni"

	"fb-s2s/pkg/logger"
	"fb-s2s/pkg/tracing"
)

// DefaultTracingHeader carries the request tracing id in and out.
const DefaultTracingHeader = "x-ray-id"

// BkLoggerMid tags each request with a tracing id, installs a request-scoped
// logger in the context and logs the request as it goes out.
type BkLoggerMid struct {
	TracingHeader string
	// Exclude URLs from logging
	ExcludeURLs []string
}

func NewBkLoggerMid(tracingHeader string) *BkLoggerMid {
	if tracingHeader == "" {
		tracingHeader = DefaultTracingHeader
	}
	return &BkLoggerMid{
		TracingHeader: tracingHeader,
		ExcludeURLs:   []string{MetricsPath},
	}
}

func (m *BkLoggerMid) ServeHTTP(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	for _, u := range m.ExcludeURLs {
		if r.URL.Path == u {
			next(rw, r)
			return
		}
	}

	start := time.Now()
	tracingId := r.Header.Get(m.TracingHeader)
	if tracingId == "" {
		tracingId = uuid.NewString()
	}
	rw.Header().Set(m.TracingHeader, tracingId)

	ctx := logger.AddLogCtx(r.Context(), logger.BkLog, tracingId)
	next(rw, r.WithContext(ctx))

	status := http.StatusOK
	if nrw, ok := rw.(negroni.ResponseWriter); ok && nrw.Status() != 0 {
		status = nrw.Status()
	}

	remoteAddr := r.RemoteAddr
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		remoteAddr = realIP
	}

	logger.LoggerCtx(ctx).Infow("Completed request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote", remoteAddr,
		"status", status,
		"trace_id", tracing.TraceId(r.Context()),
		"took", time.Since(start).String())
}

// RequireJSON rejects bodies declared as anything but application/json.
// Requests without a Content-Type pass through.
func RequireJSON() negroni.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				RespondError(rw, http.StatusUnsupportedMediaType, "content type must be application/json")
				return
			}
		}
		next(rw, r)
	}
}

// NewBkRecovery --
func NewBkRecovery() *negroni.Recovery {
	recovery := negroni.NewRecovery()
	recovery.ErrorHandlerFunc = recoveryErrorHandlerFunc
	recovery.PrintStack = false
	return recovery
}

func recoveryErrorHandlerFunc(error interface{}) {
	logger.BkLog.Errorw(fmt.Sprintf("Recovery catch panic: %v", error))
}

// InitGlobalAPIMiddlewares wraps handler with logging, recovery and any extra middlewares.
func InitGlobalAPIMiddlewares(handler http.Handler, tracingHeader string, logDisabled bool, mids ...negroni.Handler) *negroni.Negroni {
	n := negroni.New()

	if logDisabled {
		logger.BkLog.Info("Disabled request & response log middleware")
	} else {
		n.Use(NewBkLoggerMid(tracingHeader))
	}

	// use recovery, catches panics and responds with a 500 response code
	n.Use(NewBkRecovery())

	for _, mid := range mids {
		n.Use(mid)
	}

	n.UseHandler(handler)

	return n
}
