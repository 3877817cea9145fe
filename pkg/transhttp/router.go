package transhttp

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"fb-s2s/pkg/logger"
)

const (
	DefaultTimeout  = 10000 // ms
	HealthCheckPath = "/service-health"
	MetricsPath     = "/metrics"
)

// Route -- Defines a single route, e.g. a human readable name, HTTP method,
// pattern the function that will execute when the route is called.
type Route struct {
	Name        string
	Method      string
	BasePath    string
	Pattern     string
	Handler     http.Handler
	Middlewares []negroni.Handler
	// Timeout in ms. Zero uses the router default, negative disables it.
	Timeout int64
}

// Routes -- Defines the type Routes which is just an array (slice) of Route structs.
type Routes []Route

// NewRouter -- load all routers
func NewRouter(routes Routes, timeoutMs int64) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	if timeoutMs <= 0 {
		timeoutMs = DefaultTimeout
	}

	logger.BkLog.Infof("Config Timeout API: %v", timeoutMs)

	for _, route := range routes {
		handlers := make([]negroni.Handler, 0, len(route.Middlewares)+1)
		handlers = append(handlers, route.Middlewares...)

		rh := route.Handler
		if route.Timeout >= 0 {
			timeout := timeoutMs
			if route.Timeout > 0 {
				timeout = route.Timeout
			}
			rh = http.TimeoutHandler(rh, time.Duration(timeout)*time.Millisecond, `{"error":"API Timeout"}`)
		}

		handlers = append(handlers, negroni.Wrap(rh))

		r := router.
			Methods(route.Method).
			Path(route.BasePath + route.Pattern).
			Handler(negroni.New(handlers...))
		if route.Name != "" {
			r.Name(route.Name)
		}
	}

	return router
}

// RegisterHealthCheck mounts r at / next to the health check endpoint.
func RegisterHealthCheck(r http.Handler, svcName string) *http.ServeMux {
	mixMux := http.NewServeMux()
	mixMux.Handle("/", r)
	mixMux.Handle(HealthCheckPath, http.TimeoutHandler(&healthCheckHandler{Service: svcName}, time.Second, "API Timeout"))

	return mixMux
}

type healthCheckHandler struct {
	Service string
}

func (h *healthCheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if svc := r.URL.Query().Get("svc"); svc != "" && svc != h.Service {
		logger.BkLog.Warnf("Wrong service name actual %v, expect %v", svc, h.Service)
		RespondMessage(w, http.StatusGone, "conflict service name")
		return
	}
	RespondMessage(w, http.StatusOK, "active")
}
