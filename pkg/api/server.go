// Package api exposes the ordering session over HTTP: a JSON API, an HTML
// page with form actions, and a websocket stream of session snapshots.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	_ "campuseats/docs"
	"campuseats/pkg/logger"
	"campuseats/pkg/metrics"
	"campuseats/pkg/order"
	"campuseats/pkg/otel"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	session  *order.Session
	receipts order.ReceiptRepository
	hub      *Hub
	log      *logger.Logger
	tracer   trace.Tracer
}

// NewServer creates the HTTP layer around a session.
func NewServer(session *order.Session, receipts order.ReceiptRepository, hub *Hub, log *logger.Logger, tracer trace.Tracer) *Server {
	return &Server{session: session, receipts: receipts, hub: hub, log: log, tracer: tracer}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, s.traceMiddleware, s.logMiddleware)

	r.HandleFunc("/", s.pageHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/catalog", s.catalogHandler).Methods(http.MethodGet)

	sess := r.PathPrefix("/session").Subrouter()
	sess.HandleFunc("", s.getSessionHandler).Methods(http.MethodGet)
	sess.HandleFunc("/orders", s.placeOrderHandler).Methods(http.MethodPost)
	sess.HandleFunc("/adjust", s.adjustHandler).Methods(http.MethodPost)
	sess.HandleFunc("/summary", s.openSummaryHandler).Methods(http.MethodPost)
	sess.HandleFunc("/confirm", s.confirmHandler).Methods(http.MethodPost)

	r.HandleFunc("/receipts", s.listReceiptsHandler).Methods(http.MethodGet)
	r.HandleFunc("/receipts/{id}", s.getReceiptHandler).Methods(http.MethodGet)

	ui := r.PathPrefix("/ui").Subrouter()
	ui.HandleFunc("/order", s.uiOrderHandler).Methods(http.MethodPost)
	ui.HandleFunc("/adjust", s.uiAdjustHandler).Methods(http.MethodPost)
	ui.HandleFunc("/summary", s.uiSummaryHandler).Methods(http.MethodPost)
	ui.HandleFunc("/confirm", s.uiConfirmHandler).Methods(http.MethodPost)

	if s.hub != nil {
		r.HandleFunc("/ws", s.hub.ServeWS).Methods(http.MethodGet)
	}
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	return r
}

type ctxKey int

const ctxKeyRequestID ctxKey = iota

// RequestIDFromContext returns the id assigned by the request id middleware.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), s.tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// websocket upgrades need the raw writer to hijack
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		lat := time.Since(start)
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method, strconv.Itoa(sr.status)).Observe(lat.Seconds())
		s.log.Debug(r.Context(), "http request",
			"method", r.Method,
			"route", route,
			"status", sr.status,
			"latency_ms", float64(lat.Microseconds())/1000.0,
			"request_id", RequestIDFromContext(r.Context()),
		)
	})
}
