package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/centromed/internal/bytesize"
	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/internal/telemetry"
	"github.com/marmos91/centromed/pkg/api/auth"
	"github.com/marmos91/centromed/pkg/api/handlers"
	apiMiddleware "github.com/marmos91/centromed/pkg/api/middleware"
	"github.com/marmos91/centromed/pkg/hospital/reports"
	"github.com/marmos91/centromed/pkg/hospital/service"
	"github.com/marmos91/centromed/pkg/metrics"
	"github.com/marmos91/centromed/pkg/resolver"
)

// Deps are the components the router serves.
type Deps struct {
	Resolver *resolver.Resolver
	Catalog  *service.Catalog
	Reports  *reports.Reports
	JWT      *auth.JWTService
	Admin    *auth.BootstrapAdmin
	Metrics  metrics.HTTPMetrics

	// RequestTimeout bounds each request. Zero means 30s.
	RequestTimeout time.Duration

	// MaxBodySize caps request bodies. Zero means 1Mi.
	MaxBodySize bytesize.ByteSize
}

// crud is the route set of one entity.
type crud interface {
	List(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

// NewRouter creates the chi router with all middleware and routes.
//
// Routes:
//   - GET /health, /health/ready, /health/shards
//   - POST /api/v1/auth/login, /api/v1/auth/refresh
//   - GET /api/v1/auth/me
//   - GET /api/v1/centros
//   - GET, POST /api/v1/{entity}
//   - GET, PUT, DELETE /api/v1/{entity}/{id}
//   - GET /api/v1/reports/consultas, /api/v1/reports/resumen
//
// usuarios routes are admin only.
func NewRouter(d Deps) http.Handler {
	timeout := d.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxBody := d.MaxBodySize
	if maxBody == 0 {
		maxBody = bytesize.MiB
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.RequestSize(maxBody.Int64()))

	healthHandler := handlers.NewHealthHandler(d.Resolver.Registry())
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
		r.Get("/shards", healthHandler.Shards)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := handlers.NewAuthHandler(d.Catalog, d.Admin, d.JWT)
	centrosHandler := handlers.NewCentrosHandler(d.Resolver)
	reportsHandler := handlers.NewReportsHandler(d.Reports)
	c := d.Catalog

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.JWTAuth(d.JWT))
				r.Get("/me", authHandler.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.JWTAuth(d.JWT))

			r.Get("/centros", centrosHandler.List)

			mountEntity(r, "/pacientes", handlers.NewEntityHandler(c.Pacientes))
			mountEntity(r, "/medicos", handlers.NewEntityHandler(c.Medicos))
			mountEntity(r, "/empleados", handlers.NewEntityHandler(c.Empleados))
			mountEntity(r, "/especialidades", handlers.NewEntityHandler(c.Especialidades))
			mountEntity(r, "/consultas", handlers.NewEntityHandler(c.Consultas))

			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin())
				mountEntity(r, "/usuarios", handlers.NewEntityHandler(c.Usuarios))
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/consultas", reportsHandler.Consultas)
				r.Get("/resumen", reportsHandler.Resumen)
			})
		})
	})

	return r
}

func mountEntity(r chi.Router, path string, h crud) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// requestLogger attaches a log context and a server span to each request,
// logs its completion and records HTTP metrics by route pattern.
func requestLogger(m metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := middleware.GetReqID(r.Context())

			ctx, span := telemetry.StartSpan(r.Context(), "HTTP "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				))
			defer span.End()

			lc := logger.NewLogContext(requestID, clientIP(r.RemoteAddr))
			if telemetry.IsEnabled() {
				lc = lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
			}
			ctx = logger.WithContext(ctx, lc)

			logger.Debug("API request started",
				logger.KeyRequestID, requestID,
				logger.KeyMethod, r.Method,
				logger.KeyPath, r.URL.Path,
				logger.KeyClientIP, lc.ClientIP,
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			span.SetAttributes(attribute.String("http.route", route), attribute.Int("http.status_code", status))
			if m != nil {
				m.RecordRequest(r.Method, route, status, duration)
			}

			logArgs := []any{
				logger.KeyRequestID, requestID,
				logger.KeyMethod, r.Method,
				logger.KeyPath, r.URL.Path,
				logger.KeyStatus, status,
				logger.KeyBytes, ww.BytesWritten(),
				logger.KeyDurationMs, float64(duration.Microseconds()) / 1000,
			}
			if strings.HasPrefix(r.URL.Path, "/health") {
				logger.Debug("API request completed", logArgs...)
			} else {
				logger.Info("API request completed", logArgs...)
			}
		})
	}
}

func clientIP(remoteAddr string) string {
	if i := strings.LastIndex(remoteAddr, ":"); i > 0 && !strings.HasSuffix(remoteAddr, "]") {
		return strings.Trim(remoteAddr[:i], "[]")
	}
	return remoteAddr
}
