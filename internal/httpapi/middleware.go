package httpapi

import (
	"net/http"
	"strings"
	"time"

	"coldroute/internal/apperror"
	"coldroute/internal/audit"
	"coldroute/internal/logger"
	"coldroute/internal/metrics"
	"coldroute/internal/ratelimit"
)

// middleware composes http.Handler wrappers, re-expressing the donor
// gateway's gRPC unary-interceptor chain (logging -> metrics -> rate
// limit -> audit) as net/http middleware, applied outermost-first.
type middleware func(http.Handler) http.Handler

func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// statusRecorder captures the response status for logging/metrics, since
// http.ResponseWriter does not expose it after WriteHeader.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs one line per request, mirroring the donor
// gateway's LoggingInterceptor.
func loggingMiddleware() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Log.Info("http request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// metricsMiddleware records request counts/durations per route pattern,
// mirroring the donor gateway's MetricsInterceptor.
func metricsMiddleware(m *metrics.Metrics) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := routeLabel(r)
			m.HTTPRequestsTotal.WithLabelValues(route, itoa(rec.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

// rateLimitMiddleware guards the plan-request endpoint from burst
// submission (SPEC_FULL.md §11), mirroring the donor gateway's
// RateLimitInterceptor with a fail-open policy on limiter errors.
func rateLimitMiddleware(limiter ratelimit.Limiter) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := ratelimit.KeyFromRequest(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Log.Warn("rate limit check failed, failing open", "error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				info, infoErr := limiter.GetInfo(r.Context(), key)
				if infoErr == nil {
					w.Header().Set("X-RateLimit-Limit", itoa(info.Limit))
					w.Header().Set("X-RateLimit-Remaining", itoa(info.Remaining))
					w.Header().Set("X-RateLimit-Reset", info.ResetAt.Format(time.RFC3339))
				}
				writeError(w, apperror.New(apperror.CodePreconditionFailure, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// auditMiddleware records one audit entry per request for the actions
// named in audit.Action, mirroring the donor server's audit logging around
// each RPC.
func auditMiddleware(logr audit.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logr == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			outcome := audit.OutcomeSuccess
			if rec.status >= 400 {
				outcome = audit.OutcomeFailure
			}

			entry := audit.NewEntry(actionForRoute(r)).
				Method(r.Method + " " + r.URL.Path).
				Outcome(outcome).
				Client(ratelimit.KeyFromRequest(r)).
				Duration(time.Since(start)).
				Build()

			if err := logr.Log(r.Context(), entry); err != nil {
				logger.Log.Warn("failed to write audit entry", "error", err)
			}
		})
	}
}

// routeLabel collapses job-id path segments so the metrics cardinality
// stays bounded regardless of how many distinct jobs are queried.
func routeLabel(r *http.Request) string {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/plans":
		return "POST /api/v1/plans"
	case strings.HasPrefix(r.URL.Path, "/api/v1/jobs/") && strings.HasSuffix(r.URL.Path, "/violations"):
		return "GET /api/v1/jobs/{id}/violations"
	case strings.HasPrefix(r.URL.Path, "/api/v1/jobs/") && strings.HasSuffix(r.URL.Path, "/report"):
		return "GET /api/v1/jobs/{id}/report"
	case strings.HasPrefix(r.URL.Path, "/api/v1/jobs/"):
		return "GET /api/v1/jobs/{id}"
	case r.URL.Path == "/api/v1/map":
		return "GET /api/v1/map"
	default:
		return r.Method + " " + r.URL.Path
	}
}

func actionForRoute(r *http.Request) audit.Action {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/plans":
		return audit.ActionPlanSubmit
	case strings.HasSuffix(r.URL.Path, "/report"):
		return audit.ActionReportExport
	default:
		return audit.ActionPlanView
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
