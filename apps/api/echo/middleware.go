package echoapi

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/trezcool/coursehub/core/permission"
)

// requirePermission refuses the request unless the context user holds the permission checked by has.
func requirePermission(has func(permission.Permissions) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if !has(permission.For(usr)) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
	}
	m.registry.MustRegister(m.requests, m.duration)
	return m
}

// middleware records the count & duration of every request, labelled by route path.
func (m *metrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				ctx.Error(err) // commits the response so the final status is known
			}

			req := ctx.Request()
			endpoint := ctx.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			m.requests.WithLabelValues(req.Method, endpoint, strconv.Itoa(ctx.Response().Status)).Inc()
			m.duration.WithLabelValues(req.Method, endpoint).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func (m *metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type loginRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

// newLoginRateLimiter allows perMinute requests per client IP. perMinute <= 0 disables limiting.
func newLoginRateLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	rl := &loginRateLimiter{
		visitors:  make(map[string]*visitor),
		every:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		ttl:       3 * time.Minute,
		lastSweep: time.Now(),
	}
	return rl.middleware
}

func (rl *loginRateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.ttl {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

func (rl *loginRateLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !rl.allow(ctx.RealIP()) {
			return errTooManyRequests
		}
		return next(ctx)
	}
}
