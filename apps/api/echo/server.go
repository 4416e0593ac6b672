package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/dashboard"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc       user.ServiceInterface
		CourseSvc     course.ServiceInterface
		EnrollmentSvc enrollment.ServiceInterface
		EventSvc      calendar.ServiceInterface
		ChatSvc       chat.ServiceInterface
		GradeSvc      grade.ServiceInterface
		DashboardSvc  *dashboard.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		metrics  *metrics
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.UserSvc),
		metrics:  newMetrics(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.metrics.middleware())
	s.app.Use(middleware.Secure())
	if len(conf.Server.AllowedOrigins) > 0 {
		s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     conf.Server.AllowedOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", s.metrics.handler())

	g := s.app.Group("/api")
	authed := []echo.MiddlewareFunc{
		middleware.JWTWithConfig(s.auth.jwtConfig),
		contextUserMiddleware(s.deps.UserSvc),
	}

	registerUserAPI(g, authed, s.auth, newLoginRateLimiter(conf.Server.LoginRateLimit), s.deps)
	registerCourseAPI(g, authed, s.deps)
	registerEnrollmentAPI(g, authed, s.deps)
	registerEventAPI(g, authed, s.deps)
	registerChatAPI(g, authed, s.deps)
	registerGradeAPI(g, authed, s.deps)
	registerDashboardAPI(g, authed, s.deps)
}

// Start blocks serving HTTP until the Server is shut down. Failures are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to CourseHub API!")
}
