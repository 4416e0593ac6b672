package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/coursehub/apps/api/echo"
	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/dashboard"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/user"
	emailsvc "github.com/trezcool/coursehub/services/email"
	logsvc "github.com/trezcool/coursehub/services/logger"
	inmemdb "github.com/trezcool/coursehub/storage/database/inmem"
	"github.com/trezcool/coursehub/storage/fixtures"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	zl := logsvc.NewZapLogger(conf)
	logger := logsvc.NewRollbarLogger(zl.Named("API"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	dbLogger := logsvc.NewRollbarLogger(zl.Named("DB"), conf)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc)
	crsSvc := course.NewService(inmemdb.NewCourseRepository(db))
	enrSvc := enrollment.NewService(inmemdb.NewEnrollmentRepository(db), mailSvc)
	evtSvc := calendar.NewService(inmemdb.NewEventRepository(db))
	chatSvc := chat.NewService(inmemdb.NewChatRepository(db), usrSvc)
	grdSvc := grade.NewService(inmemdb.NewGradeRepository(db))
	dashSvc := dashboard.NewService(usrSvc, crsSvc, enrSvc, evtSvc, grdSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	calendar.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       usrSvc,
		CourseSvc:     crsSvc,
		EnrollmentSvc: enrSvc,
		EventSvc:      evtSvc,
		ChatSvc:       chatSvc,
		GradeSvc:      grdSvc,
		DashboardSvc:  dashSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpDB opens the in-memory store & seeds it from conf.FixturesPath (or the bundled fixtures).
func setUpDB(conf *core.Config) (*inmemdb.DB, error) {
	fx, err := fixtures.Load(conf.FixturesPath)
	if err != nil {
		return nil, err
	}
	db, err := inmemdb.Open()
	if err != nil {
		return nil, err
	}
	if err = db.Seed(fx); err != nil {
		return nil, err
	}
	return db, nil
}
