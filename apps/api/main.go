package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"net/mail"
	"os"

	echoapi "github.com/trezcool/ccourse/apps/api/echo"
	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/course"
	"github.com/trezcool/ccourse/core/material"
	"github.com/trezcool/ccourse/core/schedule"
	"github.com/trezcool/ccourse/core/user"
	emailsvc "github.com/trezcool/ccourse/services/email"
	logsvc "github.com/trezcool/ccourse/services/logger"
	"github.com/trezcool/ccourse/storage"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	repos, err := storage.Open(context.Background(), conf, storage.Options{})
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Storage, err), err)
	}
	defer func() {
		if err = repos.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validator := core.NewValidator()
	course.InitValidators(validator.Validate, validator.Translator)
	schedule.InitValidators(validator.Validate, validator.Translator)
	material.InitValidators(validator.Validate, validator.Translator)
	user.InitValidators(validator.Validate, validator.Translator)

	core.ParseEmailTemplates(logger)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger, log.New(os.Stdout, "MAIL : ", log.LstdFlags))
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var recipients []mail.Address
	if conf.StudentEmail != "" {
		addr, err := mail.ParseAddress(conf.StudentEmail)
		if err != nil {
			logger.Fatal(fmt.Sprintf("parsing student email %q: %v", conf.StudentEmail, err), err)
		}
		recipients = append(recipients, *addr)
	}

	curriculum, err := course.LoadCurriculum(course.DefaultCurriculum())
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Validator:    validator,
		Curriculum:   curriculum,
		ProgressRepo: repos.Progress,
		ScheduleRepo: repos.Schedule,
		Notifier:     schedule.NewEmailNotifier(mailSvc, recipients...),
		UserSvc:      user.NewService(repos.Users, validator),
		MaterialSvc:  material.NewService(repos.Material, curriculum, validator),
	})

	go func() {
		server.Start()
	}()

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
