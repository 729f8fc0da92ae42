package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	echoapi "github.com/shanmukhasaireddy13/study-tracker/apps/api/echo"
	"github.com/shanmukhasaireddy13/study-tracker/apps/container"
	"github.com/shanmukhasaireddy13/study-tracker/core"
	logsvc "github.com/shanmukhasaireddy13/study-tracker/services/logger"
	schedsvc "github.com/shanmukhasaireddy13/study-tracker/services/scheduler"
	"github.com/shanmukhasaireddy13/study-tracker/storage/database"
)

func main() {
	conf := core.Conf

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	if err := run(conf, logger); err != nil {
		logger.Fatal(fmt.Sprintf("%v", err), err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	// =========================================================================
	// Set up Dependencies

	c, err := container.New(conf, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	if c.DB != nil {
		if err := database.Migrate(context.Background(), c.DB, "up"); err != nil {
			return err
		}
	}

	logger.Info(fmt.Sprintf("Application initializing : version %q, storage %q", conf.Build, conf.Database.Engine))
	defer logger.Info("Application stopped")

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
	// Start Scheduler

	if !conf.Scheduler.Disabled {
		sched, err := schedsvc.New(c.TrackingSvc, logger, conf.Scheduler)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
		logger.Info(fmt.Sprintf("next reconciliation at %s", sched.NextRun()))
	}

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address,
		DisableReqLogs: conf.Server.DisableReqLogs,
		Logger:         logger,
		Validate:       c.Validate,
		Translator:     c.Translator,
		Clock:          c.Clock,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		UserSvc:        c.UserSvc,
		TrackingSvc:    c.TrackingSvc,
		SubjectSvc:     c.SubjectSvc,
		NoteSvc:        c.NoteSvc,
		ReportSvc:      c.ReportSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}
	return nil
}
