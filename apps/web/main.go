package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoweb "github.com/tclass/web/apps/web/echo"
	"github.com/tclass/web/core"
	"github.com/tclass/web/core/admission"
	"github.com/tclass/web/core/auth"
	"github.com/tclass/web/core/contact"
	"github.com/tclass/web/core/enrollment"
	backendsvc "github.com/tclass/web/services/backend"
	emailsvc "github.com/tclass/web/services/email"
	logsvc "github.com/tclass/web/services/logger"
	metricsvc "github.com/tclass/web/services/metrics"
	"github.com/tclass/web/storage/drafts"
)

const (
	backendTimeout = 30 * time.Second
	sweepInterval  = time.Minute
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	storeLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DRAFTS : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	storeLogger.Enable(!conf.Debug)

	// set up metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := metricsvc.NewMetrics(registry)

	// set up draft storage
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeDrafts, err := drafts.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s draft store: %v", conf.Draft.Store, err), err)
	}
	defer func() {
		if err = closeDrafts(); err != nil {
			storeLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	if conf.APIBaseURL == "" {
		logger.Warn(core.MsgMissingAPI)
	}
	backend := backendsvc.NewClient(conf.APIBaseURL, backendTimeout, metrics, logger)

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	formDeps := admission.Deps{
		Drafts:  store,
		Backend: backend,
		Logger:  storeLogger,
	}
	if conf.NotifyApplicants {
		formDeps.Notifier = admission.NewMailNotifier(emailsvc.NewService(conf, logger), logger)
	}
	forms := admission.NewRegistry(formDeps, conf.Draft.IdleTimeout)
	go forms.Run(ctx, sweepInterval)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics of the web app.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("draftStore").Set(conf.Draft.Store)

	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Web Service

	server := echoweb.NewServer(
		echoweb.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Metrics:       metrics,
			Validate:      validate,
			Translator:    translator,
			AuthSvc:       auth.NewService(backend, validate, translator, logger),
			ContactSvc:    contact.NewService(backend, validate, translator),
			EnrollmentSvc: enrollment.NewService(backend, logger),
			Forms:         forms,
		},
	)

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
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancelShutdown()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(shutdownCtx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
