package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/auth"
	"github.com/tclass/web/core/draft"
	backendsvc "github.com/tclass/web/services/backend"
	logsvc "github.com/tclass/web/services/logger"
	metricsvc "github.com/tclass/web/services/metrics"
	"github.com/tclass/web/storage/database"
	"github.com/tclass/web/storage/drafts"
)

func main() {
	stdLogger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.LoadConfig(os.Getenv("ENV"), "")
	if err != nil {
		stdLogger.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(false)

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	backend := backendsvc.NewClient(conf.APIBaseURL, 30*time.Second, metricsvc.NewMetrics(prometheus.NewRegistry()), logger)

	// start CLI
	cli := commandLine{
		out:        os.Stdout,
		authSvc:    auth.NewService(backend, validate, translator, logger),
		draftStore: conf.Draft.Store,
		openDrafts: func(ctx context.Context) (draft.Repository, func() error, error) {
			return drafts.Open(ctx, conf)
		},
		openDB: func(ctx context.Context) (*sqlx.DB, error) {
			return database.Open(ctx, conf.Database)
		},
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
