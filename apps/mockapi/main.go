package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	echomock "github.com/tclass/web/apps/mockapi/echo"
	"github.com/tclass/web/core"
	logsvc "github.com/tclass/web/services/logger"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "MOCKAPI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	users := echomock.NewUserStore(0)
	if err := echomock.SeedUsers(users, conf.Mock.Password); err != nil {
		logger.Fatal(fmt.Sprintf("seeding users: %v", err), err)
	}

	server := echomock.NewServer(echomock.ServerDeps{
		Conf:   conf,
		Logger: logger,
		Users:  users,
		Inbox:  echomock.NewInbox(),
	})

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start()
	}()
	logger.Info(fmt.Sprintf("mock backend listening on %s (users: student|faculty|admin@tclass.local)", conf.Mock.Addr))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errs:
		if err != nil {
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)
		}
	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
