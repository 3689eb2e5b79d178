package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/profiler"
	"github.com/spf13/afero"

	"github.com/doitintl/hello/lighthouse/cmd/api"
	"github.com/doitintl/hello/lighthouse/common"
	"github.com/doitintl/hello/lighthouse/config"
	"github.com/doitintl/hello/lighthouse/errorreporting"
	"github.com/doitintl/hello/lighthouse/framework/connection"
	"github.com/doitintl/hello/lighthouse/lighthouse/dal"
	"github.com/doitintl/hello/lighthouse/lighthouse/handler"
	"github.com/doitintl/hello/lighthouse/lighthouse/runner"
	"github.com/doitintl/hello/lighthouse/lighthouse/service"
	"github.com/doitintl/hello/lighthouse/logger"
	"github.com/doitintl/hello/lighthouse/secretmanager"
)

const (
	defaultAddr = "0.0.0.0:8080"
)

func main() {
	if err := run(); err != nil {
		log.Println("error: ", err)
		os.Exit(1)
	}
}

func run() error {
	// Profiler initialization, best done as early as possible.
	if common.Production {
		if err := profiler.Start(profiler.Config{
			Service:        common.Service,
			ServiceVersion: common.Revision,
		}); err != nil {
			log.Printf("main: could not start profiler: %v", err)
		}
	}

	ctx := context.Background()

	cfg, err := config.Load(common.ConfigPath)
	if err != nil {
		log.Printf("main: could not load config. error %s", err)
		return err
	}

	if err := cfg.ResolveProjectID(); err != nil {
		return err
	}

	logging, err := logger.NewLogging(ctx)
	if err != nil {
		log.Printf("main: could not initialize logging. error %s", err)
		return err
	}

	defer logging.Close()

	reporter, err := errorreporting.NewReporter(ctx, cfg.ProjectID)
	if err != nil {
		log.Printf("main: could not initialize error reporting. error %s", err)
		return err
	}

	defer reporter.Close()

	conn, err := connection.NewConnection(ctx, logging, cfg.ProjectID)
	if err != nil {
		log.Printf("main: could not initialize connections. error %s", err)
		return err
	}

	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("main: could not close connections. error %s", err)
		}
	}()

	fs := afero.NewOsFs()

	auditRunner, err := runner.New(ctx, cfg, fs, secretmanager.AccessSecret)
	if err != nil {
		log.Printf("main: could not initialize lighthouse runner. error %s", err)
		return err
	}

	topics := dal.NewPubsubTopics(conn.Pubsub())
	defer topics.Stop()

	dispatcher := service.NewDispatcher(
		logger.FromContext,
		cfg,
		topics,
		dal.NewReportBucket(conn.CloudStorage(), cfg.GCS.BucketName),
		dal.NewReportTable(conn.Bigquery(), fs),
		auditRunner,
		fs,
	)

	log.Printf("started: lighthouse for %d targets", len(cfg.Source))

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener or the
	// subscriber. Use a buffered channel so the goroutines can exit if we
	// don't collect this error.
	serverErrors := make(chan error, 2)

	receiveCtx, stopReceiving := context.WithCancel(ctx)
	defer stopReceiving()

	if common.SubscriptionID != "" {
		subscriber := handler.NewSubscriber(conn.Pubsub().Subscription(common.SubscriptionID), dispatcher)

		go func() {
			log.Printf("pulling from subscription %s", common.SubscriptionID)

			if err := subscriber.Receive(receiveCtx); err != nil {
				serverErrors <- fmt.Errorf("%s : receiving messages", err)
			}
		}()
	}

	addr, err := getAddr()
	if err != nil {
		log.Println(err)
		return err
	}

	server := http.Server{
		Addr:    addr,
		Handler: api.NewAPI(shutdown, reporter, dispatcher).Build(),
	}

	// Start the service listening for requests.
	go func() {
		log.Printf("listening on %s", addr)
		serverErrors <- server.ListenAndServe()
	}()

	// =================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("%s : starting server", err)

	case sig := <-shutdown:
		log.Printf("%v : start shutdown", sig)

		stopReceiving()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Asking listener to shutdown and load shed.
		err := server.Shutdown(ctx)
		if err != nil {
			log.Printf("main : graceful shutdown did not complete")

			err = server.Close()
		}

		// Log the status of this shutdown.
		switch {
		case sig == syscall.SIGSTOP:
			return errors.New("integrity issue caused shutdown")
		case err != nil:
			return fmt.Errorf("could not stop server gracefully: %s", err)
		}
	}

	return nil
}

func getAddr() (string, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return defaultAddr, nil
	}

	return fmt.Sprintf(":%s", port), nil
}
