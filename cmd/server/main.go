package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-storefront/apiclient"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/internal/logging"
	"github.com/jrsteele09/go-storefront/server"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

const viewSweepInterval = time.Minute

func main() {
	envFile := flag.String("env", "", "path to a .env file")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeStorage, err := openStorage(ctx, c)
	if err != nil {
		return err
	}
	defer closeStorage()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api, err := apiclient.New(c.GetAPIBaseURL(),
		apiclient.WithTimeout(c.GetAPITimeout()),
		apiclient.WithMaxResponseSize(c.GetAPIMaxResponseSize()),
		apiclient.WithUserAgent(c.GetAppName()),
		apiclient.WithObserver(apiclient.LogObserver{}, apiclient.NewMetrics(reg)),
	)
	if err != nil {
		return fmt.Errorf("apiclient.New: %w", err)
	}

	s, err := server.New(c, server.Deps{API: api, Storage: backend, Gatherer: reg})
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: s}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()
	go sweepViews(ctx, s)

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	return shutdown(httpServer)
}

// openStorage selects the backend holding per-browser session keys
func openStorage(ctx context.Context, c config.Config) (storage.Storage, func(), error) {
	noop := func() {}

	switch c.GetSessionBackend() {
	case config.SessionBackendMemory:
		return storage.NewInMemoryRepo(), noop, nil
	case config.SessionBackendRedis:
		client, err := storage.NewRedisClient(ctx, c.GetRedisURL())
		if err != nil {
			return nil, noop, err
		}
		closeClient := func() {
			if err := client.Close(); err != nil {
				log.Err(err).Msg("Failed to close redis client")
			}
		}
		return storage.NewRedisRepo(client, storage.WithTTL(c.GetSessionTTL())), closeClient, nil
	case config.SessionBackendFile:
		repo, err := storage.NewFileRepo(c.GetSessionFile())
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown session backend %q", c.GetSessionBackend())
	}
}

func sweepViews(ctx context.Context, s *server.Server) {
	ticker := time.NewTicker(viewSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepViews(); n > 0 {
				log.Debug().Int("views", n).Msg("Swept idle product views")
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
