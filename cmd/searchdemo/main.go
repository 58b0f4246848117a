// Command searchdemo serves the demo catalog for the palette's remote search.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"cmdpalette/internal/logging"
	"cmdpalette/internal/searchapi"
)

func main() {
	addr := pflag.StringP("addr", "a", "localhost:8080", "Address to listen on")
	path := pflag.String("path", "/search", "Path of the search endpoint")
	delay := pflag.Duration("delay", 500*time.Millisecond, "Simulated backend latency")
	debug := pflag.Bool("debug", false, "Log every request")
	pflag.Parse()

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	logger := logging.NewWithConfig(os.Stderr, "[searchdemo]", level, false, true, log.TextFormatter)

	mux := http.NewServeMux()
	mux.Handle(*path, searchapi.NewHandler(searchapi.DefaultCatalog(), *delay, logger))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "err", err)
		}
	}()

	logger.Info("Serving demo search", "addr", *addr, "path", *path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", "err", err)
	}
}
