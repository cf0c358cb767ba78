package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhpenta/genmedia/internal/config"
	"github.com/mhpenta/genmedia/internal/lib/sl"
	"github.com/mhpenta/genmedia/internal/studio"
	"github.com/mhpenta/genmedia/ratelimiter"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const (
	sessionSweepInterval = 10 * time.Minute
	sessionMaxIdle       = 12 * time.Hour

	// A request limiter idle for its refill interval is full again.
	limiterSweepInterval = time.Minute
	limiterMaxIdle       = 2 * time.Minute
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	log := sl.SetupLogger(conf.Env)
	log.With(
		slog.String("config", *configPath),
		slog.String("env", conf.Env),
		slog.String("project", conf.Google.Project),
		slog.String("region", conf.Google.Region),
	).Info("starting genmedia studio")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := setup(ctx, conf, log)
	server := do.MustInvoke[*studio.Server](injector)
	limits := do.MustInvoke[ratelimiter.Registry](injector)

	httpServer := &http.Server{
		Addr:              conf.Addr(),
		Handler:           server.Routes(),
		ReadTimeout:       conf.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      conf.HTTP.WriteTimeout,
		IdleTimeout:       conf.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("studio listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := server.Sessions().Sweep(sessionMaxIdle); n > 0 {
					log.Debug("idle sessions dropped", slog.Int("count", n))
				}
			}
		}
	})
	g.Go(func() error {
		ratelimiter.SweepEvery(gctx, limits, limiterSweepInterval, limiterMaxIdle)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	waitErr := g.Wait()
	if err := injector.Shutdown(); err != nil {
		log.Error("closing services", sl.Err(err))
	}
	if waitErr != nil {
		log.Error("studio stopped with error", sl.Err(waitErr))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
