// Command imagennode serves the Imagen node to a node-graph host over HTTP.
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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mhpenta/genmedia"
	"github.com/mhpenta/genmedia/internal/config"
	"github.com/mhpenta/genmedia/internal/lib/httpx"
	"github.com/mhpenta/genmedia/internal/lib/sl"
	"github.com/mhpenta/genmedia/internal/node"
	"github.com/mhpenta/genmedia/ratelimiter"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const (
	limiterSweepInterval = time.Minute
	limiterMaxIdle       = 2 * time.Minute
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	log := sl.SetupLogger(conf.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := setup(conf, log)
	capability := do.MustInvoke[genmedia.Capability](injector)
	registry := do.MustInvoke[genmedia.Registry](injector)
	handler := do.MustInvoke[*node.Handler](injector)
	limits := do.MustInvoke[ratelimiter.Registry](injector)

	log.With(
		slog.String("env", conf.Env),
		slog.Bool("imagen_available", capability.IsAvailable()),
		slog.Int("nodes", len(registry.Nodes)),
	).Info("starting imagen node bridge")
	if !capability.IsAvailable() {
		log.Warn("imagen node not registered", slog.String("reason", capability.Reason()))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if conf.HTTP.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer, httpx.Logger(log))
	r.Get("/healthz", httpx.Health)
	r.Mount("/", handler.Routes())

	srv := &http.Server{
		Addr:              conf.Addr(),
		Handler:           r,
		ReadTimeout:       conf.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      conf.HTTP.WriteTimeout,
		IdleTimeout:       conf.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("node bridge listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ratelimiter.SweepEvery(gctx, limits, limiterSweepInterval, limiterMaxIdle)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("node bridge stopped with error", sl.Err(err))
		_ = injector.Shutdown()
		os.Exit(1)
	}
	_ = injector.Shutdown()
	log.Info("shutdown complete")
}
