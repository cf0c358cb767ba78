package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mhpenta/genmedia"
	"github.com/mhpenta/genmedia/internal/config"
	"github.com/mhpenta/genmedia/internal/lib/sl"
	"github.com/mhpenta/genmedia/internal/node"
	"github.com/mhpenta/genmedia/provider/vertex"
	"github.com/mhpenta/genmedia/ratelimiter"
	"github.com/samber/do"
)

func setup(conf *config.Config, log *slog.Logger) *do.Injector {
	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[genmedia.Capability](injector, vertex.Capability())
	do.Provide[genmedia.Registry](injector, func(i *do.Injector) (genmedia.Registry, error) {
		return genmedia.BuildRegistry(do.MustInvoke[genmedia.Capability](i), os.LookupEnv), nil
	})
	do.Provide[*genmedia.Adapter](injector, func(i *do.Injector) (*genmedia.Adapter, error) {
		return genmedia.NewAdapter(do.MustInvoke[genmedia.Capability](i),
			genmedia.WithLogger(log.With(sl.Module("adapter"))),
			genmedia.WithRequestsPerMinute(conf.ModelRequestsPerMinute),
			genmedia.WithMaxWait(conf.ModelMaxWait),
		), nil
	})
	do.ProvideNamedValue[int](injector, "rate_limit_per_minute", conf.RateLimitPerMinute)
	do.Provide[ratelimiter.Registry](injector, func(i *do.Injector) (ratelimiter.Registry, error) {
		return ratelimiter.NewRequestRegistry(do.MustInvokeNamed[int](i, "rate_limit_per_minute")), nil
	})
	do.Provide[*node.Handler](injector, func(i *do.Injector) (*node.Handler, error) {
		return node.NewHandler(
			do.MustInvoke[genmedia.Registry](i),
			do.MustInvoke[*genmedia.Adapter](i),
			do.MustInvoke[ratelimiter.Registry](i),
			log,
		), nil
	})

	return injector
}
