package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mhpenta/genmedia"
	"github.com/mhpenta/genmedia/internal/config"
	"github.com/mhpenta/genmedia/internal/gcs"
	"github.com/mhpenta/genmedia/internal/lib/sl"
	"github.com/mhpenta/genmedia/internal/studio"
	"github.com/mhpenta/genmedia/provider/vertex"
	"github.com/mhpenta/genmedia/ratelimiter"
	"github.com/samber/do"
)

func setup(ctx context.Context, conf *config.Config, log *slog.Logger) *do.Injector {
	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[*config.Config](injector, conf)
	do.ProvideValue[*slog.Logger](injector, log)
	do.ProvideValue[genmedia.Capability](injector, vertex.Capability())

	do.Provide[*genmedia.Adapter](injector, func(i *do.Injector) (*genmedia.Adapter, error) {
		return genmedia.NewAdapter(do.MustInvoke[genmedia.Capability](i),
			genmedia.WithLogger(log.With(sl.Module("adapter"))),
			genmedia.WithRequestsPerMinute(conf.ModelRequestsPerMinute),
			genmedia.WithMaxWait(conf.ModelMaxWait),
		), nil
	})
	do.Provide[*gcs.Store](injector, func(i *do.Injector) (*gcs.Store, error) {
		return gcs.New(ctx, gcs.Options{
			Bucket:              conf.Google.Bucket,
			ServiceAccountEmail: conf.Google.ServiceAccountEmail,
			TTL:                 conf.Google.SignedURLTTL,
			Logger:              log,
		})
	})
	do.Provide[ratelimiter.Registry](injector, func(i *do.Injector) (ratelimiter.Registry, error) {
		return ratelimiter.NewRequestRegistry(conf.RateLimitPerMinute), nil
	})
	do.Provide[*studio.Server](injector, newStudioServer)

	return injector
}

func newStudioServer(i *do.Injector) (*studio.Server, error) {
	conf := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	capability := do.MustInvoke[genmedia.Capability](i)

	deps := studio.Deps{
		Generator: do.MustInvoke[*genmedia.Adapter](i),
		Limits:    do.MustInvoke[ratelimiter.Registry](i),
		Logger:    log,
	}

	// Signing and uploads are optional; the studio still serves pages without them.
	store, err := do.Invoke[*gcs.Store](i)
	if err != nil {
		log.Warn("cloud storage unavailable", sl.Err(err))
	} else {
		deps.Signer = store
		if store.Bucket() != "" {
			deps.Storage = store
		}
	}

	if !capability.IsAvailable() {
		log.Warn("image generation unavailable", slog.String("reason", capability.Reason()))
	}

	return studio.New(deps, studio.Options{
		Project:             conf.Google.Project,
		Location:            conf.Google.Region,
		Debug:               conf.DebugMode,
		GenerationAvailable: capability.IsAvailable(),
		TrustProxyHeaders:   conf.HTTP.TrustProxyHeaders,
		ConfigView: studio.ConfigView{
			Project:        conf.Google.Project,
			Location:       conf.Google.Region,
			Bucket:         conf.Google.Bucket,
			ServiceAccount: conf.Google.ServiceAccountEmail,
		},
	}), nil
}
