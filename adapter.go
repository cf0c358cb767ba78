package genmedia

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mhpenta/genmedia/ratelimiter"
)

// Adapter turns a GenerationRequest into one call against the hosted
// text-to-image service and returns a normalized image batch.
//
// An Adapter holds no per-call state; a fresh client and config are built for
// every Generate call, so it is safe for concurrent use.
type Adapter struct {
	capability Capability
	logger     *slog.Logger

	// rateLimiters is written only by options during construction.
	rateLimiters map[Model]ratelimiter.Limiter
	maxWait      time.Duration
}

// NewAdapter creates an Adapter for the given capability.
//
// Example:
//
//	adapter := genmedia.NewAdapter(vertex.Capability(),
//	    genmedia.WithLogger(slog.Default()),
//	)
//	result := adapter.Generate(ctx, genmedia.DefaultRequest(project, "us-central1", prompt))
func NewAdapter(capability Capability, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		capability:   capability,
		logger:       slog.Default(),
		rateLimiters: make(map[Model]ratelimiter.Limiter),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Capability returns the capability the adapter was built with.
func (a *Adapter) Capability() Capability {
	return a.capability
}

// Generate runs the full request pipeline. It never returns an error value;
// every failure is reported through GenerationResult.
func (a *Adapter) Generate(ctx context.Context, req GenerationRequest) GenerationResult {
	model := req.Model

	if !a.capability.IsAvailable() {
		a.logger.Warn("image generation unavailable",
			"model", string(model),
			"reason", a.capability.Reason(),
		)
		return failure(newGenerationError(KindCapabilityUnavailable, model,
			errors.New(a.capability.Reason()), MsgCapabilityUnavailable))
	}

	if err := ValidateLocation(req.Project, req.Location); err != nil {
		return failure(newGenerationError(KindConfiguration, model, err, MsgMissingProjectLocation))
	}
	if err := ValidateRequest(req); err != nil {
		return failure(newGenerationError(KindConfiguration, model, err, "Error: invalid request: %v", err))
	}

	start := time.Now()
	a.logger.Debug("starting image generation",
		"model", string(model),
		"location", req.Location,
		"prompt_length", len(req.Prompt),
		"number_of_images", req.NumberOfImages,
	)

	if err := a.checkRateLimit(ctx, model); err != nil {
		a.logger.Warn("rate limited before calling service",
			"model", string(model),
			"error", err.Error(),
		)
		return failure(newGenerationError(KindRemoteCall, model, err,
			"Error calling Imagen API with google-genai (model: %s): %v", model, err))
	}

	svc, err := a.capability.Factory()(ctx, req.Project, req.Location)
	if err != nil {
		a.logger.Error("failed to create client",
			"location", req.Location,
			"error", err.Error(),
		)
		return failure(newGenerationError(KindClientConstruction, model, err,
			"Error initializing google.genai Client: %v", err))
	}
	defer func() {
		if err := svc.Close(); err != nil {
			a.logger.Warn("closing client", "error", err.Error())
		}
	}()

	config := a.buildConfig(svc, req)

	resp, err := svc.GenerateImages(ctx, model, req.Prompt, config)
	duration := time.Since(start)
	if err != nil {
		a.logger.Error("generation failed",
			"model", string(model),
			"duration_ms", duration.Milliseconds(),
			"rate_limited", IsRateLimitError(err),
			"error", err.Error(),
		)
		return failure(newGenerationError(KindRemoteCall, model, err,
			"Error calling Imagen API with google-genai (model: %s): %v", model, err))
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return failure(newGenerationError(KindResponseShape, model, nil,
			"No images returned from API (model: %s) or unexpected response structure.", model))
	}

	frames := make([]frame, 0, len(resp.GeneratedImages))
	for i, entry := range resp.GeneratedImages {
		if entry.Payload == nil {
			a.logger.Warn("skipping image with unrecognized payload",
				"model", string(model),
				"index", i,
				"type", rawTypeOrNil(entry.RawType),
				"rai_filtered_reason", entry.RAIFilteredReason,
			)
			continue
		}

		// Unrecognized payloads above are skipped, but a decode failure on a
		// recognized payload fails the whole batch. Existing node graphs rely
		// on this behavior, so the two policies are intentionally different.
		height, width, data, err := DecodePayload(entry.Payload)
		if err != nil {
			a.logger.Error("decoding image failed",
				"model", string(model),
				"index", i,
				"error", err.Error(),
			)
			return failure(newGenerationError(KindDecode, model, err,
				"Error processing image data from API response (model: %s): %v", model, err))
		}
		frames = append(frames, frame{height: height, width: width, data: data})
	}

	if len(frames) == 0 {
		return failure(newGenerationError(KindEmptyResult, model, nil,
			"Failed to decode any images from API response (model: %s).", model))
	}

	batch, err := stackFrames(frames)
	if err != nil {
		return failure(newGenerationError(KindStack, model, err,
			"Error stacking images into a batch (model: %s): %v", model, err))
	}

	a.logger.Info("generation completed",
		"model", string(model),
		"duration_ms", duration.Milliseconds(),
		"image_count", batch.N,
		"height", batch.Height,
		"width", batch.Width,
	)

	return success(batch, model)
}

// buildConfig assembles the config sent with the prompt. A seed is attached
// only when the model's schema has a seed field.
func (a *Adapter) buildConfig(svc ImageService, req GenerationRequest) *GenerationConfig {
	config := &GenerationConfig{
		NumberOfImages:    req.NumberOfImages,
		AspectRatio:       req.AspectRatio,
		SafetyFilterLevel: req.SafetyFilterLevel,
		PersonGeneration:  req.PersonGeneration,
	}

	if !req.HasSeed() {
		return config
	}

	info, ok := FindModel(svc.Models(), req.Model)
	if !ok || !info.Capabilities.SupportsSeed {
		a.logger.Warn("seed not supported by model config, ignoring seed",
			"model", string(req.Model),
			"seed", req.Seed,
		)
		return config
	}

	seed := req.Seed
	config.Seed = &seed
	return config
}

// checkRateLimit consumes one request from the model's limiter. With a max
// wait configured it blocks until a request is admitted; otherwise it fails fast.
func (a *Adapter) checkRateLimit(ctx context.Context, model Model) error {
	limiter := a.rateLimiters[model]
	if limiter == nil {
		return nil
	}

	if a.maxWait > 0 {
		return limiter.Wait(ctx, a.maxWait)
	}

	if !limiter.Allow() {
		return &RateLimitError{
			RetryAfter: limiter.TimeUntilAvailable(),
			LimitType:  "requests",
			Model:      string(model),
		}
	}
	return nil
}

func rawTypeOrNil(t string) string {
	if t == "" {
		return "<nil>"
	}
	return t
}
