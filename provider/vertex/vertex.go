//go:build !noimagen

// Package vertex provides a genmedia.ImageService backed by Imagen on Vertex AI.
//
// This provider uses the Vertex AI backend of the official Go SDK:
// https://github.com/googleapis/go-genai
//
// Credentials are resolved by the SDK through Application Default Credentials.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mhpenta/genmedia"
	"google.golang.org/genai"
)

// Raw payload types reported for entries that carry no usable image bytes.
const (
	RawTypeNil         = "nil"
	RawTypeGCSURI      = "gcs_uri"
	RawTypeRAIFiltered = "rai_filtered"
	RawTypeEmpty       = "empty_image"
)

// Service implements genmedia.ImageService using Google's genai SDK.
type Service struct {
	client   *genai.Client
	project  string
	location string
}

// Ensure Service implements the interface.
var _ genmedia.ImageService = (*Service)(nil)

// New creates a Service bound to a Vertex AI project and region.
func New(ctx context.Context, project, location string) (*Service, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  project,
		Location: location,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &Service{
		client:   client,
		project:  project,
		location: location,
	}, nil
}

// NewFactory returns a genmedia.ClientFactory that builds a fresh Service per call.
func NewFactory() genmedia.ClientFactory {
	return func(ctx context.Context, project, location string) (genmedia.ImageService, error) {
		svc, err := New(ctx, project, location)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
}

// GenerateImages issues one GenerateImages call.
func (s *Service) GenerateImages(ctx context.Context, model genmedia.Model, prompt string, config *genmedia.GenerationConfig) (*genmedia.ServiceResponse, error) {
	resp, err := s.client.Models.GenerateImages(ctx, model.String(), prompt, buildImagesConfig(config))
	if err != nil {
		return nil, checkRateLimitError(err, model.String())
	}
	return convertResponse(resp), nil
}

// Models returns the Imagen models reachable through Vertex AI.
// The first model is the default.
func (s *Service) Models() []genmedia.ModelInfo {
	return Models()
}

// Close releases any resources held by the service.
func (s *Service) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// buildImagesConfig converts our config to the SDK's GenerateImagesConfig.
func buildImagesConfig(config *genmedia.GenerationConfig) *genai.GenerateImagesConfig {
	if config == nil {
		return &genai.GenerateImagesConfig{IncludeRAIReason: true}
	}

	imagesConfig := &genai.GenerateImagesConfig{
		NumberOfImages:    int32(config.NumberOfImages),
		AspectRatio:       config.AspectRatio.String(),
		SafetyFilterLevel: genai.SafetyFilterLevel(config.SafetyFilterLevel),
		PersonGeneration:  genai.PersonGeneration(config.PersonGeneration),
		IncludeRAIReason:  true,
	}

	if config.Seed != nil {
		imagesConfig.Seed = genai.Ptr(seedToInt32(*config.Seed))
	}

	return imagesConfig
}

// seedToInt32 folds a non-negative seed into the SDK's int32 range.
// Validated requests already fit.
func seedToInt32(seed int64) int32 {
	return int32(seed % (math.MaxInt32 + 1))
}

// convertResponse maps SDK images onto payloads. Entries without inline
// bytes keep a RawType describing what the service sent instead.
func convertResponse(resp *genai.GenerateImagesResponse) *genmedia.ServiceResponse {
	if resp == nil {
		return nil
	}

	out := &genmedia.ServiceResponse{
		GeneratedImages: make([]genmedia.GeneratedImage, 0, len(resp.GeneratedImages)),
	}
	for _, generated := range resp.GeneratedImages {
		if generated == nil {
			out.GeneratedImages = append(out.GeneratedImages, genmedia.GeneratedImage{RawType: RawTypeNil})
			continue
		}

		entry := genmedia.GeneratedImage{RAIFilteredReason: generated.RAIFilteredReason}
		switch img := generated.Image; {
		case img != nil && len(img.ImageBytes) > 0:
			entry.Payload = genmedia.EncodedImage{Data: img.ImageBytes, MIMEType: img.MIMEType}
		case img != nil && img.GCSURI != "":
			entry.RawType = RawTypeGCSURI
		case generated.RAIFilteredReason != "":
			entry.RawType = RawTypeRAIFiltered
		case img != nil:
			entry.RawType = RawTypeEmpty
		default:
			entry.RawType = RawTypeNil
		}
		out.GeneratedImages = append(out.GeneratedImages, entry)
	}

	return out
}

// checkRateLimitError wraps quota rejections in a RateLimitError for standardized
// handling; other errors are returned unchanged.
func checkRateLimitError(err error, model string) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	if apiErr.Code != 429 && apiErr.Status != "RESOURCE_EXHAUSTED" {
		return err
	}

	return &genmedia.RateLimitError{
		RetryAfter: 60 * time.Second, // Default; API doesn't reliably provide Retry-After
		LimitType:  "requests",
		Model:      model,
		Err:        err,
	}
}
