package genmedia

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
)

// ImageService is a client bound to one project and region of the hosted
// text-to-image service. Implementations live under provider/.
type ImageService interface {
	// GenerateImages issues one synchronous generation request.
	GenerateImages(ctx context.Context, model Model, prompt string, config *GenerationConfig) (*ServiceResponse, error)

	// Models returns the models this service knows, including which config
	// fields each model's schema accepts.
	Models() []ModelInfo

	// Close releases any resources held by the client.
	Close() error
}

// ClientFactory builds an ImageService bound to project and location.
type ClientFactory func(ctx context.Context, project, location string) (ImageService, error)

// ServiceResponse is the provider-neutral form of a generation response.
type ServiceResponse struct {
	GeneratedImages []GeneratedImage
}

// Storage persists objects and returns a URI that identifies them.
// The path is the full object path (e.g. "doodles/2025/01/abc.png").
type Storage interface {
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// EncodePNG writes batch entry i as PNG.
func EncodePNG(w io.Writer, batch *Batch, i int) error {
	img, err := batch.Image(i)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// EncodePNGs encodes every batch entry as PNG, in batch order.
func EncodePNGs(batch *Batch) ([][]byte, error) {
	if batch == nil {
		return nil, nil
	}
	out := make([][]byte, 0, batch.N)
	for i := 0; i < batch.N; i++ {
		var buf bytes.Buffer
		if err := EncodePNG(&buf, batch, i); err != nil {
			return nil, fmt.Errorf("encoding image %d: %w", i, err)
		}
		out = append(out, buf.Bytes())
	}
	return out, nil
}
