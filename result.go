package genmedia

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// Channels is the number of color channels in every batch entry.
const Channels = 3

// Batch is an ordered set of equal-sized RGB images stored as float32
// samples in [0,1], laid out as N x H x W x 3 in row-major order.
type Batch struct {
	N, Height, Width int
	Data             []float32
}

// Shape returns the batch dimensions as [N, H, W, C].
func (b *Batch) Shape() [4]int {
	return [4]int{b.N, b.Height, b.Width, Channels}
}

// At returns the sample for image n at (x, y), channel c.
func (b *Batch) At(n, y, x, c int) float32 {
	return b.Data[((n*b.Height+y)*b.Width+x)*Channels+c]
}

// ErrImageIndex is returned by Batch.Image for an index outside [0, N).
var ErrImageIndex = errors.New("image index out of range")

// Image converts entry i back to an 8-bit image.
func (b *Batch) Image(i int) (*image.NRGBA, error) {
	size := b.Height * b.Width * Channels
	if i < 0 || i >= b.N || (i+1)*size > len(b.Data) {
		return nil, fmt.Errorf("%w: %d (batch of %d)", ErrImageIndex, i, b.N)
	}
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	frame := b.Data[i*size : (i+1)*size]
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			o := (y*b.Width + x) * Channels
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(frame[o]),
				G: toByte(frame[o+1]),
				B: toByte(frame[o+2]),
				A: 0xff,
			})
		}
	}
	return img, nil
}

func toByte(v float32) uint8 {
	return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
}

// frame is one decoded image before stacking.
type frame struct {
	height, width int
	data          []float32
}

// stackFrames joins frames into a Batch. All frames must share dimensions.
func stackFrames(frames []frame) (*Batch, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to stack")
	}

	h, w := frames[0].height, frames[0].width
	size := h * w * Channels
	data := make([]float32, 0, size*len(frames))
	for i, f := range frames {
		if f.height != h || f.width != w {
			return nil, fmt.Errorf("image %d is %dx%d, expected %dx%d", i, f.width, f.height, w, h)
		}
		data = append(data, f.data...)
	}

	return &Batch{N: len(frames), Height: h, Width: w, Data: data}, nil
}

// GenerationResult is the outcome of a single generation call.
// Exactly one of Batch and Err is set; Status is always populated.
type GenerationResult struct {
	Batch  *Batch
	Status string
	Err    *GenerationError
}

// OK reports whether the call produced a batch.
func (r GenerationResult) OK() bool {
	return r.Batch != nil
}

func success(batch *Batch, model Model) GenerationResult {
	return GenerationResult{
		Batch:  batch,
		Status: fmt.Sprintf("%d image(s) generated successfully with %s.", batch.N, model),
	}
}

func failure(err *GenerationError) GenerationResult {
	return GenerationResult{
		Status: err.Error(),
		Err:    err,
	}
}
