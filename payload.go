package genmedia

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrEmptyImageData is returned when an encoded payload carries no bytes.
var ErrEmptyImageData = errors.New("image data cannot be empty")

// Payload is the per-image value returned by the service. It is either
// EncodedImage or DecodedImage.
type Payload interface {
	decode() (image.Image, error)
	payload()
}

// EncodedImage is a compressed image (png, jpeg, gif or webp).
type EncodedImage struct {
	Data     []byte
	MIMEType string
}

// DecodedImage is an image the service client already decoded.
type DecodedImage struct {
	Image image.Image
}

func (EncodedImage) payload() {}
func (DecodedImage) payload() {}

func (p EncodedImage) decode() (image.Image, error) {
	if len(p.Data) == 0 {
		return nil, ErrEmptyImageData
	}
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s (%d bytes): %w", mimeOrUnknown(p.MIMEType), len(p.Data), err)
	}
	return img, nil
}

func (p DecodedImage) decode() (image.Image, error) {
	if p.Image == nil {
		return nil, errors.New("decoded image is nil")
	}
	return p.Image, nil
}

func mimeOrUnknown(mime string) string {
	if mime == "" {
		return "image"
	}
	return mime
}

// GeneratedImage is one entry of a service response. Payload is nil when the
// provider could not map the service's value; RawType then names what it saw.
type GeneratedImage struct {
	Payload Payload
	RawType string

	// RAIFilteredReason is set when the service filtered this image.
	RAIFilteredReason string
}

// DecodePayload decodes p and converts it to float RGB samples in [0,1].
func DecodePayload(p Payload) (height, width int, data []float32, err error) {
	img, err := p.decode()
	if err != nil {
		return 0, 0, nil, err
	}
	f := toRGBFrame(img)
	return f.height, f.width, f.data, nil
}

// toRGBFrame drops alpha and scales each 8-bit channel by 1/255.
func toRGBFrame(img image.Image) frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]float32, 0, w*h*Channels)

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := src.Pix[off : off+w*4]
			for x := 0; x < w; x++ {
				p := row[x*4 : x*4+3]
				data = append(data, float32(p[0])/255, float32(p[1])/255, float32(p[2])/255)
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				data = append(data, float32(c.R)/255, float32(c.G)/255, float32(c.B)/255)
			}
		}
	}

	return frame{height: h, width: w, data: data}
}
