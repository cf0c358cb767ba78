package genmedia

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_SolidColorRoundTrip(t *testing.T) {
	c := color.NRGBA{R: 10, G: 128, B: 255, A: 255}
	data := solidPNG(t, 16, 9, c)

	h, w, samples, err := DecodePayload(EncodedImage{Data: data, MIMEType: "image/png"})

	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 16, w)
	require.Len(t, samples, 16*9*3)
	want := [3]float32{float32(c.R) / 255.0, float32(c.G) / 255.0, float32(c.B) / 255.0}
	for i, v := range samples {
		if v != want[i%3] {
			t.Fatalf("sample %d = %v, want %v", i, v, want[i%3])
		}
	}
}

func TestDecodePayload_JPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(8, 8, color.NRGBA{R: 90, G: 90, B: 90, A: 255}), &jpeg.Options{Quality: 100}))

	h, w, samples, err := DecodePayload(EncodedImage{Data: buf.Bytes(), MIMEType: "image/jpeg"})

	require.NoError(t, err)
	assert.Equal(t, 8, h)
	assert.Equal(t, 8, w)
	assert.Len(t, samples, 8*8*3)
	assert.InDelta(t, 90.0/255.0, samples[0], 2.0/255.0)
}

func TestDecodePayload_GrayBecomesRGB(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range gray.Pix {
		gray.Pix[i] = 51
	}

	h, w, samples, err := DecodePayload(DecodedImage{Image: gray})

	require.NoError(t, err)
	assert.Equal(t, 2, h)
	assert.Equal(t, 2, w)
	require.Len(t, samples, 2*2*3)
	for _, v := range samples {
		assert.Equal(t, float32(51)/255, v)
	}
}

func TestDecodePayload_DropsAlpha(t *testing.T) {
	img := solidImage(1, 1, color.NRGBA{R: 200, G: 20, B: 2, A: 128})

	_, _, samples, err := DecodePayload(DecodedImage{Image: img})

	require.NoError(t, err)
	assert.Equal(t, []float32{float32(200) / 255, float32(20) / 255, float32(2) / 255}, samples)
}

func TestDecodePayload_SubImage(t *testing.T) {
	img := solidImage(4, 4, color.NRGBA{A: 255})
	img.SetNRGBA(2, 2, color.NRGBA{R: 255, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))

	h, w, samples, err := DecodePayload(DecodedImage{Image: sub})

	require.NoError(t, err)
	assert.Equal(t, 2, h)
	assert.Equal(t, 2, w)
	assert.Equal(t, float32(1), samples[0])
	assert.Equal(t, float32(0), samples[3])
}

func TestDecodePayload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		wantErr error
	}{
		{name: "empty bytes", payload: EncodedImage{MIMEType: "image/png"}, wantErr: ErrEmptyImageData},
		{name: "garbage bytes", payload: EncodedImage{Data: []byte("garbage"), MIMEType: "image/png"}},
		{name: "nil decoded image", payload: DecodedImage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := DecodePayload(tt.payload)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBatch_ImageRoundTrip(t *testing.T) {
	c := color.NRGBA{R: 12, G: 34, B: 56, A: 255}
	_, _, samples, err := DecodePayload(DecodedImage{Image: solidImage(3, 3, c)})
	require.NoError(t, err)

	batch, err := stackFrames([]frame{{height: 3, width: 3, data: samples}})
	require.NoError(t, err)

	img, err := batch.Image(0)
	require.NoError(t, err)
	assert.Equal(t, c, img.NRGBAAt(1, 1))
}

func TestBatch_ImageOutOfRange(t *testing.T) {
	batch := &Batch{N: 2, Height: 1, Width: 1, Data: make([]float32, 2*Channels)}

	for _, i := range []int{-1, 2, 10} {
		_, err := batch.Image(i)
		assert.ErrorIs(t, err, ErrImageIndex, "index %d", i)
	}

	short := &Batch{N: 2, Height: 1, Width: 1, Data: make([]float32, Channels)}
	_, err := short.Image(1)
	assert.ErrorIs(t, err, ErrImageIndex)

	var buf bytes.Buffer
	assert.ErrorIs(t, EncodePNG(&buf, batch, 3), ErrImageIndex)
}

func TestStackFrames(t *testing.T) {
	a := frame{height: 1, width: 2, data: []float32{0, 0, 0, 1, 1, 1}}
	b := frame{height: 1, width: 2, data: []float32{.5, .5, .5, .25, .25, .25}}

	batch, err := stackFrames([]frame{a, b})
	require.NoError(t, err)
	assert.Equal(t, [4]int{2, 1, 2, 3}, batch.Shape())
	assert.Equal(t, float32(.25), batch.At(1, 0, 1, 2))

	_, err = stackFrames([]frame{a, {height: 2, width: 2, data: make([]float32, 12)}})
	assert.Error(t, err)

	_, err = stackFrames(nil)
	assert.Error(t, err)
}
