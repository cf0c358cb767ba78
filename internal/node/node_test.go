package node

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mhpenta/genmedia"
	"github.com/mhpenta/genmedia/ratelimiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	result genmedia.GenerationResult
	last   genmedia.GenerationRequest
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, req genmedia.GenerationRequest) genmedia.GenerationResult {
	f.calls++
	f.last = req
	return f.result
}

func availableCapability() genmedia.Capability {
	return genmedia.Available(func(context.Context, string, string) (genmedia.ImageService, error) {
		return nil, nil
	})
}

func testEnv(key string) (string, bool) {
	switch key {
	case genmedia.EnvProject:
		return "env-project", true
	case genmedia.EnvRegion:
		return "europe-west4", true
	}
	return "", false
}

func newTestServer(t *testing.T, gen Generator, limits ratelimiter.Registry) *httptest.Server {
	t.Helper()
	registry := genmedia.BuildRegistry(availableCapability(), testEnv)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewHandler(registry, gen, limits, log).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func invoke(t *testing.T, srv *httptest.Server, id, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/nodes/"+id+"/invoke", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func gradientBatch() *genmedia.Batch {
	data := make([]float32, 2*2*genmedia.Channels)
	for i := range data {
		data[i] = float32(i) / float32(len(data))
	}
	return &genmedia.Batch{N: 1, Height: 2, Width: 2, Data: data}
}

func TestObjectInfo(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{}, nil)

	resp, err := http.Get(srv.URL + "/object_info")
	require.NoError(t, err)
	defer resp.Body.Close()

	var registry genmedia.Registry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registry))

	def, ok := registry.Lookup(genmedia.ImagenNodeID)
	require.True(t, ok)
	assert.Equal(t, genmedia.ImagenNodeDisplayName, def.DisplayName)
	assert.Equal(t, genmedia.ImagenNodeCategory, def.Category)
}

func TestInvoke_Success(t *testing.T) {
	batch := gradientBatch()
	gen := &fakeGenerator{result: genmedia.GenerationResult{Batch: batch, Status: "1 image(s) generated successfully with imagegeneration@006."}}
	srv := newTestServer(t, gen, nil)

	resp := invoke(t, srv, genmedia.ImagenNodeID, `{"prompt":"a lighthouse","number_of_images":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Output
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, gen.result.Status, out.Status)
	require.NotNil(t, out.Shape)
	assert.Equal(t, [4]int{1, 2, 2, 3}, *out.Shape)

	raw, err := base64.StdEncoding.DecodeString(out.Tensor)
	require.NoError(t, err)
	samples, err := DecodeTensor(raw)
	require.NoError(t, err)
	assert.Equal(t, batch.Data, samples)

	require.Len(t, out.Images, 1)
	pngBytes, err := base64.StdEncoding.DecodeString(out.Images[0])
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
}

func TestInvoke_AppliesDefaults(t *testing.T) {
	gen := &fakeGenerator{result: genmedia.GenerationResult{Status: "Error: x"}}
	srv := newTestServer(t, gen, nil)

	resp := invoke(t, srv, genmedia.ImagenNodeID, `{"prompt":"a lighthouse"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "env-project", gen.last.Project)
	assert.Equal(t, "europe-west4", gen.last.Location)
	assert.Equal(t, genmedia.ModelDefault, gen.last.Model)
	assert.Equal(t, "a lighthouse", gen.last.Prompt)
	assert.Equal(t, 1, gen.last.NumberOfImages)
	assert.Equal(t, genmedia.AspectRatio1x1, gen.last.AspectRatio)
	assert.Equal(t, genmedia.SafetyBlockMediumAndAbove, gen.last.SafetyFilterLevel)
	assert.Equal(t, genmedia.PersonAllowAdult, gen.last.PersonGeneration)
	assert.Equal(t, genmedia.SeedUnset, gen.last.Seed)
}

func TestInvoke_EmptyBodyUsesDefaults(t *testing.T) {
	gen := &fakeGenerator{result: genmedia.GenerationResult{Status: "Error: x"}}
	srv := newTestServer(t, gen, nil)

	resp := invoke(t, srv, genmedia.ImagenNodeID, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, genmedia.DefaultPrompt, gen.last.Prompt)
}

func TestInvoke_FailureReportsStatus(t *testing.T) {
	status := "Error: Google Cloud Project ID and Location are required."
	gen := &fakeGenerator{result: genmedia.GenerationResult{Status: status}}
	srv := newTestServer(t, gen, nil)

	resp := invoke(t, srv, genmedia.ImagenNodeID, `{"project_id":""}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Output
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, status, out.Status)
	assert.Nil(t, out.Shape)
	assert.Empty(t, out.Tensor)
	assert.Empty(t, out.Images)
}

func TestInvoke_UnknownNode(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen, nil)

	resp := invoke(t, srv, "NoSuchNode", `{}`)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, gen.calls)
}

func TestInvoke_MalformedJSON(t *testing.T) {
	gen := &fakeGenerator{}
	srv := newTestServer(t, gen, nil)

	resp := invoke(t, srv, genmedia.ImagenNodeID, `{"prompt":`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, gen.calls)
}

func TestInvoke_RateLimited(t *testing.T) {
	gen := &fakeGenerator{result: genmedia.GenerationResult{Status: "Error: x"}}
	srv := newTestServer(t, gen, ratelimiter.NewRequestRegistry(1))

	first := invoke(t, srv, genmedia.ImagenNodeID, `{}`)
	second := invoke(t, srv, genmedia.ImagenNodeID, `{}`)

	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, 1, gen.calls)
}

func TestInvoke_RateLimitIgnoresForwardedFor(t *testing.T) {
	gen := &fakeGenerator{result: genmedia.GenerationResult{Status: "Error: x"}}
	limits := ratelimiter.NewRequestRegistry(1)
	srv := newTestServer(t, gen, limits)

	admitted := 0
	for i := 0; i < 10; i++ {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/nodes/"+genmedia.ImagenNodeID+"/invoke", strings.NewReader(`{}`))
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			admitted++
		}
	}

	assert.Equal(t, 1, admitted)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, limits.Len())
}

func TestTensorRoundTrip(t *testing.T) {
	data := []float32{0, 0.25, 1, 0.5}
	raw := EncodeTensor(data)

	assert.Len(t, raw, 16)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3e}, raw[4:8])

	decoded, err := DecodeTensor(raw)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)

	_, err = DecodeTensor(raw[:3])
	assert.Error(t, err)
}
