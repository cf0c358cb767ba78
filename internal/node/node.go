// Package node exposes the node registry over HTTP so a node-graph host can
// discover and invoke nodes running in this process.
package node

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mhpenta/genmedia"
	"github.com/mhpenta/genmedia/internal/lib/httpx"
	"github.com/mhpenta/genmedia/internal/lib/sl"
	"github.com/mhpenta/genmedia/ratelimiter"
)

const maxBodyBytes = 1 << 20

// Generator runs one generation request. *genmedia.Adapter satisfies it.
type Generator interface {
	Generate(ctx context.Context, req genmedia.GenerationRequest) genmedia.GenerationResult
}

// Inputs is the JSON body of an invoke call. Absent fields keep the node defaults.
type Inputs struct {
	ProjectID         string `json:"project_id"`
	Location          string `json:"location"`
	ModelID           string `json:"model_id"`
	Prompt            string `json:"prompt"`
	NumberOfImages    int    `json:"number_of_images"`
	AspectRatio       string `json:"aspect_ratio"`
	SafetyFilterLevel string `json:"safety_filter_level"`
	PersonGeneration  string `json:"person_generation"`
	Seed              int64  `json:"seed"`
}

// Request converts the inputs to a generation request.
func (in Inputs) Request() genmedia.GenerationRequest {
	return genmedia.GenerationRequest{
		Project:           in.ProjectID,
		Location:          in.Location,
		Model:             genmedia.Model(in.ModelID),
		Prompt:            in.Prompt,
		NumberOfImages:    in.NumberOfImages,
		AspectRatio:       genmedia.AspectRatio(in.AspectRatio),
		SafetyFilterLevel: genmedia.SafetyFilterLevel(in.SafetyFilterLevel),
		PersonGeneration:  genmedia.PersonGeneration(in.PersonGeneration),
		Seed:              in.Seed,
	}
}

// Output is the JSON response of an invoke call. Shape and Tensor are only
// set on success; Tensor holds the batch as little-endian float32 samples.
type Output struct {
	Status string   `json:"status"`
	Shape  *[4]int  `json:"shape,omitempty"`
	Tensor string   `json:"tensor,omitempty"`
	Images []string `json:"images,omitempty"`
}

type Handler struct {
	registry  genmedia.Registry
	generator Generator
	limits    ratelimiter.Registry
	log       *slog.Logger
}

func NewHandler(registry genmedia.Registry, generator Generator, limits ratelimiter.Registry, log *slog.Logger) *Handler {
	return &Handler{
		registry:  registry,
		generator: generator,
		limits:    limits,
		log:       log.With(sl.Module("node")),
	}
}

// Routes mounts the bridge endpoints on a new router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/object_info", h.ObjectInfo)
	r.Group(func(r chi.Router) {
		if h.limits != nil {
			r.Use(ratelimiter.Middleware(h.limits, ratelimiter.ClientIP))
		}
		r.Post("/nodes/{id}/invoke", h.Invoke)
	})
	return r
}

func (h *Handler) ObjectInfo(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, h.registry)
}

// Invoke runs a node. Generation failures are reported in the status field
// with HTTP 200; the node contract never raises.
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, ok := h.registry.Lookup(id)
	if !ok {
		httpx.Error(w, http.StatusNotFound, "unknown node: "+id)
		return
	}

	in := DefaultInputs(def)
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		httpx.Error(w, http.StatusBadRequest, "malformed inputs: "+err.Error())
		return
	}

	log := h.log.With(slog.String("node", id), slog.String("model", in.ModelID))
	result := h.generator.Generate(r.Context(), in.Request())
	if !result.OK() {
		log.Warn("node invocation failed", slog.String("status", result.Status))
		httpx.JSON(w, http.StatusOK, Output{Status: result.Status})
		return
	}

	out, err := encodeOutput(result)
	if err != nil {
		log.Error("encoding node output", sl.Err(err))
		httpx.JSON(w, http.StatusOK, Output{Status: "Error encoding generated images: " + err.Error()})
		return
	}
	log.Info("node invoked", slog.Int("images", result.Batch.N))
	httpx.JSON(w, http.StatusOK, out)
}

// DefaultInputs returns the node's declared default input values.
func DefaultInputs(def genmedia.NodeDefinition) Inputs {
	in := Inputs{
		NumberOfImages: genmedia.MinImages,
		Seed:           genmedia.SeedUnset,
	}
	specs := append(append([]genmedia.InputSpec{}, def.Input.Required...), def.Input.Optional...)
	for _, spec := range specs {
		switch v := spec.Default.(type) {
		case string:
			setString(&in, spec.Name, v)
		case int:
			setInt(&in, spec.Name, int64(v))
		case int64:
			setInt(&in, spec.Name, v)
		}
	}
	return in
}

func setString(in *Inputs, name, v string) {
	switch name {
	case "project_id":
		in.ProjectID = v
	case "location":
		in.Location = v
	case "model_id":
		in.ModelID = v
	case "prompt":
		in.Prompt = v
	case "aspect_ratio":
		in.AspectRatio = v
	case "safety_filter_level":
		in.SafetyFilterLevel = v
	case "person_generation":
		in.PersonGeneration = v
	}
}

func setInt(in *Inputs, name string, v int64) {
	switch name {
	case "number_of_images":
		in.NumberOfImages = int(v)
	case "seed":
		in.Seed = v
	}
}

func encodeOutput(result genmedia.GenerationResult) (Output, error) {
	pngs, err := genmedia.EncodePNGs(result.Batch)
	if err != nil {
		return Output{}, err
	}

	images := make([]string, len(pngs))
	for i, p := range pngs {
		images[i] = base64.StdEncoding.EncodeToString(p)
	}

	shape := result.Batch.Shape()
	return Output{
		Status: result.Status,
		Shape:  &shape,
		Tensor: base64.StdEncoding.EncodeToString(EncodeTensor(result.Batch.Data)),
		Images: images,
	}, nil
}

// EncodeTensor serializes samples as little-endian float32.
func EncodeTensor(data []float32) []byte {
	buf := make([]byte, 0, len(data)*4)
	for _, v := range data {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// DecodeTensor is the inverse of EncodeTensor.
func DecodeTensor(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, errors.New("tensor length is not a multiple of 4")
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}
