package studio

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/mhpenta/genmedia"
	"github.com/mhpenta/genmedia/internal/gcs"
	"github.com/mhpenta/genmedia/internal/lib/httpx"
	"github.com/mhpenta/genmedia/internal/lib/sl"
)

const (
	maxJSONBytes   = 1 << 20
	maxDoodleBytes = 20 << 20
)

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxJSONBytes)).Decode(v)
}

func (s *Server) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("gcs_uri")
	if _, _, err := gcs.ParseURI(uri); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.signer == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "url signing is not configured")
		return
	}

	url, err := s.signer.SignedURL(r.Context(), uri)
	if err != nil {
		s.log.Error("signing url", slog.String("gcs_uri", uri), sl.Err(err))
		httpx.Error(w, http.StatusInternalServerError, "failed to sign url")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"signed_url": url})
}

// GenerateRequest is the body of POST /api/imagen/generate. Empty fields use
// the node defaults; a nil Seed means random.
type GenerateRequest struct {
	Prompt            string `json:"prompt"`
	Model             string `json:"model"`
	NumberOfImages    int    `json:"number_of_images"`
	AspectRatio       string `json:"aspect_ratio"`
	SafetyFilterLevel string `json:"safety_filter_level"`
	PersonGeneration  string `json:"person_generation"`
	Seed              *int64 `json:"seed"`
	Save              bool   `json:"save"`
}

func (g GenerateRequest) toRequest(project, location string) genmedia.GenerationRequest {
	req := genmedia.DefaultRequest(project, location, g.Prompt)
	if g.Model != "" {
		req.Model = genmedia.Model(g.Model)
	}
	if g.NumberOfImages != 0 {
		req.NumberOfImages = g.NumberOfImages
	}
	if g.AspectRatio != "" {
		req.AspectRatio = genmedia.AspectRatio(g.AspectRatio)
	}
	if g.SafetyFilterLevel != "" {
		req.SafetyFilterLevel = genmedia.SafetyFilterLevel(g.SafetyFilterLevel)
	}
	if g.PersonGeneration != "" {
		req.PersonGeneration = genmedia.PersonGeneration(g.PersonGeneration)
	}
	if g.Seed != nil {
		req.Seed = *g.Seed
	}
	return req
}

type GenerateResponse struct {
	Status  string   `json:"status"`
	Images  []string `json:"images,omitempty"`
	GCSURIs []string `json:"gcs_uris,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := decodeJSON(r, &body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}
	if s.generator == nil {
		httpx.JSON(w, http.StatusServiceUnavailable, GenerateResponse{Status: genmedia.MsgCapabilityUnavailable})
		return
	}

	req := body.toRequest(s.opts.Project, s.opts.Location)
	result := s.generator.Generate(r.Context(), req)
	if !result.OK() {
		code := http.StatusBadGateway
		if result.Err != nil && (result.Err.Kind == genmedia.KindConfiguration || result.Err.Kind == genmedia.KindCapabilityUnavailable) {
			code = http.StatusBadRequest
		}
		httpx.JSON(w, code, GenerateResponse{Status: result.Status})
		return
	}

	pngs, err := genmedia.EncodePNGs(result.Batch)
	if err != nil {
		s.log.Error("encoding generated images", sl.Err(err))
		httpx.Error(w, http.StatusInternalServerError, "failed to encode images")
		return
	}
	resp := GenerateResponse{Status: result.Status, Images: make([]string, len(pngs))}
	for i, p := range pngs {
		resp.Images[i] = base64.StdEncoding.EncodeToString(p)
	}

	if body.Save {
		if s.storage == nil {
			httpx.Error(w, http.StatusServiceUnavailable, genmedia.ErrStorageNotConfigured.Error())
			return
		}
		saved, err := genmedia.SaveBatch(r.Context(), s.storage, result.Batch, "imagen/"+uuid.NewString())
		if err != nil {
			s.log.Error("saving generated images", sl.Err(err))
			httpx.Error(w, http.StatusInternalServerError, "failed to save images")
			return
		}
		for _, res := range saved {
			resp.GCSURIs = append(resp.GCSURIs, res.URI)
		}
	}

	s.log.Info("images generated",
		slog.String("model", string(req.Model)),
		slog.Int("count", result.Batch.N),
		slog.String("user", UserEmail(r.Context())),
	)
	httpx.JSON(w, http.StatusOK, resp)
}

func (s *Server) handleDoodleState(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(SessionID(r.Context()))
	httpx.JSON(w, http.StatusOK, sess.Doodle)
}

func (s *Server) handleDoodleSelect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GCSURI string `json:"gcs_uri"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}
	if _, _, err := gcs.ParseURI(body.GCSURI); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := s.sessions.Update(SessionID(r.Context()), func(sess *Session) {
		sess.Doodle.SelectedGCSURI = body.GCSURI
	})
	httpx.JSON(w, http.StatusOK, sess.Doodle)
}

func (s *Server) handleDoodlePen(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PenColor string `json:"pen_color"`
		PenWidth int    `json:"pen_width"`
	}
	if err := decodeJSON(r, &body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}

	sess, err := s.sessions.UpdateErr(SessionID(r.Context()), func(sess *Session) error {
		return sess.Doodle.SetPen(body.PenColor, body.PenWidth)
	})
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, sess.Doodle)
}

func (s *Server) handleDoodleSave(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		httpx.Error(w, http.StatusServiceUnavailable, genmedia.ErrStorageNotConfigured.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxDoodleBytes+1))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}
	if len(data) > maxDoodleBytes {
		httpx.Error(w, http.StatusRequestEntityTooLarge, "doodle too large")
		return
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		httpx.Error(w, http.StatusBadRequest, "body is not a png image")
		return
	}

	sessionID := SessionID(r.Context())
	uri, err := s.storage.SaveFile(r.Context(), data, "doodles/"+sessionID+"/"+uuid.NewString()+".png", "image/png")
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gcs.ErrNoBucket) {
			status = http.StatusServiceUnavailable
		}
		s.log.Error("saving doodle", sl.Err(err))
		httpx.Error(w, status, "failed to save doodle")
		return
	}

	s.sessions.Update(sessionID, func(sess *Session) {
		sess.Doodle.LastSavedURI = uri
	})
	httpx.JSON(w, http.StatusOK, map[string]string{"gcs_uri": uri})
}
