// Package studio serves the GenMedia Creative Studio web application: the page
// table, per-session state, and the JSON endpoints the pages call.
package studio

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mhpenta/genmedia"
	"github.com/mhpenta/genmedia/internal/lib/httpx"
	"github.com/mhpenta/genmedia/internal/lib/sl"
	"github.com/mhpenta/genmedia/ratelimiter"
)

// Generator runs one generation request. *genmedia.Adapter satisfies it.
type Generator interface {
	Generate(ctx context.Context, req genmedia.GenerationRequest) genmedia.GenerationResult
}

// Signer returns a time-limited read URL for a gs:// object.
type Signer interface {
	SignedURL(ctx context.Context, gcsURI string) (string, error)
}

type Options struct {
	// Project and Location are used for every generation request.
	Project  string
	Location string

	Debug               bool
	GenerationAvailable bool
	ConfigView          ConfigView

	// TrustProxyHeaders is set when the studio runs behind a proxy that
	// overwrites forwarding and identity headers (IAP, a load balancer).
	// Only then are client addresses taken from X-Forwarded-For and
	// generation limited per signed-in user.
	TrustProxyHeaders bool
}

// Deps are the collaborators of a Server. Signer and Storage may be nil;
// the endpoints that need them answer 503.
type Deps struct {
	Generator Generator
	Signer    Signer
	Storage   genmedia.Storage
	Sessions  *Sessions
	Limits    ratelimiter.Registry
	Logger    *slog.Logger
}

type Server struct {
	generator Generator
	signer    Signer
	storage   genmedia.Storage
	sessions  *Sessions
	limits    ratelimiter.Registry
	log       *slog.Logger
	tmpl      *template.Template
	opts      Options
}

func New(deps Deps, opts Options) *Server {
	if deps.Sessions == nil {
		deps.Sessions = NewSessions()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Server{
		generator: deps.Generator,
		signer:    deps.Signer,
		storage:   deps.Storage,
		sessions:  deps.Sessions,
		limits:    deps.Limits,
		log:       deps.Logger.With(sl.Module("studio")),
		tmpl:      parseTemplates(),
		opts:      opts,
	}
}

// Sessions returns the session store backing this server.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// rateLimitKey keys generation limits by the proxy-asserted user when the
// proxy is trusted, and by connection address otherwise. Session ids are not
// used since a client can drop its cookie.
func (s *Server) rateLimitKey(r *http.Request) string {
	if s.opts.TrustProxyHeaders {
		if email := UserEmail(r.Context()); email != AnonymousEmail {
			return "user:" + email
		}
	}
	return "ip:" + ratelimiter.ClientIP(r)
}

// Routes builds the studio router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer, httpx.Logger(s.log))

	r.Get("/healthz", httpx.Health)

	r.Group(func(r chi.Router) {
		r.Use(RequestContext(s.sessions))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/home", http.StatusTemporaryRedirect)
		})
		for _, page := range Pages {
			r.Get(page.Path, s.pageHandler(page))
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/get_signed_url", s.handleSignedURL)

			r.Group(func(r chi.Router) {
				if s.limits != nil {
					r.Use(ratelimiter.Middleware(s.limits, s.rateLimitKey))
				}
				r.Post("/imagen/generate", s.handleGenerate)
			})

			r.Route("/doodle", func(r chi.Router) {
				r.Get("/state", s.handleDoodleState)
				r.Post("/select", s.handleDoodleSelect)
				r.Patch("/pen", s.handleDoodlePen)
				r.Post("/save", s.handleDoodleSave)
			})
		})
	})

	return r
}
