package studio

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/mhpenta/genmedia"
	"github.com/mhpenta/genmedia/internal/lib/sl"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is one entry of the studio's page table.
type Page struct {
	Path   string
	Title  string
	Label  string
	Blurb  string
	Policy *SecurityPolicy
}

// Pages lists every studio page in navigation order.
var Pages = []Page{
	{Path: "/home", Title: "GenMedia Creative Studio - v.next", Label: "Home",
		Blurb: "Generate images, video, and music with Google's generative media models."},
	{Path: "/imagen", Title: "GenMedia Creative Studio - Imagen", Label: "Imagen",
		Blurb: "Create images from a text prompt.",
		Policy: &SecurityPolicy{
			AllowedScriptSrcs:   []string{"https://cdn.jsdelivr.net"},
			DisableTrustedTypes: true,
		}},
	{Path: "/veo", Title: "Veo - GenMedia Creative Studio", Label: "Veo",
		Blurb: "Create short videos from text or an image."},
	{Path: "/motion_portraits", Title: "Motion Portraits - GenMedia Creative Studio", Label: "Motion Portraits",
		Blurb: "Animate a portrait into a short clip."},
	{Path: "/lyria", Title: "Lyria - GenMedia Creative Studio", Label: "Lyria",
		Blurb: "Compose music from a text description."},
	{Path: "/library", Title: "GenMedia Creative Studio - Library", Label: "Library",
		Blurb: "Browse media generated in this studio."},
	{Path: "/edit_images", Title: "GenMedia Creative Studio - Edit Images", Label: "Edit Images",
		Blurb: "Edit an image with a mask and a prompt."},
	{Path: "/vto", Title: "GenMedia Creative Studio - Virtual Try-On", Label: "Virtual Try-On",
		Blurb: "Dress a model image in a product image."},
	{Path: "/recontextualize", Title: "GenMedia Creative Studio - Product in Scene", Label: "Product in Scene",
		Blurb: "Place a product into a new scene."},
	{Path: "/character_consistency", Title: "GenMedia Creative Studio - Character Consistency", Label: "Character Consistency",
		Blurb: "Keep a character consistent across generated scenes."},
	{Path: "/doodle", Title: "Doodle Pad - GenMedia Creative Studio", Label: "Doodle Pad",
		Blurb: "Select an image to start doodling"},
	{Path: "/config", Title: "GenMedia Creative Studio - Config", Label: "Config",
		Blurb: "Runtime configuration of this studio."},
	{Path: "/about", Title: "About - GenMedia Creative Studio", Label: "About",
		Blurb: "About GenMedia Creative Studio."},
}

// FindPage returns the page registered at path.
func FindPage(path string) (Page, bool) {
	for _, p := range Pages {
		if p.Path == path {
			return p, true
		}
	}
	return Page{}, false
}

type pageData struct {
	Page      Page
	Pages     []Page
	UserEmail string
	SessionID string
	Debug     bool
	Config    ConfigView
	Doodle    DoodleState

	Models             []genmedia.Model
	AspectRatios       []genmedia.AspectRatio
	SafetyFilterLevels []genmedia.SafetyFilterLevel
	PersonGenerations  []genmedia.PersonGeneration
	Available          bool
}

// ConfigView is what the config page shows.
type ConfigView struct {
	Project        string
	Location       string
	Bucket         string
	ServiceAccount string
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

func (s *Server) pageHandler(page Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := SessionID(r.Context())
		sess := s.sessions.Update(sessionID, func(sess *Session) {
			sess.App.CurrentPage = page.Path
		})

		data := pageData{
			Page:               page,
			Pages:              Pages,
			UserEmail:          UserEmail(r.Context()),
			SessionID:          sessionID,
			Debug:              s.opts.Debug,
			Config:             s.opts.ConfigView,
			Doodle:             sess.Doodle,
			Models:             genmedia.Models,
			AspectRatios:       genmedia.AspectRatios,
			SafetyFilterLevels: genmedia.SafetyFilterLevels,
			PersonGenerations:  genmedia.PersonGenerations,
			Available:          s.opts.GenerationAvailable,
		}

		var buf bytes.Buffer
		if err := s.tmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
			s.log.Error("rendering page", slog.String("page", page.Path), sl.Err(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if page.Policy != nil {
			w.Header().Set("Content-Security-Policy", page.Policy.Header())
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}
