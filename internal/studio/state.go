package studio

import (
	"errors"
	"regexp"
	"sync"
	"time"
)

const (
	DefaultPenColor = "#ff0000"
	DefaultPenWidth = 4

	MaxPenWidth = 64
)

var (
	ErrInvalidPenColor = errors.New("pen color must be a #rrggbb hex value")
	ErrInvalidPenWidth = errors.New("pen width out of range")

	penColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// AppState is the per-session state shared by every page.
type AppState struct {
	UserEmail   string    `json:"user_email"`
	SessionID   string    `json:"session_id"`
	CurrentPage string    `json:"current_page,omitempty"`
	LastSeen    time.Time `json:"last_seen"`
}

// DoodleState is the doodle pad's page state.
type DoodleState struct {
	SelectedGCSURI string `json:"selected_gcs_uri"`
	PenColor       string `json:"pen_color"`
	PenWidth       int    `json:"pen_width"`
	LastSavedURI   string `json:"last_saved_uri,omitempty"`
}

// SetPen validates and applies pen settings. Zero values leave a setting unchanged.
func (d *DoodleState) SetPen(color string, width int) error {
	if color != "" && !penColorPattern.MatchString(color) {
		return ErrInvalidPenColor
	}
	if width < 0 || width > MaxPenWidth {
		return ErrInvalidPenWidth
	}
	if color != "" {
		d.PenColor = color
	}
	if width != 0 {
		d.PenWidth = width
	}
	return nil
}

type Session struct {
	App    AppState
	Doodle DoodleState
}

func newSession(id string) *Session {
	return &Session{
		App: AppState{SessionID: id},
		Doodle: DoodleState{
			PenColor: DefaultPenColor,
			PenWidth: DefaultPenWidth,
		},
	}
}

// Sessions keeps session state in memory, keyed by session id.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*Session
	now   func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		items: make(map[string]*Session),
		now:   time.Now,
	}
}

// Get returns a copy of the session, creating it if needed.
func (s *Sessions) Get(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getLocked(id)
}

// Update applies fn to the session under lock and returns the updated copy.
func (s *Sessions) Update(id string, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(id)
	fn(sess)
	return *sess
}

// UpdateErr is Update for mutations that can fail. On error the session is left untouched.
func (s *Sessions) UpdateErr(id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(id)
	draft := *sess
	if err := fn(&draft); err != nil {
		return *sess, err
	}
	*sess = draft
	return draft, nil
}

// Touch records that the session was seen by email just now.
func (s *Sessions) Touch(id, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(id)
	sess.App.UserEmail = email
	sess.App.LastSeen = s.now()
}

// Sweep drops sessions not seen for maxIdle and returns how many were removed.
func (s *Sessions) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, sess := range s.items {
		if sess.App.LastSeen.Before(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Sessions) getLocked(id string) *Session {
	sess, ok := s.items[id]
	if !ok {
		sess = newSession(id)
		sess.App.LastSeen = s.now()
		s.items[id] = sess
	}
	return sess
}
