package session

import (
	"crypto/sha256"
	"encoding/gob"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	cookieName = "session"

	keyLoggedIn = "logged_in"
	keyUsername = "username"

	DefaultMaxAge = 7 * 24 * 60 * 60 // 7 days
)

// Flash categories understood by templates
const (
	CategorySuccess = "success"
	CategoryDanger  = "danger"
)

// One-shot message shown on the next rendered page
type Flash struct {
	Category string
	Message  string
}

func init() {
	// Flashes are stored in cookie and encoded with gob
	gob.Register(Flash{})
}

type Options struct {
	MaxAge int  // seconds, DefaultMaxAge if zero
	Secure bool // send cookie over https only
}

// Cookie backed session store
// Cookie is signed and encrypted, nothing is kept on server
type Store struct {
	store *sessions.CookieStore
}

func NewStore(secret string, opts Options) (*Store, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = DefaultMaxAge
	}

	// Two keys derived from one secret: signing and encryption
	h := sha256.Sum256([]byte("auth:" + secret))
	e := sha256.Sum256([]byte("enc:" + secret))

	store := sessions.NewCookieStore(h[:], e[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   opts.Secure,
	}
	store.MaxAge(opts.MaxAge)

	return &Store{store: store}, nil
}

// Cookie that can't be decoded (e.g. secret changed) is treated as empty session
func (s *Store) get(r *http.Request) *sessions.Session {
	sess, _ := s.store.Get(r, cookieName)
	return sess
}

func (s *Store) IsLoggedIn(r *http.Request) bool {
	loggedIn, _ := s.get(r).Values[keyLoggedIn].(bool)
	return loggedIn
}

// Username of logged in user, empty if there is none
func (s *Store) Username(r *http.Request) string {
	username, _ := s.get(r).Values[keyUsername].(string)
	return username
}

// Mark session as logged in
func (s *Store) Login(w http.ResponseWriter, r *http.Request, username string, flash Flash) error {
	sess := s.get(r)
	sess.Values[keyLoggedIn] = true
	sess.Values[keyUsername] = username
	sess.AddFlash(flash)
	return sess.Save(r, w)
}

// Clear everything stored in session, then keep the flash only
func (s *Store) Logout(w http.ResponseWriter, r *http.Request, flash Flash) error {
	sess := s.get(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.AddFlash(flash)
	return sess.Save(r, w)
}

func (s *Store) AddFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	sess := s.get(r)
	sess.AddFlash(flash)
	return sess.Save(r, w)
}

// Pop pending flashes
// Must be called before response body is written, it updates the cookie
func (s *Store) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	sess := s.get(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}

	return flashes, sess.Save(r, w)
}
