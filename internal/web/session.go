package web

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/desertthunder/podshelf/internal/models"
)

const (
	sessionName = "podshelf"
	keyUsername = "user_name"
	keyUserID   = "user_id"
)

// session returns the request's session. A cookie that fails to decode yields a fresh session.
func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		s.logger.Debug("discarding unreadable session", "error", err)
	}
	return sess
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("failed to save session", "error", err)
	}
}

// currentUser returns the logged-in user name.
func (s *Server) currentUser(r *http.Request) (string, bool) {
	username, ok := s.session(r).Values[keyUsername].(string)
	return username, ok && username != ""
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	sess := s.session(r)
	sess.Values[keyUsername] = user.Username()
	sess.Values[keyUserID] = user.ID()
	sess.AddFlash("Login successful!")
	s.save(w, r, sess)
}

// clearSession forgets the user but keeps the cookie so flashes survive.
func (s *Server) clearSession(w http.ResponseWriter, r *http.Request, flashes ...string) {
	sess := s.session(r)
	delete(sess.Values, keyUsername)
	delete(sess.Values, keyUserID)
	for _, f := range flashes {
		sess.AddFlash(f)
	}
	s.save(w, r, sess)
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, message string) {
	sess := s.session(r)
	sess.AddFlash(message)
	s.save(w, r, sess)
}

// popFlashes consumes the pending flash messages.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	sess := s.session(r)
	pending := sess.Flashes()
	if len(pending) == 0 {
		return nil
	}
	s.save(w, r, sess)

	messages := make([]string, 0, len(pending))
	for _, f := range pending {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

type userHandlerFunc func(w http.ResponseWriter, r *http.Request, username string)

// requireLogin sends visitors without a session to the login page.
func (s *Server) requireLogin(next userHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := s.currentUser(r)
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next(w, r, username)
	})
}
