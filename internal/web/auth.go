package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/desertthunder/podshelf/internal/models"
	"github.com/desertthunder/podshelf/internal/services"
)

type credentialsContent struct {
	Action   string
	Submit   string
	Username string
	Error    string
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "credentials.html", "Register", credentialsContent{
		Action: "/authentication/register",
		Submit: "Register",
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	content := credentialsContent{
		Action:   "/authentication/register",
		Submit:   "Register",
		Username: strings.TrimSpace(r.FormValue("user_name")),
	}
	password := r.FormValue("password")

	switch {
	case content.Username == "":
		content.Error = "Your user name is required"
	case password == "":
		content.Error = "Your password is required"
	}
	if content.Error == "" {
		_, err := services.RegisterUser(r.Context(), s.repo, content.Username, password)
		switch {
		case err == nil:
			s.flash(w, r, "Registration successful, please login.")
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		case errors.Is(err, services.ErrNameNotUnique):
			content.Error = "Your username is already taken"
		case errors.Is(err, models.ErrInvalid):
			content.Error = formMessage(err)
		default:
			s.fail(w, r, err)
			return
		}
	}

	s.render(w, r, http.StatusOK, "credentials.html", "Register", content)
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "credentials.html", "Login", credentialsContent{
		Action: LoginPath,
		Submit: "Login",
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	content := credentialsContent{
		Action:   LoginPath,
		Submit:   "Login",
		Username: strings.TrimSpace(r.FormValue("user_name")),
	}

	user, err := services.AuthenticateUser(r.Context(), s.repo, content.Username, r.FormValue("password"))
	switch {
	case err == nil:
		s.startSession(w, r, user)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	case errors.Is(err, services.ErrAuthentication):
		content.Error = formMessage(err)
	default:
		s.fail(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "credentials.html", "Login", content)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w, r, "Logout successful.")
	http.Redirect(w, r, "/", http.StatusFound)
}
