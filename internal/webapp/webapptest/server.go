// Package webapptest runs an in-process stand-in for the scenario web
// application: CSRF-protected form login, session cookie and the outputs
// report endpoint.
package webapptest

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// Cookie and token values handed out by the server.
const (
	CSRFToken = "csrf-test-token"
	SessionID = "session-test-id"
)

// LoginAttempt records one POST to the login endpoint.
type LoginAttempt struct {
	Username   string
	Password   string
	CSRFForm   string
	CSRFCookie string
	Referer    string
}

// Server is a fake application. Outputs is served verbatim to authenticated
// sessions; anonymous requests are redirected to the login page.
type Server struct {
	*httptest.Server

	Username string
	Password string
	Outputs  []byte

	mu       sync.Mutex
	attempts []LoginAttempt
}

// NewServer starts a server accepting username/password and serving outputs.
// The caller must Close it.
func NewServer(username, password string, outputs []byte) *Server {
	s := &Server{Username: username, Password: password, Outputs: outputs}
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", s.handleLogin)
	mux.HandleFunc("/outputs/", s.handleOutputs)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>home</html>"))
	})
	s.Server = httptest.NewServer(mux)
	return s
}

// Attempts returns the login POSTs received so far.
func (s *Server) Attempts() []LoginAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LoginAttempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: CSRFToken, Path: "/"})
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><form method="post"></form></html>`))
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		attempt := LoginAttempt{
			Username: r.PostForm.Get("username"),
			Password: r.PostForm.Get("password"),
			CSRFForm: r.PostForm.Get("csrfmiddlewaretoken"),
			Referer:  r.Header.Get("Referer"),
		}
		if c, err := r.Cookie("csrftoken"); err == nil {
			attempt.CSRFCookie = c.Value
		}
		s.mu.Lock()
		s.attempts = append(s.attempts, attempt)
		s.mu.Unlock()

		if attempt.CSRFCookie == "" || attempt.CSRFForm != attempt.CSRFCookie {
			http.Error(w, "CSRF verification failed", http.StatusForbidden)
			return
		}
		if attempt.Username != s.Username || attempt.Password != s.Password {
			// Wrong credentials re-render the form with 200, like Django.
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html>Please enter a correct username and password.</html>`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: SessionID, Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleOutputs(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie("sessionid"); err != nil || c.Value != SessionID {
		http.Redirect(w, r, "/login/?next=/outputs/", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.Outputs)
}
