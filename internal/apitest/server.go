// Package apitest runs an in-memory stand-in for the coaching platform
// backend so client packages can be tested over real HTTP.
package apitest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"coachline/internal/domain"
)

const SessionCookie = "id"

// Request is one call the server received.
type Request struct {
	Method  string
	Path    string
	Query   string
	Body    string
	Version string
}

type account struct {
	password string
	user     domain.UserSession
}

// Server is the fake backend.
type Server struct {
	*httptest.Server

	Now func() time.Time

	mu            sync.Mutex
	secret        []byte
	accounts      map[string]account
	organizations []domain.Organization
	relationships map[string][]domain.CoachingRelationshipWithUserNames
	sessions      []domain.CoachingSession
	notes         []domain.Note
	agreements    []domain.Agreement
	actions       []domain.Action
	goals         []domain.OverarchingGoal
	requests      []Request
	failures      map[string]int
}

// New starts the fake backend; it is closed when the test ends.
func New(t interface {
	Helper()
	Cleanup(func())
}) *Server {
	t.Helper()
	s := &Server{
		Now:           func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
		secret:        []byte(uuid.NewString()),
		accounts:      map[string]account{},
		relationships: map[string][]domain.CoachingRelationshipWithUserNames{},
		failures:      map[string]int{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.injectFailures)
	r.Post("/login", s.login)
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/logout", s.logout)

		r.Get("/organizations", s.listOrganizations)
		r.Post("/organizations", s.createOrganization)
		r.Get("/organizations/{id}", s.getOrganization)
		r.Put("/organizations/{id}", s.updateOrganization)
		r.Delete("/organizations/{id}", s.deleteOrganization)
		r.Get("/organizations/{orgID}/coaching_relationships", s.listRelationships)
		r.Get("/organizations/{orgID}/coaching_relationships/{id}", s.getRelationship)

		r.Get("/coaching_sessions", s.listSessions)

		r.Get("/notes", s.listNotes)
		r.Post("/notes", s.createNote)
		r.Put("/notes/{id}", s.updateNote)

		r.Get("/agreements", s.listAgreements)
		r.Post("/agreements", s.createAgreement)
		r.Put("/agreements/{id}", s.updateAgreement)
		r.Delete("/agreements/{id}", s.deleteAgreement)

		r.Get("/actions", s.listActions)
		r.Post("/actions", s.createAction)
		r.Put("/actions/{id}", s.updateAction)
		r.Delete("/actions/{id}", s.deleteAction)

		r.Get("/overarching_goals", s.listGoals)
		r.Post("/overarching_goals", s.createGoal)
		r.Put("/overarching_goals/{id}", s.updateGoal)
		r.Delete("/overarching_goals/{id}", s.deleteGoal)
	})
	return r
}

// Fail makes the next request matching method and path answer with status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Requests returns a copy of the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests counts calls with the given method and path.
func (s *Server) CountRequests(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		body := string(bodyBytes)
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Body:    body,
			Version: r.Header.Get("X-Version"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		status, ok := s.failures[key]
		if ok {
			delete(s.failures, key)
		}
		s.mu.Unlock()
		if ok {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if _, err := s.verify(c.Value); err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sign(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) verify(token string) (string, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

func writeData(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) newID() string { return uuid.NewString() }
