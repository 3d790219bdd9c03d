package apitest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coachline/internal/domain"
)

func (s *Server) AddUser(email, password string, user domain.UserSession) domain.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = s.newID()
	}
	user.Email = email
	s.accounts[email] = account{password: password, user: user}
	return user
}

func (s *Server) AddOrganization(o domain.Organization) domain.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.idOr(o.ID)
	o.CreatedAt, o.UpdatedAt = s.stamp(o.CreatedAt)
	s.organizations = append(s.organizations, o)
	return o
}

func (s *Server) AddRelationship(organizationID string, r domain.CoachingRelationshipWithUserNames) domain.CoachingRelationshipWithUserNames {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.idOr(r.ID)
	r.CreatedAt, r.UpdatedAt = s.stamp(r.CreatedAt)
	s.relationships[organizationID] = append(s.relationships[organizationID], r)
	return r
}

func (s *Server) AddSession(cs domain.CoachingSession) domain.CoachingSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs.ID = s.idOr(cs.ID)
	cs.CreatedAt, cs.UpdatedAt = s.stamp(cs.CreatedAt)
	s.sessions = append(s.sessions, cs)
	return cs
}

func (s *Server) AddNote(n domain.Note) domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.idOr(n.ID)
	n.CreatedAt, n.UpdatedAt = s.stamp(n.CreatedAt)
	s.notes = append(s.notes, n)
	return n
}

func (s *Server) AddAgreement(a domain.Agreement) domain.Agreement {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.idOr(a.ID)
	a.CreatedAt, a.UpdatedAt = s.stamp(a.CreatedAt)
	s.agreements = append(s.agreements, a)
	return a
}

func (s *Server) AddAction(a domain.Action) domain.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.idOr(a.ID)
	a.CreatedAt, a.UpdatedAt = s.stamp(a.CreatedAt)
	if a.Status == "" {
		a.Status = domain.NotStarted
	}
	s.actions = append(s.actions, a)
	return a
}

func (s *Server) AddGoal(g domain.OverarchingGoal) domain.OverarchingGoal {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.idOr(g.ID)
	g.CreatedAt, g.UpdatedAt = s.stamp(g.CreatedAt)
	if g.Status == "" {
		g.Status = domain.NotStarted
	}
	s.goals = append(s.goals, g)
	return g
}

// Notes returns the stored notes.
func (s *Server) Notes() []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Note(nil), s.notes...)
}

// Goals returns the stored overarching goals.
func (s *Server) Goals() []domain.OverarchingGoal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OverarchingGoal(nil), s.goals...)
}

func (s *Server) idOr(id string) string {
	if id == "" {
		return s.newID()
	}
	return id
}

func (s *Server) stamp(created time.Time) (time.Time, time.Time) {
	now := s.Now().UTC()
	if created.IsZero() {
		created = now
	}
	return created, now
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[r.PostForm.Get("email")]
	s.mu.Unlock()
	if !ok || acct.password != r.PostForm.Get("password") {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := s.sign(acct.user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
	writeData(w, acct.user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listOrganizations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, nonNil(s.organizations))
}

func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := domain.FindByID(s.organizations, chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeData(w, o)
}

func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	var o domain.Organization
	if err := decodeBody(r, &o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	o.ID = ""
	writeData(w, s.AddOrganization(o))
}

func (s *Server) updateOrganization(w http.ResponseWriter, r *http.Request) {
	var o domain.Organization
	if err := decodeBody(r, &o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	prev, ok := domain.FindByID(s.organizations, id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	o.ID = id
	o.CreatedAt, o.UpdatedAt = s.stamp(prev.CreatedAt)
	s.organizations, _ = replaceByID(s.organizations, o)
	writeData(w, o)
}

func (s *Server) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.organizations, ok = removeByID(s.organizations, chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listRelationships(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rels, ok := s.relationships[chi.URLParam(r, "orgID")]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeData(w, nonNil(rels))
}

func (s *Server) getRelationship(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rel, ok := domain.FindByID(s.relationships[chi.URLParam(r, "orgID")], chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeData(w, rel)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	relID := q.Get("coaching_relationship_id")
	if relID == "" {
		http.Error(w, "coaching_relationship_id required", http.StatusBadRequest)
		return
	}
	from, errFrom := time.Parse("2006-01-02", q.Get("from_date"))
	to, errTo := time.Parse("2006-01-02", q.Get("to_date"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := filter(s.sessions, func(cs domain.CoachingSession) bool {
		if cs.CoachingRelationshipID != relID {
			return false
		}
		if errFrom == nil && cs.Date.Before(from) {
			return false
		}
		if errTo == nil && !cs.Date.Before(to.AddDate(0, 0, 1)) {
			return false
		}
		return true
	})
	writeData(w, out)
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("coaching_session_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, filter(s.notes, func(n domain.Note) bool { return n.CoachingSessionID == id }))
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var n domain.Note
	if err := decodeBody(r, &n); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n.ID = ""
	writeData(w, s.AddNote(n))
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	var n domain.Note
	if err := decodeBody(r, &n); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	prev, ok := domain.FindByID(s.notes, id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	n.ID = id
	n.CreatedAt, n.UpdatedAt = s.stamp(prev.CreatedAt)
	s.notes, _ = replaceByID(s.notes, n)
	writeData(w, n)
}

func (s *Server) listAgreements(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("coaching_session_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, filter(s.agreements, func(a domain.Agreement) bool { return a.CoachingSessionID == id }))
}

func (s *Server) createAgreement(w http.ResponseWriter, r *http.Request) {
	var a domain.Agreement
	if err := decodeBody(r, &a); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.ID = ""
	writeData(w, s.AddAgreement(a))
}

func (s *Server) updateAgreement(w http.ResponseWriter, r *http.Request) {
	var a domain.Agreement
	if err := decodeBody(r, &a); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	prev, ok := domain.FindByID(s.agreements, id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	a.ID = id
	a.CreatedAt, a.UpdatedAt = s.stamp(prev.CreatedAt)
	s.agreements, _ = replaceByID(s.agreements, a)
	writeData(w, a)
}

func (s *Server) deleteAgreement(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.agreements, ok = removeByID(s.agreements, chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listActions(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("coaching_session_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, filter(s.actions, func(a domain.Action) bool { return a.CoachingSessionID == id }))
}

func (s *Server) createAction(w http.ResponseWriter, r *http.Request) {
	var a domain.Action
	if err := decodeBody(r, &a); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.ID = ""
	a.StatusChangedAt = s.Now().UTC()
	writeData(w, s.AddAction(a))
}

func (s *Server) updateAction(w http.ResponseWriter, r *http.Request) {
	var a domain.Action
	if err := decodeBody(r, &a); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	prev, ok := domain.FindByID(s.actions, id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	a.ID = id
	a.CreatedAt, a.UpdatedAt = s.stamp(prev.CreatedAt)
	a.StatusChangedAt = prev.StatusChangedAt
	if a.Status != prev.Status {
		a.StatusChangedAt = s.Now().UTC()
	}
	s.actions, _ = replaceByID(s.actions, a)
	writeData(w, a)
}

func (s *Server) deleteAction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.actions, ok = removeByID(s.actions, chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("coaching_session_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, filter(s.goals, func(g domain.OverarchingGoal) bool { return g.CoachingSessionID == id }))
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var g domain.OverarchingGoal
	if err := decodeBody(r, &g); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g.ID = ""
	writeData(w, s.AddGoal(g))
}

func (s *Server) updateGoal(w http.ResponseWriter, r *http.Request) {
	var g domain.OverarchingGoal
	if err := decodeBody(r, &g); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	prev, ok := domain.FindByID(s.goals, id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	g.ID = id
	g.CreatedAt, g.UpdatedAt = s.stamp(prev.CreatedAt)
	if g.Status == "" {
		g.Status = prev.Status
	}
	if g.Status == domain.Completed && prev.Status != domain.Completed {
		g.CompletedAt = s.Now().UTC()
	}
	s.goals, _ = replaceByID(s.goals, g)
	writeData(w, g)
}

func (s *Server) deleteGoal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.goals, ok = removeByID(s.goals, chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := []T{}
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func replaceByID[T domain.Entity](items []T, v T) ([]T, bool) {
	out := make([]T, len(items))
	copy(out, items)
	for i, it := range out {
		if it.GetID() == v.GetID() {
			out[i] = v
			return out, true
		}
	}
	return out, false
}

func removeByID[T domain.Entity](items []T, id string) ([]T, bool) {
	out := make([]T, 0, len(items))
	found := false
	for _, it := range items {
		if it.GetID() == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}
