package state

import (
	"net/http"

	"github.com/rs/zerolog"

	"coachline/internal/domain"
	"coachline/internal/sessionstore"
)

// Cookie is the persisted form of a backend session cookie.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type AuthState struct {
	IsLoggedIn  bool               `json:"is_logged_in"`
	UserID      domain.ID          `json:"user_id"`
	UserSession domain.UserSession `json:"user_session"`
	Cookies     []Cookie           `json:"cookies,omitempty"`
}

// Auth tracks the signed-in user for one root.
type Auth struct {
	c *container[AuthState]
}

func NewAuth(storage sessionstore.Storage, logger zerolog.Logger) *Auth {
	return &Auth{c: newContainer(AuthStoreName, storage, logger, func() AuthState {
		return AuthState{UserSession: domain.DefaultUserSession()}
	})}
}

func (a *Auth) Login(session domain.UserSession, cookies []*http.Cookie) {
	session.IsLoggedIn = true
	persisted := make([]Cookie, 0, len(cookies))
	for _, ck := range cookies {
		persisted = append(persisted, Cookie{Name: ck.Name, Value: ck.Value})
	}
	a.c.update(func(s *AuthState) {
		s.IsLoggedIn = true
		s.UserID = session.ID
		s.UserSession = session
		s.Cookies = persisted
	})
}

func (a *Auth) Logout() { a.c.reset() }

func (a *Auth) Reset() { a.c.reset() }

func (a *Auth) State() AuthState {
	st := a.c.get()
	st.UserSession.IsLoggedIn = st.IsLoggedIn
	return st
}

func (a *Auth) IsLoggedIn() bool { return a.c.get().IsLoggedIn }

func (a *Auth) UserID() domain.ID { return a.c.get().UserID }

func (a *Auth) UserSession() domain.UserSession { return a.State().UserSession }

// HTTPCookies rebuilds the persisted cookies for an http.CookieJar.
func (a *Auth) HTTPCookies() []*http.Cookie {
	st := a.c.get()
	out := make([]*http.Cookie, 0, len(st.Cookies))
	for _, ck := range st.Cookies {
		out = append(out, &http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

func (a *Auth) Subscribe(fn func(AuthState)) (unsubscribe func()) { return a.c.subscribe(fn) }
