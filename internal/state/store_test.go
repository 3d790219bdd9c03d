package state_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachline/internal/domain"
	"coachline/internal/sessionstore"
	"coachline/internal/state"
)

func orgs() []domain.Organization {
	return []domain.Organization{
		{ID: "o1", Name: "Acme"},
		{ID: "o2", Name: "Globex"},
	}
}

func TestSetCurrentIsAtomic(t *testing.T) {
	s := state.NewOrganizations(sessionstore.NewMemory(), zerolog.Nop())

	var seen []state.Snapshot[domain.Organization]
	unsubscribe := s.Subscribe(func(snap state.Snapshot[domain.Organization]) {
		seen = append(seen, snap)
	})
	defer unsubscribe()

	s.SetCurrent(domain.Organization{ID: "o1", Name: "Acme"})

	require.Len(t, seen, 1)
	assert.Equal(t, "o1", seen[0].CurrentID)
	assert.Equal(t, "Acme", seen[0].Current.Name)
	assert.Equal(t, "o1", s.CurrentID())
}

func TestSetCurrentIDLeavesObject(t *testing.T) {
	s := state.NewOrganizations(nil, zerolog.Nop())
	s.SetCurrent(domain.Organization{ID: "o1", Name: "Acme"})
	s.SetCurrentID("o2")

	snap := s.Snapshot()
	assert.Equal(t, "o2", snap.CurrentID)
	assert.Equal(t, "o1", snap.Current.ID)
}

func TestGetCurrent(t *testing.T) {
	s := state.NewOrganizations(nil, zerolog.Nop())
	s.SetList(orgs())

	assert.Equal(t, "Globex", s.GetCurrent("o2").Name)
	assert.Equal(t, domain.DefaultOrganization(), s.GetCurrent("missing"))
	assert.Equal(t, domain.DefaultOrganization(), s.GetCurrent(""))
}

func TestGetCurrentDefaultsForGoals(t *testing.T) {
	s := state.NewGoals(nil, zerolog.Nop())
	assert.Equal(t, domain.NotStarted, s.GetCurrent("nope").Status)
}

func TestSelect(t *testing.T) {
	s := state.NewOrganizations(nil, zerolog.Nop())
	s.SetList(orgs())
	s.SetCurrent(orgs()[0])

	s.Select("o2")
	assert.Equal(t, orgs()[1], s.Current())

	s.Select("o9")
	assert.Equal(t, "o9", s.CurrentID())
	assert.Equal(t, domain.DefaultOrganization(), s.Current())
}

func TestSetListCopiesInput(t *testing.T) {
	s := state.NewOrganizations(nil, zerolog.Nop())
	list := orgs()
	s.SetList(list)
	list[0].Name = "mutated"

	assert.Equal(t, "Acme", s.List()[0].Name)

	out := s.List()
	out[1].Name = "mutated"
	assert.Equal(t, "Globex", s.List()[1].Name)
}

func TestReset(t *testing.T) {
	s := state.NewSessions(nil, zerolog.Nop())
	s.SetList([]domain.CoachingSession{{ID: "s1"}})
	s.SetCurrent(domain.CoachingSession{ID: "s1"})

	s.Reset()

	snap := s.Snapshot()
	assert.Empty(t, snap.CurrentID)
	assert.Empty(t, snap.List)
	assert.Equal(t, domain.DefaultCoachingSession(), snap.Current)
}

func TestResetSelectionKeepsList(t *testing.T) {
	s := state.NewOrganizations(nil, zerolog.Nop())
	s.SetList(orgs())
	s.SetCurrent(orgs()[0])

	s.ResetSelection()

	assert.Empty(t, s.CurrentID())
	assert.Len(t, s.List(), 2)
}

func TestHydrateFromStorage(t *testing.T) {
	storage := sessionstore.NewMemory()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	first := state.NewOrganizations(storage, zerolog.Nop())
	first.SetList(orgs())
	first.SetCurrent(domain.Organization{ID: "o2", Name: "Globex", CreatedAt: created})

	second := state.NewOrganizations(storage, zerolog.Nop())
	snap := second.Snapshot()
	assert.Equal(t, "o2", snap.CurrentID)
	assert.True(t, created.Equal(snap.Current.CreatedAt))
	assert.Len(t, snap.List, 2)
}

func TestHydrateIgnoresGarbage(t *testing.T) {
	storage := sessionstore.NewMemory()
	require.NoError(t, storage.Save(context.Background(), state.SessionStoreName, []byte("not json")))

	s := state.NewSessions(storage, zerolog.Nop())
	assert.Empty(t, s.CurrentID())
	assert.Empty(t, s.List())
}

type brokenStorage struct{}

var errBroken = errors.New("broken")

func (brokenStorage) Load(context.Context, string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenStorage) Save(context.Context, string, []byte) error        { return errBroken }
func (brokenStorage) Delete(context.Context, string) error              { return errBroken }
func (brokenStorage) Clear(context.Context) error                       { return errBroken }

func TestPersistenceFailuresDoNotSurface(t *testing.T) {
	s := state.NewOrganizations(brokenStorage{}, zerolog.Nop())
	s.SetCurrent(domain.Organization{ID: "o1"})
	assert.Equal(t, "o1", s.CurrentID())
}

func TestUnsubscribe(t *testing.T) {
	s := state.NewOrganizations(nil, zerolog.Nop())
	calls := 0
	unsubscribe := s.Subscribe(func(state.Snapshot[domain.Organization]) { calls++ })
	s.SetCurrentID("o1")
	unsubscribe()
	s.SetCurrentID("o2")
	assert.Equal(t, 1, calls)
}

func TestWatchFiresOnChangeOnly(t *testing.T) {
	s := state.NewOrganizations(nil, zerolog.Nop())
	var ids []domain.ID
	unsubscribe := state.Watch(s, func(snap state.Snapshot[domain.Organization]) domain.ID {
		return snap.CurrentID
	}, func(id domain.ID) { ids = append(ids, id) })
	defer unsubscribe()

	s.SetList(orgs())
	s.SetCurrentID("o1")
	s.SetCurrentID("o1")
	s.SetList(nil)
	s.SetCurrentID("o2")

	assert.Equal(t, []domain.ID{"o1", "o2"}, ids)
}

func TestWatchStartedDuringWritesTracksFinalValue(t *testing.T) {
	for i := 0; i < 200; i++ {
		s := state.NewOrganizations(nil, zerolog.Nop())
		s.SetCurrentID("x")

		var (
			mu       sync.Mutex
			observed domain.ID
			seeded   bool
		)
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.SetCurrentID("y")
		}()
		unsubscribe := state.Watch(s, func(snap state.Snapshot[domain.Organization]) domain.ID {
			mu.Lock()
			defer mu.Unlock()
			if !seeded {
				seeded = true
				observed = snap.CurrentID
			}
			return snap.CurrentID
		}, func(id domain.ID) {
			mu.Lock()
			defer mu.Unlock()
			observed = id
		})
		<-done

		mu.Lock()
		got := observed
		mu.Unlock()
		unsubscribe()
		require.Equal(t, s.CurrentID(), got, "iteration %d", i)
	}
}

func TestConcurrentWritesAreSerialized(t *testing.T) {
	s := state.NewOrganizations(sessionstore.NewMemory(), zerolog.Nop())
	var mu sync.Mutex
	count := 0
	s.Subscribe(func(snap state.Snapshot[domain.Organization]) {
		mu.Lock()
		defer mu.Unlock()
		count++
		assert.Equal(t, snap.CurrentID, snap.Current.ID)
	})

	var wg sync.WaitGroup
	for _, o := range orgs() {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(o domain.Organization) {
				defer wg.Done()
				s.SetCurrent(o)
			}(o)
		}
	}
	wg.Wait()

	assert.Equal(t, 40, count)
	snap := s.Snapshot()
	assert.Equal(t, snap.CurrentID, snap.Current.ID)
}

func TestAuth(t *testing.T) {
	storage := sessionstore.NewMemory()
	a := state.NewAuth(storage, zerolog.Nop())
	assert.False(t, a.IsLoggedIn())

	a.Login(domain.UserSession{ID: "u1", Email: "coach@example.com"}, []*http.Cookie{{Name: "id", Value: "tok"}})
	assert.True(t, a.IsLoggedIn())
	assert.Equal(t, "u1", a.UserID())
	assert.True(t, a.UserSession().IsLoggedIn)

	restored := state.NewAuth(storage, zerolog.Nop())
	assert.True(t, restored.IsLoggedIn())
	require.Len(t, restored.HTTPCookies(), 1)
	assert.Equal(t, "tok", restored.HTTPCookies()[0].Value)

	restored.Logout()
	assert.False(t, restored.IsLoggedIn())
	assert.Empty(t, restored.UserID())
	assert.Empty(t, restored.HTTPCookies())
}

func TestAppStateClearsDependents(t *testing.T) {
	a := state.NewAppState(nil, zerolog.Nop())
	a.SetOrganizationID("o1")
	a.SetRelationshipID("r1")
	a.SetSessionID("s1")
	assert.Equal(t, state.Selection{OrganizationID: "o1", RelationshipID: "r1", SessionID: "s1"}, a.Selection())

	a.SetRelationshipID("r2")
	assert.Equal(t, state.Selection{OrganizationID: "o1", RelationshipID: "r2"}, a.Selection())

	a.SetOrganizationID("o2")
	assert.Equal(t, state.Selection{OrganizationID: "o2"}, a.Selection())

	a.Reset()
	assert.Equal(t, state.Selection{}, a.Selection())
}
