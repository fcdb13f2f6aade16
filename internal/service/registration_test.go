package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaswdr/faker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/fakehub/internal/apperror"
	"github.com/sakif/fakehub/internal/model"
	"github.com/sakif/fakehub/internal/repository"
	"github.com/sakif/fakehub/internal/repository/memory"
)

// =========================================================================
// TEST DOUBLES
// =========================================================================

// sequence is an IDSource returning fixed values in order, then repeating the
// last one.
type sequence struct {
	values []int
	next   int
}

func (s *sequence) IntN(n int) int {
	v := s.values[min(s.next, len(s.values)-1)]
	s.next++
	return v % n
}

// brokenStore fails every Update with a non-domain error.
type brokenStore struct {
	repository.Store
}

func (brokenStore) Update(string, func(repository.UserTx) error) error {
	return errors.New("disk on fire")
}

var fixedNow = time.Date(2024, 9, 1, 9, 10, 11, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestHub returns a store holding one hub at "localhost" started at the
// node identity fixture time.
func newTestHub(t *testing.T) (*memory.Store, model.Hub) {
	t.Helper()
	store := memory.New()
	hub := model.NewHub("main", "localhost", fixedNow)
	store.AddHub(hub)
	return store, hub
}

func newTestRegistrar(t *testing.T, store repository.Store, opts ...Option) *Registrar {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewRegistrar(store, testLogger(), opts...)
}

// =========================================================================
// REGISTER
// =========================================================================

func TestRegister_RandomLogin(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store)
	login := faker.New().Internet().User()

	user, err := reg.Register(hub, login)
	require.NoError(t, err)
	assert.Equal(t, login, user.Login)

	stored, err := store.User(hub.ID, login)
	require.NoError(t, err)
	assert.Equal(t, login, stored.Login)
}

func TestRegister_EnrichesThirtyKeysInOrder(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store)

	user, err := reg.Register(hub, "foo")
	require.NoError(t, err)

	assert.Len(t, UserKeys, 30)
	assert.Equal(t, UserKeys, user.Keys())
	assert.NotContains(t, user.Keys(), "login")
}

func TestRegister_Fields(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store, WithIDSource(&sequence{values: []int{42}}))

	user, err := reg.Register(hub, "foo")
	require.NoError(t, err)

	tests := []struct {
		key  string
		want any
	}{
		{"node_id", "305be946d516494d20c7c10f6d0020f9"},
		{"id", 42},
		{"avatar_url", "u/42?v=4"},
		{"gravatar_id", ""},
		{"url", "localhost/users/foo"},
		{"html_url", "localhost/foo"},
		{"followers_url", "localhost/users/foo/followers"},
		{"following_url", "localhost/users/foo/following{/other_user}"},
		{"gists_url", "localhost/users/foo/gists{/gist_id}"},
		{"starred_url", "localhost/users/foo/starred{/owner}{/repo}"},
		{"subscriptions_url", "localhost/users/foo/subscriptions"},
		{"organizations_url", "localhost/users/foo/orgs"},
		{"repos_url", "localhost/users/foo/repos"},
		{"events_url", "localhost/users/foo/events{/privacy}"},
		{"received_events_url", "localhost/users/foo/received_events"},
		{"type", "User"},
		{"site_admin", false},
		{"name", "GitHub user"},
		{"company", nil},
		{"bio", nil},
		{"public_repos", 0},
		{"following", 0},
		{"created_at", "2024-09-01T09:10:11Z"},
		{"updated_at", "2024-09-01T09:10:11Z"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := user.Extra.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegister_AvatarIsRelative(t *testing.T) {
	store, hub := newTestHub(t)
	hub.Address = "http://localhost:3000"
	store.AddHub(hub)
	reg := newTestRegistrar(t, store, WithIDSource(&sequence{values: []int{42}}))

	user, err := reg.Register(hub, "foo")
	require.NoError(t, err)

	avatar, _ := user.Extra.Get("avatar_url")
	assert.Equal(t, "u/42?v=4", avatar)
	url, _ := user.Extra.Get("url")
	assert.Equal(t, "http://localhost:3000/users/foo", url)
}

func TestRegister_JSONStartsWithLogin(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store, WithIDSource(&sequence{values: []int{7}}))

	user, err := reg.Register(hub, "jeff")
	require.NoError(t, err)

	body, err := json.Marshal(user)
	require.NoError(t, err)
	assert.Regexp(t, `^\{"login":"jeff","node_id":"305be946d516494d20c7c10f6d0020f9","id":7,"avatar_url":"u/7\?v=4",`, string(body))
}

func TestRegister_Duplicate(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store)

	_, err := reg.Register(hub, "jeff")
	require.NoError(t, err)

	_, err = reg.Register(hub, "jeff")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "jeff", appErr.Key)
}

func TestRegister_CaseSensitive(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store)

	_, err := reg.Register(hub, "jeff")
	require.NoError(t, err)
	_, err = reg.Register(hub, "Jeff")
	assert.NoError(t, err)
}

func TestRegister_SameLoginInTwoHubs(t *testing.T) {
	store, main := newTestHub(t)
	other := model.NewHub("enterprise", "localhost:4000", fixedNow)
	store.AddHub(other)
	reg := newTestRegistrar(t, store)

	_, err := reg.Register(main, "jeff")
	require.NoError(t, err)
	user, err := reg.Register(other, "jeff")
	require.NoError(t, err)

	url, _ := user.Extra.Get("url")
	assert.Equal(t, "localhost:4000/users/jeff", url)
}

func TestRegister_InvalidLogin(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store)

	for _, login := range []string{"", "a b", "a/b", "a?b", "a#b", "tab\tbed"} {
		t.Run(fmt.Sprintf("%q", login), func(t *testing.T) {
			_, err := reg.Register(hub, login)
			assert.True(t, errors.Is(err, apperror.ErrValidation))
		})
	}

	users, err := store.Users(hub.ID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRegister_UnknownHub(t *testing.T) {
	reg := newTestRegistrar(t, memory.New())

	_, err := reg.Register(model.NewHub("ghost", "localhost", fixedNow), "jeff")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestRegister_StoreFailureIsNotDomainError(t *testing.T) {
	_, hub := newTestHub(t)
	reg := newTestRegistrar(t, brokenStore{})

	_, err := reg.Register(hub, "jeff")
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrConflict))
	assert.False(t, errors.Is(err, apperror.ErrNotFound))
}

func TestRegister_ReturnsCopy(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store)

	user, err := reg.Register(hub, "jeff")
	require.NoError(t, err)
	user.Extra.Set("name", "changed")

	stored, err := store.User(hub.ID, "jeff")
	require.NoError(t, err)
	name, _ := stored.Extra.Get("name")
	assert.Equal(t, "GitHub user", name)
}

func TestRegister_SeedIsReproducible(t *testing.T) {
	ids := func() []int {
		store, hub := newTestHub(t)
		reg := newTestRegistrar(t, store, WithSeed(1234))
		var out []int
		for _, login := range []string{"a", "b", "c"} {
			user, err := reg.Register(hub, login)
			require.NoError(t, err)
			id, _ := user.ID()
			out = append(out, id)
		}
		return out
	}

	first := ids()
	assert.Equal(t, first, ids())
	for _, id := range first {
		assert.GreaterOrEqual(t, id, 0)
		assert.Less(t, id, MaxID)
	}
}

// =========================================================================
// CONCURRENCY
// =========================================================================

func TestRegister_ConcurrentDistinctLogins(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store)

	const n = 100
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Register(hub, fmt.Sprintf("user-%d", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	users, err := store.Users(hub.ID)
	require.NoError(t, err)
	assert.Len(t, users, n)
}

func TestRegister_ConcurrentSameLogin(t *testing.T) {
	store, hub := newTestHub(t)
	reg := newTestRegistrar(t, store)

	const n = 50
	var ok, conflicts atomic.Int32
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Register(hub, "jeff")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, apperror.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(n-1), conflicts.Load())
}

// =========================================================================
// STATE / VALIDATION
// =========================================================================

func TestState_String(t *testing.T) {
	assert.Equal(t, "candidate", Candidate.String())
	assert.Equal(t, "stored", Stored.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin("h1alexbel"))
	assert.NoError(t, ValidateLogin("first.last"))
	assert.Error(t, ValidateLogin(""))
	assert.Error(t, ValidateLogin(" jeff"))
}
