package service

import (
	"errors"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/fakehub/internal/apperror"
	"github.com/sakif/fakehub/internal/model"
)

func newTestRepoService(t *testing.T) (*RepoService, *HubService, model.Hub) {
	t.Helper()
	store, hub := newTestHub(t)
	hubs := NewHubService(store, newTestRegistrar(t, store), testLogger())
	_, err := hubs.Register(hub, "jeff")
	require.NoError(t, err)
	return NewRepoService(store, testLogger()), hubs, hub
}

func TestCreateRepo(t *testing.T) {
	svc, _, hub := newTestRepoService(t)

	repo, err := svc.Create(hub, "jeff", "fakehub", true)
	require.NoError(t, err)

	_, err = xid.FromString(repo.ID)
	assert.NoError(t, err, "id should be an xid")
	assert.Equal(t, "fakehub", repo.Name)
	assert.Equal(t, "jeff/fakehub", repo.FullName)
	assert.Equal(t, "jeff", repo.Owner)
	assert.True(t, repo.Private)
	assert.False(t, repo.CreatedAt.IsZero())
}

func TestCreateRepo_Errors(t *testing.T) {
	svc, _, hub := newTestRepoService(t)
	_, err := svc.Create(hub, "jeff", "taken", false)
	require.NoError(t, err)

	tests := []struct {
		name    string
		owner   string
		repo    string
		wantErr error
	}{
		{"duplicate", "jeff", "taken", apperror.ErrConflict},
		{"duplicate different case", "jeff", "TAKEN", apperror.ErrConflict},
		{"unknown owner", "nobody", "x", apperror.ErrNotFound},
		{"empty name", "jeff", "", apperror.ErrValidation},
		{"slash in name", "jeff", "a/b", apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(hub, tt.owner, tt.repo, false)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestListRepos(t *testing.T) {
	svc, _, hub := newTestRepoService(t)

	empty, err := svc.List(hub, "jeff")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"one", "two"} {
		_, err := svc.Create(hub, "jeff", name, false)
		require.NoError(t, err)
	}

	repos, err := svc.List(hub, "jeff")
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "one", repos[0].Name)
	assert.Equal(t, "two", repos[1].Name)

	_, err = svc.List(hub, "nobody")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCreateRepo_LeavesUserAttributesAlone(t *testing.T) {
	svc, hubs, hub := newTestRepoService(t)

	_, err := svc.Create(hub, "jeff", "fakehub", false)
	require.NoError(t, err)

	user, err := hubs.GetUser(hub, "jeff")
	require.NoError(t, err)
	publicRepos, _ := user.Extra.Get("public_repos")
	assert.Equal(t, 0, publicRepos)
	assert.Len(t, user.Repos, 1)
}
