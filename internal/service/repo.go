package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/fakehub/internal/apperror"
	"github.com/sakif/fakehub/internal/model"
	"github.com/sakif/fakehub/internal/repository"
)

// MaxRepoNameLength mirrors the platform's limit on repository names.
const MaxRepoNameLength = 100

// RepoService keeps the repositories owned by users.
//
// Repositories live on the owning user and are written under the hub lock,
// like registrations. The user's extra attributes (public_repos and friends)
// are left untouched.
type RepoService struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewRepoService creates a RepoService.
func NewRepoService(store repository.Store, logger *slog.Logger) *RepoService {
	return &RepoService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create adds repository name to owner in hub.
//
// Errors:
//   - apperror.ErrValidation for an empty or malformed name
//   - apperror.ErrNotFound when hub or owner does not exist
//   - apperror.ErrConflict when owner already has a repository called name
func (s *RepoService) Create(hub model.Hub, owner, name string, private bool) (model.Repo, error) {
	if err := validateRepoName(name); err != nil {
		return model.Repo{}, err
	}

	var repo model.Repo
	err := s.store.Update(hub.ID, func(tx repository.UserTx) error {
		user, ok := tx.User(owner)
		if !ok {
			return apperror.NotFound("user", owner)
		}
		for _, existing := range user.Repos {
			if strings.EqualFold(existing.Name, name) {
				return apperror.AlreadyExists("name", name)
			}
		}
		repo = model.Repo{
			ID:        xid.New().String(),
			Name:      name,
			FullName:  owner + "/" + name,
			Owner:     owner,
			Private:   private,
			CreatedAt: s.now().UTC(),
		}
		user.Repos = append(user.Repos, repo)
		return nil
	})
	if err != nil {
		return model.Repo{}, fmt.Errorf("service: creating repo %s/%s in hub %s: %w", owner, name, hub.Name, err)
	}

	s.logger.Info("repo created",
		slog.String("hub", hub.Name),
		slog.String("repo", repo.FullName),
		slog.String("id", repo.ID),
	)
	return repo, nil
}

// List returns owner's repositories in creation order.
func (s *RepoService) List(hub model.Hub, owner string) ([]model.Repo, error) {
	user, err := s.store.User(hub.ID, owner)
	if err != nil {
		return nil, fmt.Errorf("service: listing repos of %s in hub %s: %w", owner, hub.Name, err)
	}
	return user.Repos, nil
}

func validateRepoName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.ValidationFailed("name", "repository name is required")
	}
	if len(name) > MaxRepoNameLength {
		return apperror.ValidationFailed("name", fmt.Sprintf("repository name must be at most %d characters", MaxRepoNameLength))
	}
	if strings.ContainsAny(name, "/?# \t") {
		return apperror.ValidationFailed("name", fmt.Sprintf("repository name %q contains invalid characters", name))
	}
	return nil
}
