package service

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/sakif/fakehub/internal/apperror"
	"github.com/sakif/fakehub/internal/model"
	"github.com/sakif/fakehub/internal/repository"
)

// HubSummary is a hub as listed by GET /hubs.
type HubSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Coordinates string    `json:"coordinates"`
	Started     time.Time `json:"started"`
	Users       int       `json:"users"`
}

// HubService is the read side of the engine plus hub creation.
type HubService struct {
	store     repository.Store
	registrar *Registrar
	logger    *slog.Logger
}

// NewHubService creates a HubService. Registration is delegated to registrar.
func NewHubService(store repository.Store, registrar *Registrar, logger *slog.Logger) *HubService {
	return &HubService{
		store:     store,
		registrar: registrar,
		logger:    logger,
	}
}

// CreateHub adds a new hub with a fresh ID. Names are unique.
func (s *HubService) CreateHub(name, address string, started time.Time) (model.Hub, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Hub{}, apperror.ValidationFailed("name", "hub name is required")
	}
	if address == "" {
		return model.Hub{}, apperror.ValidationFailed("address", "hub address is required")
	}
	if _, err := s.store.HubByName(name); err == nil {
		return model.Hub{}, apperror.AlreadyExists("hub", name)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return model.Hub{}, fmt.Errorf("service: checking hub %s: %w", name, err)
	}

	hub := model.NewHub(name, address, started)
	s.store.AddHub(hub)

	s.logger.Info("hub created",
		slog.String("hub", hub.Name),
		slog.String("id", hub.ID),
		slog.String("coordinates", hub.Coordinates()),
	)
	return hub, nil
}

// LookupHub resolves a hub by name first, then by ID.
func (s *HubService) LookupHub(nameOrID string) (model.Hub, error) {
	hub, err := s.store.HubByName(nameOrID)
	if err == nil {
		return hub, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return model.Hub{}, err
	}
	hub, err = s.store.HubByID(nameOrID)
	if err != nil {
		return model.Hub{}, apperror.NotFound("hub", nameOrID)
	}
	return hub, nil
}

// Register creates login in hub. See Registrar.Register.
func (s *HubService) Register(hub model.Hub, login string) (*model.User, error) {
	return s.registrar.Register(hub, login)
}

// GetUser returns a copy of one user, or apperror.ErrNotFound.
func (s *HubService) GetUser(hub model.Hub, login string) (*model.User, error) {
	user, err := s.store.User(hub.ID, login)
	if err != nil {
		return nil, fmt.Errorf("service: getting user %s in hub %s: %w", login, hub.Name, err)
	}
	return user, nil
}

// ListUsers returns every user of hub ordered by id ascending. Ids may
// collide; ties are broken by login.
func (s *HubService) ListUsers(hub model.Hub) ([]*model.User, error) {
	users, err := s.store.Users(hub.ID)
	if err != nil {
		return nil, fmt.Errorf("service: listing users in hub %s: %w", hub.Name, err)
	}
	slices.SortFunc(users, compareUsers)
	return users, nil
}

func compareUsers(a, b *model.User) int {
	ida, _ := a.ID()
	idb, _ := b.ID()
	if ida != idb {
		if ida < idb {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Login, b.Login)
}

// Coordinates returns "<address>;node:<node-id>" for hub.
func (s *HubService) Coordinates(hub model.Hub) string {
	return hub.Coordinates()
}

// Hubs lists every hub with its user count, ordered by start time then name.
func (s *HubService) Hubs() ([]HubSummary, error) {
	hubs := s.store.ListHubs()
	summaries := make([]HubSummary, 0, len(hubs))
	for _, hub := range hubs {
		count, err := s.store.Count(hub.ID)
		if err != nil {
			return nil, fmt.Errorf("service: counting users in hub %s: %w", hub.Name, err)
		}
		summaries = append(summaries, HubSummary{
			ID:          hub.ID,
			Name:        hub.Name,
			Address:     hub.Address,
			Coordinates: hub.Coordinates(),
			Started:     hub.Started,
			Users:       count,
		})
	}
	slices.SortFunc(summaries, func(a, b HubSummary) int {
		if c := a.Started.Compare(b.Started); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return summaries, nil
}
