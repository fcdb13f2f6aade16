// Package memory implements repository.Store as an in-memory arena.
//
// LOCKING:
// Two levels of locks guard the store:
//
//   - Store.mu guards the hub tables (records by ID, name index).
//   - hubRecord.mu guards one hub's users.
//
// A registration locks only its own hub, so hubs never contend with each
// other. Store.mu is never held while a hub lock is being acquired.
//
// Users are handed out as clones; the only live pointers are the ones passed
// into an Update callback.
package memory

import (
	"fmt"
	"sync"

	"github.com/sakif/fakehub/internal/apperror"
	"github.com/sakif/fakehub/internal/model"
	"github.com/sakif/fakehub/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type hubRecord struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// Store is the in-memory hub/user store. The zero value is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	hubs    map[string]model.Hub
	records map[string]*hubRecord
	byName  map[string]string // name → hub ID
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		hubs:    make(map[string]model.Hub),
		records: make(map[string]*hubRecord),
		byName:  make(map[string]string),
	}
}

// AddHub inserts or replaces a hub descriptor. When a replaced hub changes its
// name, the old name stops resolving.
func (s *Store) AddHub(hub model.Hub) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.hubs[hub.ID]; ok && old.Name != hub.Name {
		if s.byName[old.Name] == hub.ID {
			delete(s.byName, old.Name)
		}
	}
	s.hubs[hub.ID] = hub
	s.byName[hub.Name] = hub.ID
	if _, ok := s.records[hub.ID]; !ok {
		s.records[hub.ID] = &hubRecord{users: make(map[string]*model.User)}
	}
}

func (s *Store) HubByName(name string) (model.Hub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return model.Hub{}, apperror.NotFound("hub", name)
	}
	return s.hubs[id], nil
}

func (s *Store) HubByID(id string) (model.Hub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hub, ok := s.hubs[id]
	if !ok {
		return model.Hub{}, apperror.NotFound("hub", id)
	}
	return hub, nil
}

func (s *Store) ListHubs() []model.Hub {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hubs := make([]model.Hub, 0, len(s.hubs))
	for _, hub := range s.hubs {
		hubs = append(hubs, hub)
	}
	return hubs
}

func (s *Store) record(hubID string) (*hubRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[hubID]
	if !ok {
		return nil, apperror.NotFound("hub", hubID)
	}
	return rec, nil
}

// Update runs fn under the hub's write lock.
func (s *Store) Update(hubID string, fn func(tx repository.UserTx) error) error {
	rec, err := s.record(hubID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	return fn(&tx{rec: rec})
}

func (s *Store) User(hubID, login string) (*model.User, error) {
	rec, err := s.record(hubID)
	if err != nil {
		return nil, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	user, ok := rec.users[login]
	if !ok {
		return nil, apperror.NotFound("user", login)
	}
	return user.Clone(), nil
}

func (s *Store) Users(hubID string) ([]*model.User, error) {
	rec, err := s.record(hubID)
	if err != nil {
		return nil, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	users := make([]*model.User, 0, len(rec.users))
	for _, user := range rec.users {
		users = append(users, user.Clone())
	}
	return users, nil
}

func (s *Store) Count(hubID string) (int, error) {
	rec, err := s.record(hubID)
	if err != nil {
		return 0, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	return len(rec.users), nil
}

// tx is only valid while the hub's write lock is held.
type tx struct {
	rec *hubRecord
}

func (t *tx) User(login string) (*model.User, bool) {
	user, ok := t.rec.users[login]
	return user, ok
}

func (t *tx) Insert(user *model.User) error {
	if user == nil || user.Login == "" {
		return apperror.Internal("memory: refusing to store a user without a login")
	}
	if existing, ok := t.rec.users[user.Login]; ok {
		return fmt.Errorf("memory: inserting user: %w", apperror.AlreadyExists("login", existing.Login))
	}
	t.rec.users[user.Login] = user
	return nil
}
