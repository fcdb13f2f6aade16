// Package repository declares the storage contracts the service layer
// depends on. Implementations live in sub-packages:
//
//	memory → the live hub/user graph (the only store requests touch)
//	sqlite → the optional init-state database read at startup
package repository

import (
	"context"

	"github.com/sakif/fakehub/internal/model"
)

// HubRepository indexes hubs by ID and by name.
type HubRepository interface {
	// AddHub inserts hub, or replaces the descriptor of the hub with the same
	// ID. Users already stored under that ID are kept.
	AddHub(hub model.Hub)
	HubByName(name string) (model.Hub, error)
	HubByID(id string) (model.Hub, error)
	ListHubs() []model.Hub
}

// UserTx is the view of one hub's users inside a critical section.
// Pointers returned by User are live and must not escape the callback.
type UserTx interface {
	User(login string) (*model.User, bool)
	// Insert stores user; it fails with apperror.ErrConflict when the login
	// is taken. Existing users are never overwritten.
	Insert(user *model.User) error
}

// Store is the full hub/user store.
type Store interface {
	HubRepository

	// Update runs fn while holding the hub's write lock. Everything fn does
	// through tx is atomic with respect to other Update calls on that hub.
	Update(hubID string, fn func(tx UserTx) error) error

	// User returns a copy of one user, or apperror.ErrNotFound.
	User(hubID, login string) (*model.User, error)

	// Users returns copies of every user in the hub, in no particular order.
	Users(hubID string) ([]*model.User, error)

	// Count returns the number of users in the hub without copying them.
	Count(hubID string) (int, error)
}

// SeedHub is one hub described by an init-state source.
type SeedHub struct {
	Name    string
	Address string
	Logins  []string
}

// SeedSource provides the initial state loaded at startup.
type SeedSource interface {
	Hubs(ctx context.Context) ([]SeedHub, error)
}
