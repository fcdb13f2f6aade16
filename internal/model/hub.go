// Package model defines the data structures used throughout the emulator.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/sakif/fakehub/internal/coordinates"
	"github.com/sakif/fakehub/internal/cursor"
	"github.com/sakif/fakehub/internal/nodeid"
)

// Hub describes one emulated platform instance.
//
// A Hub value is a descriptor only: the users that live in it are owned by
// the store (internal/repository) and reached through the hub's ID. Copying
// a Hub therefore never aliases mutable state.
type Hub struct {
	ID      string    `json:"id"`      // opaque UUID
	Name    string    `json:"name"`    // lookup key, e.g. "main"
	Address string    `json:"address"` // base of every URL the hub hands out
	Started time.Time `json:"started"` // feeds the node identity
}

// NewHub returns a Hub with a fresh random ID.
func NewHub(name, address string, started time.Time) Hub {
	return Hub{
		ID:      uuid.NewString(),
		Name:    name,
		Address: address,
		Started: started.UTC(),
	}
}

// NodeID returns the deterministic node identity derived from Started.
func (h Hub) NodeID() string {
	return nodeid.Derive(h.Started)
}

// Cursor returns a URL builder rooted at the hub's address.
func (h Hub) Cursor() cursor.Cursor {
	return cursor.New(h.Address)
}

// Coordinates returns "<address>;node:<node-id>".
func (h Hub) Coordinates() string {
	return coordinates.Format(h.Address, h.NodeID())
}
