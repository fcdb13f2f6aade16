package model

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Extra is the ordered attribute bag mirroring the platform's user fields.
// Values are JSON-compatible: string, int, bool or nil (rendered as null).
type Extra = orderedmap.OrderedMap[string, any]

// User is a registered account inside a Hub.
//
// Login is the unique key and never changes after creation. Extra is filled
// exactly once, at registration time, and its key order is the order of the
// fields in the JSON document served to clients.
type User struct {
	Login string
	Repos []Repo
	Extra *Extra
}

// NewUser returns a candidate user with an empty attribute bag and no repos.
func NewUser(login string) *User {
	return &User{
		Login: login,
		Repos: []Repo{},
		Extra: orderedmap.New[string, any](),
	}
}

// ID returns the synthetic numeric id from the attribute bag.
// ok is false for users that were never enriched.
func (u *User) ID() (id int, ok bool) {
	v, present := u.Extra.Get("id")
	if !present {
		return 0, false
	}
	id, ok = v.(int)
	return id, ok
}

// Keys returns the attribute bag's keys in insertion order.
func (u *User) Keys() []string {
	keys := make([]string, 0, u.Extra.Len())
	for pair := u.Extra.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns a deep copy safe to hand out of the store's critical section.
func (u *User) Clone() *User {
	clone := &User{
		Login: u.Login,
		Repos: append([]Repo{}, u.Repos...),
		Extra: orderedmap.New[string, any](u.Extra.Len()),
	}
	for pair := u.Extra.Oldest(); pair != nil; pair = pair.Next() {
		clone.Extra.Set(pair.Key, pair.Value)
	}
	return clone
}

// MarshalJSON renders the user as the platform does: "login" first, then
// every extra attribute in insertion order.
func (u *User) MarshalJSON() ([]byte, error) {
	doc := orderedmap.New[string, any](u.Extra.Len() + 1)
	doc.Set("login", u.Login)
	for pair := u.Extra.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == "login" {
			return nil, fmt.Errorf("model: user %s: extra attributes must not override login", u.Login)
		}
		doc.Set(pair.Key, pair.Value)
	}
	return json.Marshal(doc)
}
