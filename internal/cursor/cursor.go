// Package cursor composes absolute resource URLs from a hub address.
//
// Every URL the emulator hands out (user self links, followers links, the
// root meta document) is "<address>/<fragment>". Fragments may carry
// RFC 6570 template suffixes such as "{/other_user}"; those are kept
// verbatim, mirroring the real platform which returns templates rather than
// resolved links for some fields.
package cursor

import "strings"

// Cursor points at the base address of a hub, e.g. "localhost:3000" or
// "http://localhost:3000".
type Cursor struct {
	Base string
}

// New returns a Cursor for base.
func New(base string) Cursor {
	return Cursor{Base: base}
}

// String returns the base address without trailing slashes.
func (c Cursor) String() string {
	return strings.TrimRight(c.Base, "/")
}

// Join returns "<base>/<fragment>" with exactly one separating slash.
// An empty fragment yields the base followed by a single slash.
func (c Cursor) Join(fragment string) string {
	return c.String() + "/" + strings.TrimLeft(fragment, "/")
}

// Joinf is Join over the slash-joined parts, e.g.
// Joinf("users", "jeff", "repos") → "<base>/users/jeff/repos".
func (c Cursor) Joinf(parts ...string) string {
	return c.Join(strings.Join(parts, "/"))
}
