// Package coordinates encodes a hub's address and node identity into a single
// string, "<address>;node:<node-id>", and parses it back.
package coordinates

import (
	"fmt"
	"regexp"

	"github.com/sakif/fakehub/internal/apperror"
)

// pattern is anchored on both ends so that trailing garbage or an upper-case
// digest is rejected instead of partially matched.
var pattern = regexp.MustCompile(`^([^;]+);node:([a-f0-9]+)$`)

// Coordinates is the decoded form of a coordinate string.
type Coordinates struct {
	Address string
	NodeID  string
}

// Format returns "<address>;node:<nodeID>".
func Format(address, nodeID string) string {
	return fmt.Sprintf("%s;node:%s", address, nodeID)
}

// String implements fmt.Stringer and round-trips through Parse.
func (c Coordinates) String() string {
	return Format(c.Address, c.NodeID)
}

// Parse decodes a coordinate string.
// It returns an apperror.ErrValidation error when s does not have the
// "<address>;node:<hex>" shape; it never returns a partially filled value.
func Parse(s string) (Coordinates, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinates{}, apperror.ValidationFailed("coordinates",
			fmt.Sprintf("malformed coordinates %q, want <address>;node:<hex>", s))
	}
	return Coordinates{Address: m[1], NodeID: m[2]}, nil
}

// MustParse is like Parse but panics on malformed input. Use it only for
// values the process produced itself.
func MustParse(s string) Coordinates {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}
