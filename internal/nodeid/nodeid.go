// Package nodeid derives the node identity of a running hub.
//
// A node identity answers "which emulator process produced this resource".
// It is computed from the hub's start time, so two processes started at
// different instants report different identities, while recomputing from the
// same instant always yields the same value.
package nodeid

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Derive returns the 32-character lowercase hex node identity for started.
//
// The digest is taken over Canonical(started), never over a locale- or
// platform-dependent rendering, so the result is stable across machines.
func Derive(started time.Time) string {
	sum := md5.Sum([]byte(Canonical(started)))
	return hex.EncodeToString(sum[:])
}

// Canonical renders t in UTC as "2006-01-02 15:04:05[.fraction] UTC".
//
// FRACTIONAL SECONDS:
// The fraction is omitted when it is zero and otherwise printed with the
// shortest of 3, 6 or 9 digits that represents it exactly:
//
//	09:10:11            (0ns)
//	09:10:11.120        (120ms)
//	09:10:11.000120     (120µs)
//	09:10:11.000000120  (120ns)
func Canonical(t time.Time) string {
	t = t.UTC()
	base := t.Format("2006-01-02 15:04:05")

	nanos := t.Nanosecond()
	switch {
	case nanos == 0:
		return base + " UTC"
	case nanos%int(time.Millisecond) == 0:
		return fmt.Sprintf("%s.%03d UTC", base, nanos/int(time.Millisecond))
	case nanos%int(time.Microsecond) == 0:
		return fmt.Sprintf("%s.%06d UTC", base, nanos/int(time.Microsecond))
	default:
		return fmt.Sprintf("%s.%09d UTC", base, nanos)
	}
}
