// Package idgen provides the clock and identifier collaborators the core
// components depend on, plus their concrete production implementations.
package idgen

import (
	"time"

	"github.com/google/uuid"
)

// ID is a process-unique 128-bit identifier, assigned to every BufferedEntry
// and used as the request/response id in the correlation tracker.
type ID [16]byte

// String renders the id in canonical UUID form, as used in logs and
// exported files.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero value (never assigned by New).
func (id ID) IsZero() bool {
	return id == ID{}
}

// Source assigns fresh, collision-negligible 128-bit identifiers.
type Source interface {
	NewID() ID
}

// UUIDSource generates RFC 4122 version 4 UUIDs via google/uuid's
// process-global CSPRNG-backed generator.
type UUIDSource struct{}

// NewID returns a fresh random identifier.
func (UUIDSource) NewID() ID {
	return ID(uuid.New())
}

// Clock supplies monotonic-enough UTC instants for TTL and receipt-timestamp
// bookkeeping. It is a collaborator so tests can control the passage of
// time deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
