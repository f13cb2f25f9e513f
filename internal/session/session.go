// Package session generates the process-unique, opaque identifier assigned
// to every Element at construction (spec §9, "Global session generator").
//
// The original engine uses a process-wide atomic counter formatted into a
// string (CGRAPH_GENERATE_SESSION). The spec notes "any UUID-grade
// unique-id source suffices" — jinterlante1206-AleutianLocal's go.mod
// already depends on github.com/google/uuid for exactly this purpose, so
// gridwork reuses it instead of hand-rolling a counter.
package session

import "github.com/google/uuid"

// New returns a fresh, process-unique session identifier.
func New() string {
	return uuid.NewString()
}
