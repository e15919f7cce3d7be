package entities

import "time"

// Candidate is scoped to one election. IDs are sequential from zero per
// election and survive deactivation, preserving the audit record.
type Candidate struct {
	ElectionID   uint64
	ID           uint64
	Name         string
	VoteCount    uint64
	Active       bool
	RegisteredAt time.Time
}
