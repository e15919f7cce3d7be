package entities

import "time"

// Voter is a registration record keyed by address within one election.
// VotedFor is meaningful only while HasVoted is true.
type Voter struct {
	ElectionID   uint64
	Address      string
	Registered   bool
	HasVoted     bool
	VotedFor     uint64
	VotedAt      time.Time
	RegisteredAt time.Time
}
