package entities

import "time"

// Election is a named, time-windowed voting event. IDs are assigned
// sequentially from zero by the repository adapter and never reused.
type Election struct {
	ID         uint64
	Name       string
	StartTime  time.Time
	EndTime    time.Time
	Active     bool
	Finalized  bool
	Creator    string
	TotalVotes uint64
	CreatedAt  time.Time
}

// VotingOpen reports whether the election accepts ballots at the given
// instant. The voting window is half-open: [StartTime, EndTime).
func (e Election) VotingOpen(now time.Time) bool {
	if !e.Active || e.Finalized {
		return false
	}
	return !now.Before(e.StartTime) && now.Before(e.EndTime)
}

// Ended reports whether the scheduled end time has passed. Finalization
// requires this regardless of an earlier EndVotingEarly.
func (e Election) Ended(now time.Time) bool {
	return !now.Before(e.EndTime)
}
