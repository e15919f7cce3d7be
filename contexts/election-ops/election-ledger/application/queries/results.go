package queries

import (
	"context"

	"hustings/contexts/election-ops/election-ledger/domain/entities"
	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
	"hustings/contexts/election-ops/election-ledger/ports"
)

// ResultsQueries aggregates tallies. Reads never mutate registry state.
type ResultsQueries struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
}

// Results returns every candidate in registration order, not sorted by
// votes. Tie-breaking and presentation order are the caller's concern.
func (q ResultsQueries) Results(ctx context.Context, electionID uint64) ([]entities.Candidate, error) {
	if _, err := q.Elections.GetElection(ctx, electionID); err != nil {
		return nil, err
	}
	return q.Candidates.ListCandidates(ctx, electionID)
}

// Winner returns the winning candidate of a finalized election. On a tie
// the earliest-registered candidate wins: the scan keeps the first candidate
// whose count strictly exceeds the running maximum.
func (q ResultsQueries) Winner(ctx context.Context, electionID uint64) (entities.Candidate, error) {
	election, err := q.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.Candidate{}, err
	}
	if !election.Finalized {
		return entities.Candidate{}, domainerrors.ErrElectionNotFinal
	}
	candidates, err := q.Candidates.ListCandidates(ctx, electionID)
	if err != nil {
		return entities.Candidate{}, err
	}
	if len(candidates) == 0 {
		return entities.Candidate{}, domainerrors.ErrNoCandidates
	}

	winner := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.VoteCount > winner.VoteCount {
			winner = candidate
		}
	}
	return winner, nil
}
