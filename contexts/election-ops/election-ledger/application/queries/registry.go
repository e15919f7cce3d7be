package queries

import (
	"context"
	"strings"

	"hustings/contexts/election-ops/election-ledger/domain/entities"
	"hustings/contexts/election-ops/election-ledger/ports"
)

// RegistryQueries exposes read-only lookups over the three registries.
type RegistryQueries struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Voters     ports.VoterRepository
}

func (q RegistryQueries) Election(ctx context.Context, electionID uint64) (entities.Election, error) {
	return q.Elections.GetElection(ctx, electionID)
}

func (q RegistryQueries) Candidate(ctx context.Context, electionID uint64, candidateID uint64) (entities.Candidate, error) {
	if _, err := q.Elections.GetElection(ctx, electionID); err != nil {
		return entities.Candidate{}, err
	}
	return q.Candidates.GetCandidate(ctx, electionID, candidateID)
}

// AllCandidates returns the election's full roster in registration order.
func (q RegistryQueries) AllCandidates(ctx context.Context, electionID uint64) ([]entities.Candidate, error) {
	if _, err := q.Elections.GetElection(ctx, electionID); err != nil {
		return nil, err
	}
	return q.Candidates.ListCandidates(ctx, electionID)
}

// Voter returns the registration record for an address. An address that was
// never registered yields a default unregistered record rather than an
// error; callers must check the Registered flag.
func (q RegistryQueries) Voter(ctx context.Context, electionID uint64, address string) (entities.Voter, error) {
	if _, err := q.Elections.GetElection(ctx, electionID); err != nil {
		return entities.Voter{}, err
	}
	address = strings.TrimSpace(address)
	voter, found, err := q.Voters.GetVoter(ctx, electionID, address)
	if err != nil {
		return entities.Voter{}, err
	}
	if !found {
		return entities.Voter{ElectionID: electionID, Address: address}, nil
	}
	return voter, nil
}

func (q RegistryQueries) CandidatesCount(ctx context.Context, electionID uint64) (uint64, error) {
	if _, err := q.Elections.GetElection(ctx, electionID); err != nil {
		return 0, err
	}
	return q.Candidates.CountCandidates(ctx, electionID)
}

func (q RegistryQueries) RegisteredVotersCount(ctx context.Context, electionID uint64) (uint64, error) {
	if _, err := q.Elections.GetElection(ctx, electionID); err != nil {
		return 0, err
	}
	return q.Voters.CountVoters(ctx, electionID)
}
