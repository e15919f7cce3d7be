package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"hustings/contexts/election-ops/election-ledger/domain/entities"
	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
	"hustings/contexts/election-ops/election-ledger/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is an in-memory adapter implementing every ledger port. The single
// store mutex provides the at-most-one-writer guarantee the core expects
// from its execution environment; ApplyBallot commits inside one critical
// section so no partial vote is ever observable.
type Store struct {
	mu sync.RWMutex

	elections  []entities.Election
	candidates map[uint64][]entities.Candidate
	voters     map[uint64]map[string]entities.Voter
	outbox     map[string]outboxRecord
}

// NewStore builds an empty in-memory adapter for tests and local wiring.
func NewStore() *Store {
	return &Store{
		candidates: make(map[uint64][]entities.Candidate),
		voters:     make(map[uint64]map[string]entities.Voter),
		outbox:     make(map[string]outboxRecord),
	}
}

func (s *Store) InsertElection(_ context.Context, election entities.Election) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	election.ID = uint64(len(s.elections))
	s.elections = append(s.elections, election)
	return election.ID, nil
}

func (s *Store) GetElection(_ context.Context, electionID uint64) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if electionID >= uint64(len(s.elections)) {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return s.elections[electionID], nil
}

func (s *Store) SaveElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if election.ID >= uint64(len(s.elections)) {
		return domainerrors.ErrElectionNotFound
	}
	s.elections[election.ID] = election
	return nil
}

func (s *Store) CountElections(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.elections)), nil
}

func (s *Store) InsertCandidate(_ context.Context, candidate entities.Candidate) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if candidate.ElectionID >= uint64(len(s.elections)) {
		return 0, domainerrors.ErrElectionNotFound
	}
	roster := s.candidates[candidate.ElectionID]
	candidate.ID = uint64(len(roster))
	s.candidates[candidate.ElectionID] = append(roster, candidate)
	return candidate.ID, nil
}

func (s *Store) GetCandidate(_ context.Context, electionID uint64, candidateID uint64) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if electionID >= uint64(len(s.elections)) {
		return entities.Candidate{}, domainerrors.ErrElectionNotFound
	}
	roster := s.candidates[electionID]
	if candidateID >= uint64(len(roster)) {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return roster[candidateID], nil
}

// ListCandidates returns the roster in registration (id) order.
func (s *Store) ListCandidates(_ context.Context, electionID uint64) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if electionID >= uint64(len(s.elections)) {
		return nil, domainerrors.ErrElectionNotFound
	}
	return append([]entities.Candidate(nil), s.candidates[electionID]...), nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roster := s.candidates[candidate.ElectionID]
	if candidate.ID >= uint64(len(roster)) {
		return domainerrors.ErrCandidateNotFound
	}
	roster[candidate.ID] = candidate
	return nil
}

func (s *Store) CountCandidates(_ context.Context, electionID uint64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if electionID >= uint64(len(s.elections)) {
		return 0, domainerrors.ErrElectionNotFound
	}
	return uint64(len(s.candidates[electionID])), nil
}

func (s *Store) InsertVoter(_ context.Context, voter entities.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if voter.ElectionID >= uint64(len(s.elections)) {
		return domainerrors.ErrElectionNotFound
	}
	roll := s.voters[voter.ElectionID]
	if roll == nil {
		roll = make(map[string]entities.Voter)
		s.voters[voter.ElectionID] = roll
	}
	address := strings.TrimSpace(voter.Address)
	if _, ok := roll[address]; ok {
		return domainerrors.ErrVoterAlreadyExists
	}
	voter.Address = address
	roll[address] = voter
	return nil
}

func (s *Store) GetVoter(_ context.Context, electionID uint64, address string) (entities.Voter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	voter, ok := s.voters[electionID][strings.TrimSpace(address)]
	if !ok {
		return entities.Voter{}, false, nil
	}
	return voter, true, nil
}

func (s *Store) CountVoters(_ context.Context, electionID uint64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.voters[electionID])), nil
}

// ApplyBallot commits the voter, candidate and election changes of one
// accepted vote under a single lock acquisition. The has-voted flag is
// re-checked here so two racing ballots can never both commit.
func (s *Store) ApplyBallot(_ context.Context, application ports.BallotApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if application.ElectionID >= uint64(len(s.elections)) {
		return domainerrors.ErrElectionNotFound
	}
	roll := s.voters[application.ElectionID]
	voter, ok := roll[strings.TrimSpace(application.Address)]
	if !ok || !voter.Registered {
		return domainerrors.ErrVoterNotRegistered
	}
	if voter.HasVoted {
		return domainerrors.ErrAlreadyVoted
	}
	roster := s.candidates[application.ElectionID]
	if application.CandidateID >= uint64(len(roster)) {
		return domainerrors.ErrCandidateNotFound
	}

	voter.HasVoted = true
	voter.VotedFor = application.CandidateID
	voter.VotedAt = application.VotedAt
	roll[voter.Address] = voter
	roster[application.CandidateID].VoteCount++
	s.elections[application.ElectionID].TotalVotes++
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrEventConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrOutboxNotFound
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.ElectionRepository  = (*Store)(nil)
	_ ports.CandidateRepository = (*Store)(nil)
	_ ports.VoterRepository     = (*Store)(nil)
	_ ports.BallotApplier       = (*Store)(nil)
	_ ports.OutboxWriter        = (*Store)(nil)
	_ ports.OutboxRepository    = (*Store)(nil)
	_ ports.IDGenerator         = (*Store)(nil)
)
