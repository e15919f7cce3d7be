package ports

import (
	"context"
	"encoding/json"
	"time"

	"hustings/contexts/election-ops/election-ledger/domain/entities"
)

// Clock abstracts the externally supplied time reading so tests and the
// execution environment control the voting window deterministically.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for outbox rows and trace ids.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// RoleDirectory is the ledger's view of the access-control context. The
// composition root wires the access-control query service behind it.
type RoleDirectory interface {
	IsCommissioner(ctx context.Context, address string) (bool, error)
}

// ElectionRepository owns election records. InsertElection assigns the
// next sequential id, starting at zero.
type ElectionRepository interface {
	InsertElection(ctx context.Context, election entities.Election) (uint64, error)
	GetElection(ctx context.Context, electionID uint64) (entities.Election, error)
	SaveElection(ctx context.Context, election entities.Election) error
	CountElections(ctx context.Context) (uint64, error)
}

// CandidateRepository owns per-election candidate records. InsertCandidate
// assigns the next sequential id within the candidate's election.
type CandidateRepository interface {
	InsertCandidate(ctx context.Context, candidate entities.Candidate) (uint64, error)
	GetCandidate(ctx context.Context, electionID uint64, candidateID uint64) (entities.Candidate, error)
	ListCandidates(ctx context.Context, electionID uint64) ([]entities.Candidate, error)
	SaveCandidate(ctx context.Context, candidate entities.Candidate) error
	CountCandidates(ctx context.Context, electionID uint64) (uint64, error)
}

// VoterRepository owns per-election voter rolls keyed by address.
// InsertVoter fails with the domain already-registered sentinel on a
// duplicate address.
type VoterRepository interface {
	InsertVoter(ctx context.Context, voter entities.Voter) error
	GetVoter(ctx context.Context, electionID uint64, address string) (entities.Voter, bool, error)
	CountVoters(ctx context.Context, electionID uint64) (uint64, error)
}

// BallotApplication identifies the state a single accepted ballot changes:
// the voter record, the candidate tally and the election total.
type BallotApplication struct {
	ElectionID  uint64
	CandidateID uint64
	Address     string
	VotedAt     time.Time
}

// BallotApplier commits a ballot as one indivisible unit. Implementations
// must guarantee that either all three records change or none do, and must
// re-check the has-voted flag inside their critical section or transaction.
type BallotApplier interface {
	ApplyBallot(ctx context.Context, application BallotApplication) error
}

// EventEnvelope is the canonical notification shape relayed to subscribers.
type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// OutboxMessage represents a pending relay row.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxWriter appends notification envelopes produced by commands.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher hands envelopes to the event bus adapter.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
