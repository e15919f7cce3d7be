package commands

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"hustings/contexts/election-ops/election-ledger/ports"
)

// Notification types emitted to subscribers on successful mutations.
const (
	EventElectionCreated       = "election.created"
	EventElectionFinalized     = "election.finalized"
	EventElectionStatusChanged = "election.status_changed"
	EventCandidateRegistered   = "candidate.registered"
	EventVoterRegistered       = "voter.registered"
	EventVoteRecorded          = "vote.recorded"
)

const sourceService = "election-ledger"

// appendLedgerEvent writes a notification envelope to the outbox. Events are
// partitioned by election id for stable ordering on election-scoped
// consumers. Outbox is optional for pure read/test wiring, so nil is a no-op.
func appendLedgerEvent(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idgen ports.IDGenerator,
	eventType string,
	electionID uint64,
	occurredAt time.Time,
	data map[string]any,
) error {
	if outbox == nil {
		return nil
	}
	eventID, err := idgen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    sourceService,
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "election_id",
		PartitionKey:     strconv.FormatUint(electionID, 10),
		Data:             payload,
	})
}
