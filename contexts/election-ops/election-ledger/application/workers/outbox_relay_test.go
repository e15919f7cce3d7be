package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"hustings/contexts/election-ops/election-ledger/adapters/memory"
	"hustings/contexts/election-ops/election-ledger/application/workers"
	"hustings/contexts/election-ops/election-ledger/ports"
)

type capturingPublisher struct {
	topics []string
	events []ports.EventEnvelope
	fail   bool
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.fail {
		return errors.New("bus unavailable")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, id string, eventType string, at time.Time) {
	t.Helper()
	if err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
		EventID:    id,
		EventType:  eventType,
		OccurredAt: at,
		Data:       json.RawMessage(`{"election_id":0}`),
	}); err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}
}

func TestRelayPublishesAndMarksRows(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	appendEnvelope(t, store, "evt-1", "election.created", base)
	appendEnvelope(t, store, "evt-2", "vote.recorded", base.Add(time.Second))

	publisher := &capturingPublisher{}
	relay := workers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.events))
	}
	if publisher.topics[0] != "election.created" || publisher.topics[1] != "vote.recorded" {
		t.Fatalf("expected event-type topics in creation order, got %v", publisher.topics)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected drained outbox, got %d pending", len(pending))
	}

	// A second cycle with nothing pending is a no-op.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected no additional publishes, got %d", len(publisher.events))
	}
}

func TestRelayKeepsRowsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	appendEnvelope(t, store, "evt-1", "election.created", time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC))

	publisher := &capturingPublisher{fail: true}
	relay := workers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected relay to surface publish failure")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row to stay pending after publish failure, got %d", len(pending))
	}
}
