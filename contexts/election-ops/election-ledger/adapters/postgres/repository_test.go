package postgresadapter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	domainerrors "hustings/contexts/election-ops/election-ledger/domain/errors"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	if !isUniqueViolation(unique) {
		t.Fatalf("expected code 23505 to be a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("create row: %w", unique)) {
		t.Fatalf("expected wrapped unique violation to be detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("serialization failure is not a unique violation")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Fatalf("plain error is not a unique violation")
	}
}

func TestSequenceConflictClassification(t *testing.T) {
	if !errors.Is(domainerrors.ErrSequenceConflict, domainerrors.ErrState) {
		t.Fatalf("sequence conflict should classify as a state error")
	}
	if errors.Is(domainerrors.ErrSequenceConflict, domainerrors.ErrEventConflict) {
		t.Fatalf("sequence conflict must be distinct from an outbox event conflict")
	}
}
