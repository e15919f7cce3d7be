// Package electionledger implements the election ledger inside the
// election-ops context.
//
// The module owns the election lifecycle (create/end-early/finalize),
// candidate and voter registration, ballot casting with one-vote-per-voter
// enforcement, result/winner reads, and ledger event production through an
// outbox-backed relay. Business rules live in the application and domain
// layers; infrastructure stays behind ports and adapters.
package electionledger
