package errors

import (
	"errors"
	"fmt"
)

// Taxonomy roots. Every sentinel below wraps exactly one root so callers
// can classify failures with errors.Is without matching message text.
var (
	ErrAuthorization = errors.New("authorization denied")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("invalid input")
	ErrState         = errors.New("state conflict")
)

var (
	ErrNotCommissioner    = fmt.Errorf("%w: caller is not a commissioner", ErrAuthorization)
	ErrNotElectionManager = fmt.Errorf("%w: caller is neither a commissioner nor the election creator", ErrAuthorization)

	ErrElectionNotFound  = fmt.Errorf("%w: election does not exist", ErrNotFound)
	ErrCandidateNotFound = fmt.Errorf("%w: candidate does not exist", ErrNotFound)
	ErrNoCandidates      = fmt.Errorf("%w: election has no candidates", ErrNotFound)
	ErrOutboxNotFound    = fmt.Errorf("%w: outbox row does not exist", ErrNotFound)

	ErrEmptyName        = fmt.Errorf("%w: name must not be empty", ErrValidation)
	ErrInvalidSchedule  = fmt.Errorf("%w: start time must precede end time", ErrValidation)
	ErrScheduleInPast   = fmt.Errorf("%w: start time must not be in the past", ErrValidation)
	ErrInvalidAddress   = fmt.Errorf("%w: address is required", ErrValidation)
	ErrInvalidCandidate = fmt.Errorf("%w: invalid candidate", ErrValidation)

	ErrElectionFinalized   = fmt.Errorf("%w: election is finalized", ErrState)
	ErrElectionNotActive   = fmt.Errorf("%w: election is not active", ErrState)
	ErrElectionNotEnded    = fmt.Errorf("%w: election has not reached its scheduled end", ErrState)
	ErrElectionNotFinal    = fmt.Errorf("%w: election is not finalized", ErrState)
	ErrNotInVotingPeriod   = fmt.Errorf("%w: not in voting period", ErrState)
	ErrVoterNotRegistered  = fmt.Errorf("%w: not registered", ErrState)
	ErrVoterAlreadyExists  = fmt.Errorf("%w: already registered", ErrState)
	ErrAlreadyVoted        = fmt.Errorf("%w: already voted", ErrState)
	ErrCandidateInactive   = fmt.Errorf("%w: candidate inactive", ErrState)
	ErrEventConflict       = fmt.Errorf("%w: conflicting outbox event", ErrState)
	ErrSequenceConflict    = fmt.Errorf("%w: concurrent id assignment", ErrState)
)
