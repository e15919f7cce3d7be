package errors

import (
	"errors"
	"fmt"
)

// Taxonomy roots. Sentinels wrap exactly one root so callers classify
// failures with errors.Is without matching message text.
var (
	ErrAuthorization = errors.New("authorization denied")
	ErrValidation    = errors.New("invalid input")
)

var (
	ErrNotAdministrator = fmt.Errorf("%w: caller is not the administrator", ErrAuthorization)

	ErrInvalidAddress         = fmt.Errorf("%w: address is required", ErrValidation)
	ErrAdministratorProtected = fmt.Errorf("%w: administrator cannot lose commissioner status", ErrValidation)
)
