package ports

import (
	"context"
	"time"

	"hustings/contexts/identity-access/access-control/domain/entities"
)

// Clock abstracts time readings for grant timestamps.
type Clock interface {
	Now() time.Time
}

// RoleRepository owns the administrator record and the commissioner set.
// AddCommissioner is idempotent: adding an address that already holds a
// grant leaves the existing grant untouched.
type RoleRepository interface {
	Administrator(ctx context.Context) (string, error)
	SetAdministrator(ctx context.Context, address string) error
	IsCommissioner(ctx context.Context, address string) (bool, error)
	AddCommissioner(ctx context.Context, grant entities.Commissioner) error
	RemoveCommissioner(ctx context.Context, address string) error
	ListCommissioners(ctx context.Context) ([]entities.Commissioner, error)
}
