package queries

import (
	"context"
	"strings"

	"hustings/contexts/identity-access/access-control/domain/entities"
	"hustings/contexts/identity-access/access-control/ports"
)

// RoleQueries is the read side of role management. Its IsCommissioner
// method doubles as the role directory the election ledger consults.
type RoleQueries struct {
	Roles ports.RoleRepository
}

func (q RoleQueries) Administrator(ctx context.Context) (string, error) {
	return q.Roles.Administrator(ctx)
}

func (q RoleQueries) IsCommissioner(ctx context.Context, address string) (bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return false, nil
	}
	return q.Roles.IsCommissioner(ctx, address)
}

func (q RoleQueries) Commissioners(ctx context.Context) ([]entities.Commissioner, error) {
	return q.Roles.ListCommissioners(ctx)
}
