package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/matbus-aora/aora-backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	ledgerRepo := newPgxLedgerRepository(dbPool)
	workflowRepo := newPgxWorkflowRepository(dbPool, ledgerRepo)
	actorRepo := newPgxActorRepository(dbPool)

	return portsrepo.RepositoryProvider{
		Workflow: workflowRepo,
		Ledger:   ledgerRepo,
		Actor:    actorRepo,
	}
}
