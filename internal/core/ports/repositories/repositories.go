package repositories

// RepositoryProvider bundles every repository implementation the service
// layer needs, so wiring happens in one place.
type RepositoryProvider struct {
	Workflow WorkflowRepository
	Ledger   LedgerRepository
	Actor    ActorRepository
}
