package services

import (
	portsrepo "github.com/matbus-aora/aora-backend/internal/core/ports/repositories"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
	"github.com/matbus-aora/aora-backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, renderer portssvc.ReceiptRenderer) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Identity = NewIdentityService(repos.Actor, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiryDuration)
	container.Notifier = NewNotifierService()
	container.Renderer = renderer

	container.Engine = NewWorkflowEngineService(repos.Workflow, cfg.OrgSubjectRef)
	container.Entity = NewEntityService(repos.Workflow, repos.Ledger, cfg.OrgSubjectRef)
	container.Ledger = NewLedgerService(repos.Ledger)

	container.Dispatcher = NewDispatcherService(
		container.Identity,
		container.Engine,
		container.Notifier,
		container.Renderer,
	)

	return container
}
