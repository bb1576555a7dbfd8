package services

import (
	"context"

	"github.com/matbus-aora/aora-backend/internal/core/domain"
)

// ReceiptRenderer is the document-rendering collaborator. It is invoked only
// after a transition reaches a positive terminal state; a rendering failure
// must never affect the already-committed transition.
type ReceiptRenderer interface {
	// RenderReceipt produces a PDF receipt/certificate for the entity and
	// returns the stored document's path.
	RenderReceipt(ctx context.Context, entity *domain.WorkflowEntity) (string, error)
}
