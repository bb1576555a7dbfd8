package services

import "github.com/matbus-aora/aora-backend/internal/core/domain"

// NotifierSvc is the notification collaborator. Publish is fire-and-forget:
// it happens after the transition committed and never blocks the caller on a
// slow subscriber.
type NotifierSvc interface {
	// Subscribe registers a listener and returns its event channel together
	// with a cancel function that must be called when the connection closes.
	Subscribe() (<-chan domain.TransitionEvent, func())
	// Publish delivers an event to every live subscriber, dropping it for
	// subscribers whose buffers are full.
	Publish(event domain.TransitionEvent)
	// SubscriberCount reports the number of live subscribers.
	SubscriberCount() int
}
