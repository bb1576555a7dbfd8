package services

import (
	"sync"

	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portssvc "github.com/matbus-aora/aora-backend/internal/core/ports/services"
)

// subscriberBuffer is how many events a slow subscriber may fall behind
// before further events are dropped for it.
const subscriberBuffer = 16

// NotifierService fans transition events out to registered subscribers (the
// SSE handler). Publish never blocks: a subscriber whose buffer is full
// simply misses the event.
type NotifierService struct {
	mu          sync.Mutex
	subscribers map[int]chan domain.TransitionEvent
	nextID      int
}

func NewNotifierService() *NotifierService {
	return &NotifierService{
		subscribers: make(map[int]chan domain.TransitionEvent),
	}
}

// Ensure NotifierService implements portssvc.NotifierSvc
var _ portssvc.NotifierSvc = (*NotifierService)(nil)

// Subscribe registers a listener. The returned cancel function must be called
// when the connection closes; it is safe to call more than once.
func (n *NotifierService) Subscribe() (<-chan domain.TransitionEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan domain.TransitionEvent, subscriberBuffer)
	n.subscribers[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if existing, ok := n.subscribers[id]; ok {
			delete(n.subscribers, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every live subscriber without blocking.
func (n *NotifierService) Publish(event domain.TransitionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; drop rather than block the publisher.
		}
	}
}

// SubscriberCount reports the number of live subscribers.
func (n *NotifierService) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subscribers)
}
