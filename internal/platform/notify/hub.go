package notify

import (
	"log/slog"
	"sync"

	"reelfund/internal/shared/events"
)

// Hub fans realtime notifications out to connected SSE subscribers. Both
// modules publish through their Notifier port; the HTTP layer attaches one
// subscriber per open stream.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	logger      *slog.Logger
}

// Subscriber is one open event stream. Personal events are filtered by the
// user id the stream was opened with; broadcasts reach everyone.
type Subscriber struct {
	UserID string
	C      chan events.Notification
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		logger:      logger,
	}
}

func (h *Hub) Subscribe(userID string) *Subscriber {
	sub := &Subscriber{
		UserID: userID,
		C:      make(chan events.Notification, 64),
	}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	h.mu.Unlock()
}

func (h *Hub) EmitToUser(userID string, eventType string, data any) {
	h.deliver(events.Notification{Type: eventType, UserID: userID, Data: data}, false)
}

func (h *Hub) Broadcast(eventType string, data any) {
	h.deliver(events.Notification{Type: eventType, Data: data}, true)
}

func (h *Hub) deliver(notification events.Notification, broadcast bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		if !broadcast && sub.UserID != notification.UserID {
			continue
		}
		select {
		case sub.C <- notification:
		default:
			if h.logger != nil {
				h.logger.Warn("dropping notification for slow stream",
					"event", "notify_drop",
					"module", "internal/platform/notify",
					"layer", "platform",
					"event_type", notification.Type,
					"user_id", sub.UserID,
				)
			}
		}
	}
}
