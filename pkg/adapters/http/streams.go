package http

import (
	"log/slog"
	"sync"
)

// StreamManager handles active SSE connections, keyed by list namespace.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(namespace string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[namespace]; !ok {
		sm.subscribers[namespace] = make(map[chan<- string]struct{})
	}
	sm.subscribers[namespace][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[namespace]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, namespace)
			}
		}
	}
}

// Subscribers returns the number of open streams for namespace.
func (sm *StreamManager) Subscribers(namespace string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[namespace])
}

func (sm *StreamManager) Broadcast(namespace string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "namespace", namespace, "payload_size", len(msg))

	for ch := range sm.subscribers[namespace] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "namespace", namespace)
		}
	}
}
