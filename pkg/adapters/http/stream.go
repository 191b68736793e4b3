package http

import "sync"

// StreamManager fans world change notifications out to SSE subscribers.
// Each subscriber holds at most one pending notification.
type StreamManager struct {
	mu          sync.Mutex
	subscribers map[chan struct{}]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan struct{}]struct{}),
	}
}

// Subscribe returns a notification channel and a function that closes it.
func (sm *StreamManager) Subscribe() (<-chan struct{}, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan struct{}, 1)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Notify never blocks; it is called from world listeners with the world locked.
func (sm *StreamManager) Notify() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for ch := range sm.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (sm *StreamManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.subscribers)
}
