package sse

import (
	"sync"
)

// Event types published on attendance transitions.
const (
	EventAttendanceUpdated    = "attendance.updated"
	EventAttendanceAutoClosed = "attendance.auto_closed"
)

// Event is pushed to every subscriber of an employee.
type Event struct {
	EmployeeID string
	Event      string
	Data       interface{}
}

// Hub fans attendance events out to per-employee subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	buffer      int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		buffer:      10,
	}
}

// Subscribe registers a listener for employeeID and returns its channel and
// the cleanup func that must be called when the listener goes away.
func (h *Hub) Subscribe(employeeID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.subscribers[employeeID] == nil {
		h.subscribers[employeeID] = make(map[chan Event]struct{})
	}
	h.subscribers[employeeID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[employeeID], ch)
			close(ch)
			if len(h.subscribers[employeeID]) == 0 {
				delete(h.subscribers, employeeID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers event to the employee's subscribers. Slow subscribers
// miss events rather than block the publisher.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[event.EmployeeID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of live subscribers for an employee.
func (h *Hub) SubscriberCount(employeeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[employeeID])
}
