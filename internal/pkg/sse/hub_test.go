package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesOnlyThatEmployee(t *testing.T) {
	hub := NewHub()
	chA, cleanupA := hub.Subscribe("emp-a")
	defer cleanupA()
	chB, cleanupB := hub.Subscribe("emp-b")
	defer cleanupB()

	hub.Publish(Event{EmployeeID: "emp-a", Event: EventAttendanceUpdated, Data: "x"})

	got := <-chA
	assert.Equal(t, EventAttendanceUpdated, got.Event)
	select {
	case <-chB:
		t.Fatal("emp-b must not receive emp-a events")
	default:
	}
}

func TestHub_FullSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe("emp-a")
	defer cleanup()

	for i := 0; i < hub.buffer*3; i++ {
		hub.Publish(Event{EmployeeID: "emp-a", Event: EventAttendanceUpdated})
	}
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("emp-a")
	assert.Equal(t, 1, hub.SubscriberCount("emp-a"))

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("emp-a"))

	var nilHub *Hub
	assert.NotPanics(t, func() { nilHub.Publish(Event{EmployeeID: "emp-a"}) })
}
