package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventNodeAdded           EventType = "node_added"
	EventNodeUpdated         EventType = "node_updated"
	EventNodeRemoved         EventType = "node_removed"
	EventNodeMoved           EventType = "node_moved"
	EventConnectionChanged   EventType = "connection_changed"
	EventHistoryChanged      EventType = "history_changed"
	EventCanvasLoaded        EventType = "canvas_loaded"
	EventValidationCompleted EventType = "validation_completed"
	EventFindingFixed        EventType = "finding_fixed"
	EventDesignSaved         EventType = "design_saved"
	EventDesignDeployed      EventType = "design_deployed"
	EventDepartmentUpdated   EventType = "department_updated"
	EventDepartmentSelected  EventType = "department_selected"
	EventHostCreated         EventType = "host_created"
	EventHostUpdated         EventType = "host_updated"
	EventHostDeleted         EventType = "host_deleted"
	EventTestCompleted       EventType = "test_completed"
	EventTestsCleared        EventType = "tests_cleared"
	EventMetricsUpdated      EventType = "metrics_updated"
	EventConnectionStatus    EventType = "connection_status"
	EventConfigReloaded      EventType = "config_reloaded"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
