package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderPlaced       EventType = "order.placed"
	EventTypeOrderUnreconciled EventType = "order.unreconciled"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "checkout.order.events"
	TopicDeadLetterQueue = "checkout.dlq" // Dead Letter Queue для failed messages
)

// PlacementEvent представляет событие размещения заказа
type PlacementEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewPlacementEvent создает новое событие размещения заказа
func NewPlacementEvent(eventType EventType, orderID, customerID string, metadata map[string]interface{}) *PlacementEvent {
	return &PlacementEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}
