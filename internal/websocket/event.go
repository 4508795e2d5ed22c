package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeUpdated   EventType = "updated"
	EventTypeDeleted   EventType = "deleted"
	EventTypeComputed  EventType = "computed"
	EventTypeGenerated EventType = "generated"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeUnit       EntityType = "unit"
	EntityTypeCharge     EntityType = "charge"
	EntityTypeSettlement EntityType = "settlement"
	EntityTypeStatement  EntityType = "statement"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "charge.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "charge"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// UnitCreated creates a unit.created event
func UnitCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeUnit, payload)
}

// UnitUpdated creates a unit.updated event
func UnitUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeUnit, payload)
}

// UnitDeleted creates a unit.deleted event
func UnitDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeUnit, payload)
}

// ChargeCreated creates a charge.created event
func ChargeCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCharge, payload)
}

// ChargeUpdated creates a charge.updated event
func ChargeUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCharge, payload)
}

// ChargeDeleted creates a charge.deleted event
func ChargeDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCharge, payload)
}

// SettlementComputed creates a settlement.computed event
func SettlementComputed(payload interface{}) Event {
	return NewEvent(EventTypeComputed, EntityTypeSettlement, payload)
}

// StatementGenerated creates a statement.generated event
func StatementGenerated(payload interface{}) Event {
	return NewEvent(EventTypeGenerated, EntityTypeStatement, payload)
}
