package amqp

import (
	"encoding/json"
	"time"
)

// StatementJobMessage asks the statement worker to generate and archive the
// settlement statement of a condominium for a billing period. It carries
// only the identifiers; the worker recomputes the settlement from the
// database so the rendered document always reflects current data.
type StatementJobMessage struct {
	CondominiumID int32     `json:"condominiumId"`
	PeriodStart   time.Time `json:"periodStart"`
	PeriodEnd     time.Time `json:"periodEnd"`
	RequestedBy   string    `json:"requestedBy,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewStatementJobMessage creates a new statement job message
func NewStatementJobMessage(condominiumID int32, periodStart, periodEnd time.Time, requestedBy string) *StatementJobMessage {
	return &StatementJobMessage{
		CondominiumID: condominiumID,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		RequestedBy:   requestedBy,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *StatementJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StatementJobMessageFromJSON creates a message from JSON bytes
func StatementJobMessageFromJSON(data []byte) (*StatementJobMessage, error) {
	var msg StatementJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
