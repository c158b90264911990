package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordEvent tells the export worker that a ledger document changed. It
// carries only the address of the change; the worker fetches the document
// itself from storage (soft-deleted documents stay fetchable for this).
type RecordEvent struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRecordEvent(collection, id, action string) *RecordEvent {
	return &RecordEvent{
		Collection: collection,
		ID:         id,
		Action:     action,
		Timestamp:  time.Now(),
	}
}

func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
