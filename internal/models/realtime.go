package models

import "encoding/json"

// Dashboard event names.
const (
	EventNewComplaint     = "new_complaint"
	EventUpdatedComplaint = "updated_complaint"
	EventComplaintsList   = "complaints_list"
	EventPendingBacklog   = "pending_backlog"
)

// Event is the envelope pushed to dashboard subscribers.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"data"`
}

// NewEvent marshals payload into an Event.
func NewEvent(name string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Payload: raw}, nil
}

// BacklogStats is the payload of EventPendingBacklog.
type BacklogStats struct {
	Count     int64  `json:"count"`
	OlderThan string `json:"older_than"`
}
