package chathub

import "complaintdesk/backend/internal/models"

// Client is a dashboard subscriber.
type Client interface {
	// GetClientID returns a unique identifier for the connection.
	GetClientID() string

	// GetSendChannel returns the channel the hub writes events to. The hub
	// never blocks on it: a full channel gets the client dropped.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's send channel. Called by the hub only.
	Close()
}
