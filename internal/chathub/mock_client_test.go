package chathub_test

import (
	"sync"

	"complaintdesk/backend/internal/models"
)

type MockClient struct {
	clientID    string
	RecvChannel chan models.Event

	mu     sync.Mutex
	closed bool
}

func newMockClient(clientID string, buffer int) *MockClient {
	return &MockClient{
		clientID:    clientID,
		RecvChannel: make(chan models.Event, buffer),
	}
}

func (c *MockClient) GetClientID() string {
	return c.clientID
}

func (c *MockClient) GetSendChannel() chan<- models.Event {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
