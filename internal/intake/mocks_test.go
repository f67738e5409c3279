package intake_test

import (
	"context"

	"complaintdesk/backend/internal/llm"
	"complaintdesk/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, chatID string, msg models.OutboundMessage) error {
	return m.Called(ctx, chatID, msg).Error(0)
}

func (m *MockSender) SendTyping(ctx context.Context, chatID string) error {
	return m.Called(ctx, chatID).Error(0)
}

// plainSender cannot show a typing indicator.
type plainSender struct {
	sent []models.OutboundMessage
}

func (s *plainSender) Send(_ context.Context, _ string, msg models.OutboundMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateComplaint(ctx context.Context, in models.NewComplaint) (*models.Complaint, error) {
	args := m.Called(ctx, in)
	if fn, ok := args.Get(0).(func(context.Context, models.NewComplaint) *models.Complaint); ok {
		return fn(ctx, in), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, name string, payload any) {
	m.Called(ctx, name, payload)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, conversationID, text string) string {
	return m.Called(ctx, conversationID, text).String(0)
}

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Complete(ctx context.Context, prompt string) (llm.Response, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(llm.Response), args.Error(1)
}
