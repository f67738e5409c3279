package chathub_test

import (
	"context"

	"complaintdesk/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockLister is a mock of chathub.ComplaintLister.
type MockLister struct {
	mock.Mock
}

func (m *MockLister) ListComplaints(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}
