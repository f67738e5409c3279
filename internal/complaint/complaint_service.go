// Package complaint implements the operator-facing complaint operations:
// listing, lookup, soft delete and backlog statistics.
package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
)

// ErrInvalidFilter is returned for malformed listing parameters.
var ErrInvalidFilter = errors.New("invalid filter")

const dateLayout = "2006-01-02"

// Service handles the business logic for complaints.
type Service struct {
	Storage   storage.Storage
	Publisher chathub.Publisher
	Now       func() time.Time
}

// NewService creates a new complaint service.
func NewService(s storage.Storage, p chathub.Publisher) *Service {
	return &Service{Storage: s, Publisher: p, Now: time.Now}
}

// List returns the complaints matching f.
func (s *Service) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	rows, err := s.Storage.ListComplaints(ctx, f)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Complaint{}
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Complaint, error) {
	return s.Storage.GetComplaint(ctx, id)
}

// Delete soft-deletes a complaint and tells the dashboards.
func (s *Service) Delete(ctx context.Context, id uint) (*models.Complaint, error) {
	c, err := s.Storage.MarkDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.Component("complaint").WithField("complaint_id", id).Info("Complaint deleted")
	if s.Publisher != nil {
		s.Publisher.Publish(ctx, models.EventUpdatedComplaint, c)
	}
	return c, nil
}

// Backlog counts pending complaints older than age.
func (s *Service) Backlog(ctx context.Context, age time.Duration) (models.BacklogStats, error) {
	n, err := s.Storage.CountPendingOlderThan(ctx, s.Now().Add(-age))
	if err != nil {
		return models.BacklogStats{}, err
	}
	return models.BacklogStats{Count: n, OlderThan: age.String()}, nil
}

// ParseFilter builds a filter from the dashboard query parameters.
// Dates use YYYY-MM-DD; empty values are ignored.
func ParseFilter(status, start, end, q string) (models.ComplaintFilter, error) {
	var f models.ComplaintFilter

	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		f.Status = models.ComplaintStatus(status)
		if !f.Status.Valid() {
			return f, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, status)
		}
	}

	var err error
	if f.DateStart, err = parseDate(start); err != nil {
		return f, err
	}
	if f.DateEnd, err = parseDate(end); err != nil {
		return f, err
	}
	if f.DateStart != nil && f.DateEnd != nil && f.DateEnd.Before(*f.DateStart) {
		return f, fmt.Errorf("%w: end date before start date", ErrInvalidFilter)
	}

	f.Search = strings.TrimSpace(q)
	return f, nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidFilter, s)
	}
	return &t, nil
}
