package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/triage"

	"gorm.io/gorm"
)

// Storage is the complaint persistence layer.
type Storage interface {
	CreateComplaint(ctx context.Context, in models.NewComplaint) (*models.Complaint, error)
	ListComplaints(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error)
	GetComplaint(ctx context.Context, id uint) (*models.Complaint, error)
	MarkReplied(ctx context.Context, id uint, replyText, replyMedia *string, from ...models.ComplaintStatus) (*models.Complaint, error)
	MarkDeleted(ctx context.Context, id uint) (*models.Complaint, error)
	CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	DB *gorm.DB
	// Now is the clock used for created_at and replied_at. Values are stored in UTC.
	Now func() time.Time
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{
		DB:  db,
		Now: time.Now,
	}
}

func (s *Service) now() time.Time {
	return s.Now().UTC()
}

// CreateComplaint inserts a new pending complaint and returns the stored row.
func (s *Service) CreateComplaint(ctx context.Context, in models.NewComplaint) (*models.Complaint, error) {
	complaint := &models.Complaint{
		ChatID:          in.ChatID,
		SenderID:        in.SenderID,
		SenderUsername:  in.SenderUsername,
		Message:         in.Message,
		ModelReply:      in.ModelReply,
		MatchedKeywords: in.MatchedKeywords,
		Status:          models.StatusPending,
		CreatedAt:       s.now(),
	}

	if err := s.DB.WithContext(ctx).Create(complaint).Error; err != nil {
		logger.Component("storage").WithError(err).WithField("chat_id", in.ChatID).Error("Failed to save complaint")
		return nil, &models.PersistenceError{Op: "create complaint", Err: err}
	}
	return complaint, nil
}

// ListComplaints returns non-deleted complaints newest first. Rows whose message
// exceeds the dense length ceiling are dropped after the query.
func (s *Service) ListComplaints(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	limit := f.Limit
	if limit <= 0 || limit > config.ListLimit {
		limit = config.ListLimit
	}

	q := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("status <> ?", models.StatusDeleted)

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.DateStart != nil {
		q = q.Where("created_at >= ?", startOfDay(*f.DateStart))
	}
	if f.DateEnd != nil {
		q = q.Where("created_at < ?", startOfDay(*f.DateEnd).Add(24*time.Hour))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(
			`LOWER(message) LIKE ? ESCAPE '\' OR LOWER(model_reply) LIKE ? ESCAPE '\' OR LOWER(sender_username) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}

	var rows []models.Complaint
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, &models.PersistenceError{Op: "list complaints", Err: err}
	}

	out := rows[:0]
	for _, c := range rows {
		if triage.WithinDenseLimit(c.Message, config.MaxDenseLength) {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetComplaint returns models.ErrNotFound when id does not exist.
func (s *Service) GetComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, mapError("get complaint", id, err)
	}
	return &c, nil
}

// MarkReplied moves the complaint to done and records the reply. The row must
// currently be in one of from; with no from, any state but deleted is accepted
// and a done complaint has its reply fields overwritten. A complaint in another
// state yields models.ErrNotPending.
func (s *Service) MarkReplied(ctx context.Context, id uint, replyText, replyMedia *string, from ...models.ComplaintStatus) (*models.Complaint, error) {
	if len(from) == 0 {
		from = []models.ComplaintStatus{models.StatusPending, models.StatusDone}
	}
	return s.transition(ctx, "mark replied", id, from, map[string]any{
		"status":      models.StatusDone,
		"replied_at":  s.now(),
		"reply_text":  replyText,
		"reply_media": replyMedia,
	})
}

// MarkDeleted soft-deletes the complaint from any state.
func (s *Service) MarkDeleted(ctx context.Context, id uint) (*models.Complaint, error) {
	return s.transition(ctx, "mark deleted", id, nil, map[string]any{
		"status": models.StatusDeleted,
	})
}

// transition applies updates to the row only while its status is one of from
// (any status when from is empty). The check and the write are one UPDATE.
func (s *Service) transition(ctx context.Context, op string, id uint, from []models.ComplaintStatus, updates map[string]any) (*models.Complaint, error) {
	var c models.Complaint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		q := tx.Model(&models.Complaint{}).Where("id = ?", id)
		if len(from) > 0 {
			q = q.Where("status IN ?", from)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("complaint %d is %s: %w", id, c.Status, models.ErrNotPending)
		}
		return tx.First(&c, id).Error
	})
	if err != nil {
		return nil, mapError(op, id, err)
	}
	return &c, nil
}

// CountPendingOlderThan counts pending complaints created before cutoff.
func (s *Service) CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("status = ?", models.StatusPending).
		Where("created_at < ?", cutoff.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, &models.PersistenceError{Op: "count pending", Err: err}
	}
	return n, nil
}

func mapError(op string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("complaint %d: %w", id, models.ErrNotFound)
	}
	if errors.Is(err, models.ErrNotPending) {
		return err
	}
	return &models.PersistenceError{Op: op, Err: err}
}

// startOfDay returns UTC midnight of t's calendar date.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
