// Package dispatch delivers operator replies to customers and closes the complaint.
package dispatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"
)

// Sender delivers a message to a customer conversation.
type Sender interface {
	Send(ctx context.Context, chatID string, msg models.OutboundMessage) error
}

// ComplaintStore is the subset of storage the dispatcher needs.
type ComplaintStore interface {
	GetComplaint(ctx context.Context, id uint) (*models.Complaint, error)
	MarkReplied(ctx context.Context, id uint, replyText, replyMedia *string, from ...models.ComplaintStatus) (*models.Complaint, error)
}

type Dispatcher struct {
	store        ComplaintStore
	sender       Sender
	publisher    chathub.Publisher
	uploadDir    string
	allowReReply bool
}

func NewDispatcher(store ComplaintStore, sender Sender, publisher chathub.Publisher, uploadDir string, allowReReply bool) *Dispatcher {
	return &Dispatcher{
		store:        store,
		sender:       sender,
		publisher:    publisher,
		uploadDir:    uploadDir,
		allowReReply: allowReReply,
	}
}

// Reply sends text and an optional image to the complaint's conversation and
// marks it done. The complaint is only updated after the send succeeded. Any
// attachment file is removed when Reply returns an error.
func (d *Dispatcher) Reply(ctx context.Context, id uint, text string, att Attachment) (updated *models.Complaint, err error) {
	log := logger.Component("dispatch").WithField("complaint_id", id)

	var path string
	defer func() {
		if err == nil {
			return
		}
		for _, p := range []string{att.UploadPath, path} {
			if p != "" {
				_ = os.Remove(p)
			}
		}
	}()

	c, err := d.store.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.canReply(c.Status) {
		return nil, fmt.Errorf("complaint %d is %s: %w", id, c.Status, models.ErrNotPending)
	}

	path, err = d.prepare(att)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" && path == "" {
		return nil, models.ErrEmptyReply
	}

	if err = d.deliver(ctx, c.ChatID, models.OutboundMessage{Text: text, AttachmentPath: path}); err != nil {
		log.WithError(err).Error("Reply delivery failed, complaint left unchanged")
		return nil, err
	}

	var replyText, replyMedia *string
	if text != "" {
		replyText = &text
	}
	if path != "" {
		name := filepath.Base(path)
		replyMedia = &name
	}

	updated, err = d.store.MarkReplied(ctx, id, replyText, replyMedia, d.replyableStatuses()...)
	if err != nil {
		log.WithError(err).Error("Reply delivered but complaint could not be updated")
		return nil, err
	}
	log.Info("Complaint replied")

	d.publisher.Publish(ctx, models.EventUpdatedComplaint, updated)
	return updated, nil
}

// deliver must confirm the send; its failure blocks the state transition.
func (d *Dispatcher) deliver(ctx context.Context, chatID string, msg models.OutboundMessage) error {
	if err := d.sender.Send(ctx, chatID, msg); err != nil {
		return &models.BackendError{Op: "deliver reply", Err: err}
	}
	return nil
}

func (d *Dispatcher) canReply(status models.ComplaintStatus) bool {
	for _, s := range d.replyableStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

func (d *Dispatcher) replyableStatuses() []models.ComplaintStatus {
	if d.allowReReply {
		return []models.ComplaintStatus{models.StatusPending, models.StatusDone}
	}
	return []models.ComplaintStatus{models.StatusPending}
}

// prepare resolves the attachment to a local file path, or "" for none.
// A malformed inline image is dropped and the reply goes out as text.
func (d *Dispatcher) prepare(att Attachment) (string, error) {
	if att.UploadPath != "" {
		return att.UploadPath, nil
	}
	if att.InlineData == "" {
		return "", nil
	}
	img, ok := DecodeInlineImage(att.InlineData)
	if !ok {
		logger.Component("dispatch").Debug("Ignoring malformed inline image")
		return "", nil
	}
	return writeInlineImage(d.uploadDir, img)
}
