// Package intake turns inbound customer messages into tracked complaints.
//
// A message moves through received -> filtered-out, or
// received -> accepted -> replied -> persisted -> broadcast.
package intake

import (
	"context"
	"strings"

	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/triage"

	"github.com/sirupsen/logrus"
)

// Stage is the furthest state a message reached.
type Stage string

const (
	StageReceived    Stage = "received"
	StageFilteredOut Stage = "filtered-out"
	StageAccepted    Stage = "accepted"
	StageReplied     Stage = "replied"
	StagePersisted   Stage = "persisted"
	StageBroadcast   Stage = "broadcast"
)

// InboundMessage is a transport-neutral incoming chat message.
type InboundMessage struct {
	ChatID   string
	ChatKind triage.ChatKind
	// SenderID is nil for channel posts.
	SenderID *string
	// SenderUsername is the sender's handle, used for the blocklist.
	SenderUsername string
	// SenderName is shown on the dashboard when there is no handle.
	SenderName string
	Text       string
	Outgoing   bool
}

// Result reports what happened to one message.
type Result struct {
	Stage     Stage
	Reason    triage.Reason
	Complaint *models.Complaint
}

// ReplyGenerator drafts a reply and never fails.
type ReplyGenerator interface {
	Generate(ctx context.Context, conversationID, text string) string
}

// Sender delivers messages to a customer conversation.
type Sender interface {
	Send(ctx context.Context, chatID string, msg models.OutboundMessage) error
}

// TypingNotifier is implemented by senders that can show a typing indicator.
type TypingNotifier interface {
	SendTyping(ctx context.Context, chatID string) error
}

// ComplaintCreator persists accepted messages.
type ComplaintCreator interface {
	CreateComplaint(ctx context.Context, in models.NewComplaint) (*models.Complaint, error)
}

type Pipeline struct {
	filter    *triage.Filter
	generator ReplyGenerator
	sender    Sender
	store     ComplaintCreator
	publisher chathub.Publisher
}

func NewPipeline(filter *triage.Filter, generator ReplyGenerator, sender Sender, store ComplaintCreator, publisher chathub.Publisher) *Pipeline {
	return &Pipeline{
		filter:    filter,
		generator: generator,
		sender:    sender,
		store:     store,
		publisher: publisher,
	}
}

// Handle runs one message through the pipeline. Only persistence failures are
// returned; rejection is reported through Result.
func (p *Pipeline) Handle(ctx context.Context, msg InboundMessage) (Result, error) {
	log := logger.Component("intake").WithField("chat_id", msg.ChatID)
	text := strings.TrimSpace(msg.Text)

	decision := p.filter.Evaluate(triage.Input{
		ChatID:         msg.ChatID,
		ChatKind:       msg.ChatKind,
		SenderUsername: msg.SenderUsername,
		Text:           text,
		Outgoing:       msg.Outgoing,
	})
	if !decision.Accepted {
		log.WithField("reason", decision.Reason).Debug("Message ignored")
		return Result{Stage: StageFilteredOut, Reason: decision.Reason}, nil
	}

	p.showTyping(ctx, msg.ChatID, log)

	reply := p.generator.Generate(ctx, msg.ChatID, text)
	p.autoReply(ctx, msg.ChatID, reply, log)

	complaint, err := p.store.CreateComplaint(ctx, models.NewComplaint{
		ChatID:          msg.ChatID,
		SenderID:        msg.SenderID,
		SenderUsername:  displayName(msg),
		Message:         text,
		ModelReply:      &reply,
		MatchedKeywords: decision.Matched,
	})
	if err != nil {
		return Result{Stage: StageReplied}, err
	}
	log.WithField("complaint_id", complaint.ID).Info("Complaint saved")

	if !triage.WithinDenseLimit(complaint.Message, config.MaxDenseLength) {
		return Result{Stage: StagePersisted, Complaint: complaint}, nil
	}
	p.publisher.Publish(ctx, models.EventNewComplaint, complaint)
	return Result{Stage: StageBroadcast, Complaint: complaint}, nil
}

// autoReply sends the drafted reply. Failures are logged and never block persistence.
func (p *Pipeline) autoReply(ctx context.Context, chatID, reply string, log *logrus.Entry) {
	if err := p.sender.Send(ctx, chatID, models.OutboundMessage{Text: reply}); err != nil {
		log.WithError(err).Warn("Failed to send automatic reply")
		return
	}
	log.Debug("Automatic reply sent")
}

func (p *Pipeline) showTyping(ctx context.Context, chatID string, log *logrus.Entry) {
	t, ok := p.sender.(TypingNotifier)
	if !ok {
		return
	}
	if err := t.SendTyping(ctx, chatID); err != nil {
		log.WithError(err).Debug("Typing indicator failed")
	}
}

func displayName(msg InboundMessage) *string {
	for _, s := range []string{msg.SenderUsername, msg.SenderName} {
		if s = strings.TrimSpace(s); s != "" {
			return &s
		}
	}
	return nil
}
