// Package telegram connects the complaint desk to the Telegram Bot API.
// It turns updates into intake messages and sends replies back to customers.
package telegram

import (
	"context"
	"strconv"

	"complaintdesk/backend/internal/intake"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/triage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageHandler consumes inbound messages.
type MessageHandler interface {
	Handle(ctx context.Context, msg intake.InboundMessage) (intake.Result, error)
}

// BotService receives Telegram updates and feeds them to the intake pipeline
// one at a time.
type BotService struct {
	BotAPI  *tgbotapi.BotAPI
	Handler MessageHandler
}

// NewBotService authorizes the bot.
func NewBotService(token string) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	logger.Component("telegram").Infof("Authorized on account %s", bot.Self.UserName)
	return &BotService{BotAPI: bot}, nil
}

// Run polls for updates until ctx is cancelled.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)
	defer s.BotAPI.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			s.handleUpdate(ctx, update)
		}
	}
}

func (s *BotService) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var msg *tgbotapi.Message
	switch {
	case update.Message != nil:
		msg = update.Message
	case update.ChannelPost != nil:
		msg = update.ChannelPost
	default:
		return
	}

	in := ToInbound(msg, s.BotAPI.Self.ID)
	res, err := s.Handler.Handle(ctx, in)
	log := logger.Component("telegram").WithField("chat_id", in.ChatID)
	if err != nil {
		log.WithError(err).Error("Error handling incoming message")
		return
	}
	log.WithField("stage", res.Stage).Debug("Message handled")
}

// extractMessageContent uniformly extracts text or a caption from a message.
func extractMessageContent(msg *tgbotapi.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

// ToInbound converts a Telegram message. Messages authored by selfID are marked outgoing.
func ToInbound(msg *tgbotapi.Message, selfID int64) intake.InboundMessage {
	in := intake.InboundMessage{
		ChatID:   strconv.FormatInt(msg.Chat.ID, 10),
		ChatKind: triage.ChatKind(msg.Chat.Type),
		Text:     extractMessageContent(msg),
	}
	if from := msg.From; from != nil {
		id := strconv.FormatInt(from.ID, 10)
		in.SenderID = &id
		in.SenderUsername = from.UserName
		in.SenderName = from.FirstName
		in.Outgoing = selfID != 0 && from.ID == selfID
	}
	return in
}
