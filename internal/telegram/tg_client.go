package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"complaintdesk/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxMessageRunes = 4096
	maxCaptionRunes = 1024
)

var photoExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// BotAPI is the part of *tgbotapi.BotAPI used to talk to customers.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client sends outbound messages to Telegram chats.
type Client struct {
	BotAPI BotAPI
}

func NewClient(bot BotAPI) *Client {
	return &Client{BotAPI: bot}
}

// Send delivers msg to chatID. Images go out as photos, other files as
// documents; text that does not fit in a caption follows as separate messages.
func (c *Client) Send(ctx context.Context, chatID string, msg models.OutboundMessage) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	var text []string
	if msg.AttachmentPath != "" {
		caption := msg.Text
		if runeLen(caption) > maxCaptionRunes {
			text = splitText(caption, maxMessageRunes)
			caption = ""
		}
		if err := c.send(ctx, fileMessage(id, msg.AttachmentPath, caption)); err != nil {
			return err
		}
	} else {
		text = splitText(msg.Text, maxMessageRunes)
		if len(text) == 0 {
			return fmt.Errorf("empty message for chat %s", chatID)
		}
	}

	for _, chunk := range text {
		if err := c.send(ctx, tgbotapi.NewMessage(id, chunk)); err != nil {
			return err
		}
	}
	return nil
}

// SendTyping shows the "typing" chat action.
func (c *Client) SendTyping(ctx context.Context, chatID string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = c.BotAPI.Request(tgbotapi.NewChatAction(id, tgbotapi.ChatTyping))
	return err
}

func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.BotAPI.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func fileMessage(chatID int64, path, caption string) tgbotapi.Chattable {
	file := tgbotapi.FilePath(path)
	if photoExts[strings.ToLower(filepath.Ext(path))] {
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = caption
		return photo
	}
	doc := tgbotapi.NewDocument(chatID, file)
	doc.Caption = caption
	return doc
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}
	return id, nil
}

func runeLen(s string) int {
	return len([]rune(s))
}

// splitText cuts s into chunks of at most limit runes, preferring line breaks.
func splitText(s string, limit int) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var chunks []string
	r := []rune(s)
	for len(r) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if r[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(r[:cut]))
		r = r[cut:]
	}
	return append(chunks, string(r))
}
