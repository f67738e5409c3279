// Package contextstore keeps a bounded per-conversation transcript that is fed
// back to the reply generator.
package contextstore

import (
	"context"
	"fmt"

	"complaintdesk/backend/internal/config"
)

// Backend persists transcripts. Update must apply fn atomically per key.
type Backend interface {
	Load(ctx context.Context, key string) (string, error)
	Update(ctx context.Context, key string, fn func(current string) string) error
}

// Store is the conversation memory used by the reply generator.
type Store struct {
	backend Backend
	ceiling int
	keep    int
}

// New creates a Store with the default 3000/2000 character window.
func New(b Backend) *Store {
	return &Store{backend: b, ceiling: config.ContextCeiling, keep: config.ContextKeep}
}

// NewMemory creates a Store backed by process memory.
func NewMemory() *Store {
	return New(NewMemoryBackend())
}

// Get returns the transcript for the conversation, or "" when there is none.
func (s *Store) Get(ctx context.Context, conversationID string) (string, error) {
	v, err := s.backend.Load(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("load context %s: %w", conversationID, err)
	}
	return v, nil
}

// Append adds one user/bot turn and trims the transcript when it grows past the ceiling.
func (s *Store) Append(ctx context.Context, conversationID, userText, replyText string) error {
	turn := FormatTurn(userText, replyText)
	err := s.backend.Update(ctx, conversationID, func(current string) string {
		return Trim(current+turn, s.ceiling, s.keep)
	})
	if err != nil {
		return fmt.Errorf("append context %s: %w", conversationID, err)
	}
	return nil
}

// FormatTurn renders one exchange the way it is embedded in the prompt.
func FormatTurn(userText, replyText string) string {
	return "\nUser: " + userText + "\nBot: " + replyText
}

// Trim keeps the last keep characters of s once s is longer than ceiling.
// The cut is a hard character window and may split a turn.
func Trim(s string, ceiling, keep int) string {
	r := []rune(s)
	if len(r) <= ceiling {
		return s
	}
	return string(r[len(r)-keep:])
}
