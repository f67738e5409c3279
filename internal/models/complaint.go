package models

import (
	"time"

	"github.com/lib/pq"
)

// ComplaintStatus is the lifecycle state of a Complaint.
type ComplaintStatus string

const (
	StatusPending ComplaintStatus = "pending"
	StatusDone    ComplaintStatus = "done"
	StatusDeleted ComplaintStatus = "deleted"
)

// Valid reports whether s is one of the known statuses.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDone, StatusDeleted:
		return true
	}
	return false
}

// Complaint is a tracked service request derived from one inbound message.
// Reply fields stay nil until an operator reply is delivered.
type Complaint struct {
	// ID is assigned by the database and never changes.
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// ChatID identifies the originating conversation.
	ChatID string `gorm:"type:text;not null;index" json:"chat_id"`
	// SenderID and SenderUsername are nil when the sender is unknown (channel posts).
	SenderID       *string `gorm:"type:text" json:"sender_id"`
	SenderUsername *string `gorm:"type:text" json:"sender_username"`
	// Message is the trimmed original text.
	Message string `gorm:"type:text;not null" json:"message"`
	// ModelReply is the auto-generated draft, written once at creation.
	ModelReply *string `gorm:"type:text" json:"model_reply"`
	// MatchedKeywords lists the triage keywords found in Message.
	MatchedKeywords pq.StringArray `gorm:"type:text" json:"matched_keywords"`

	Status    ComplaintStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	CreatedAt time.Time       `gorm:"not null;index" json:"created_at"`

	RepliedAt  *time.Time `json:"replied_at"`
	ReplyText  *string    `gorm:"type:text" json:"reply_text"`
	ReplyMedia *string    `gorm:"type:text" json:"reply_media"`
}

// TableName pins the table name used by the original deployment.
func (Complaint) TableName() string { return "complaints" }

// NewComplaint carries the fields supplied by the intake pipeline.
type NewComplaint struct {
	ChatID          string
	SenderID        *string
	SenderUsername  *string
	Message         string
	ModelReply      *string
	MatchedKeywords []string
}

// ComplaintFilter narrows a listing. Zero values mean "no constraint".
type ComplaintFilter struct {
	Status    ComplaintStatus
	DateStart *time.Time // calendar date, inclusive
	DateEnd   *time.Time // calendar date, inclusive
	Search    string
	Limit     int
}
