package models

// OutboundMessage is one message sent back to a customer conversation.
// AttachmentPath, when set, is a local file sent as a photo or document with Text as its caption.
type OutboundMessage struct {
	Text           string
	AttachmentPath string
}
