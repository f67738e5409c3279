// Package triage decides whether an inbound message becomes a tracked complaint.
package triage

import (
	"strings"
	"unicode"

	"complaintdesk/backend/internal/config"
)

// ChatKind is the type of conversation a message arrived in.
type ChatKind string

const (
	ChatPrivate    ChatKind = "private"
	ChatGroup      ChatKind = "group"
	ChatSupergroup ChatKind = "supergroup"
	ChatChannel    ChatKind = "channel"
)

// IsGroupOrChannel reports whether the group blocklist applies to this kind.
func (k ChatKind) IsGroupOrChannel() bool {
	return k == ChatGroup || k == ChatSupergroup || k == ChatChannel
}

// Reason names the rule that rejected a message.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonOutgoing     Reason = "outgoing"
	ReasonIgnoredGroup Reason = "ignored_group"
	ReasonIgnoredUser  Reason = "ignored_username"
	ReasonEmpty        Reason = "empty_text"
	ReasonNoKeyword    Reason = "no_keyword"
	ReasonTooLong      Reason = "too_long"
)

// Input is everything the filter looks at.
type Input struct {
	ChatID         string
	ChatKind       ChatKind
	SenderUsername string
	Text           string
	Outgoing       bool
}

// Decision is the outcome of Evaluate. Matched is set only for accepted messages.
type Decision struct {
	Accepted bool
	Reason   Reason
	Matched  []string
}

// Policy configures a Filter.
type Policy struct {
	IgnoredGroupIDs  []string
	IgnoredUsernames []string
	Keywords         []string
	MaxDenseLength   int
}

// DefaultPolicy returns the built-in blocklists and vocabulary.
func DefaultPolicy() Policy {
	return Policy{
		IgnoredUsernames: config.DefaultIgnoredUsernames,
		Keywords:         config.DefaultKeywords,
		MaxDenseLength:   config.MaxDenseLength,
	}
}

// Filter applies the triage rules. It holds no mutable state after construction.
type Filter struct {
	groups   map[string]struct{}
	users    map[string]struct{}
	keywords []string
	maxDense int
}

// NewFilter builds a Filter from p. Usernames and keywords are lower-cased once here.
func NewFilter(p Policy) *Filter {
	f := &Filter{
		groups:   make(map[string]struct{}, len(p.IgnoredGroupIDs)),
		users:    make(map[string]struct{}, len(p.IgnoredUsernames)),
		maxDense: p.MaxDenseLength,
	}
	if f.maxDense <= 0 {
		f.maxDense = config.MaxDenseLength
	}
	for _, id := range p.IgnoredGroupIDs {
		f.groups[strings.TrimSpace(id)] = struct{}{}
	}
	for _, u := range p.IgnoredUsernames {
		f.users[normalizeUsername(u)] = struct{}{}
	}
	for _, k := range p.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			f.keywords = append(f.keywords, k)
		}
	}
	return f
}

// ShouldProcess reports whether the message passes every rule.
func (f *Filter) ShouldProcess(in Input) bool {
	return f.Evaluate(in).Accepted
}

// Evaluate applies the rules in order and stops at the first rejection.
func (f *Filter) Evaluate(in Input) Decision {
	if in.Outgoing {
		return Decision{Reason: ReasonOutgoing}
	}
	if in.ChatKind.IsGroupOrChannel() {
		if _, ok := f.groups[in.ChatID]; ok {
			return Decision{Reason: ReasonIgnoredGroup}
		}
	}
	if u := normalizeUsername(in.SenderUsername); u != "" {
		if _, ok := f.users[u]; ok {
			return Decision{Reason: ReasonIgnoredUser}
		}
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Decision{Reason: ReasonEmpty}
	}

	matched := f.MatchKeywords(text)
	if len(matched) == 0 {
		return Decision{Reason: ReasonNoKeyword}
	}
	if !WithinDenseLimit(text, f.maxDense) {
		return Decision{Reason: ReasonTooLong}
	}
	return Decision{Accepted: true, Matched: matched}
}

// MatchKeywords returns every keyword contained in the lower-cased text.
func (f *Filter) MatchKeywords(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, k := range f.keywords {
		if strings.Contains(lower, k) {
			matched = append(matched, k)
		}
	}
	return matched
}

// DenseLength counts the characters of s that are not whitespace.
func DenseLength(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// WithinDenseLimit reports whether DenseLength(s) <= limit.
func WithinDenseLimit(s string, limit int) bool {
	return DenseLength(s) <= limit
}

func normalizeUsername(u string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(u), "@"))
}
