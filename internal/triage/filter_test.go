package triage_test

import (
	"strings"
	"testing"

	"complaintdesk/backend/internal/triage"

	"github.com/stretchr/testify/assert"
)

func newTestFilter() *triage.Filter {
	return triage.NewFilter(triage.Policy{
		IgnoredGroupIDs:  []string{"-100777"},
		IgnoredUsernames: []string{"Spam_Bot", "@marketing_cmp"},
		Keywords:         []string{"cek", "tolong", "Menunggu Jawaban", "refund"},
		MaxDenseLength:   500,
	})
}

func TestFilter_Evaluate(t *testing.T) {
	f := newTestFilter()

	tests := []struct {
		name   string
		in     triage.Input
		reason triage.Reason
	}{
		{
			name:   "accepted private message",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, SenderUsername: "alice", Text: "tolong cek kode 12345 saya kak"},
			reason: triage.ReasonNone,
		},
		{
			name:   "outgoing wins over everything",
			in:     triage.Input{ChatID: "-100777", ChatKind: triage.ChatGroup, SenderUsername: "spam_bot", Outgoing: true},
			reason: triage.ReasonOutgoing,
		},
		{
			name:   "blocked group",
			in:     triage.Input{ChatID: "-100777", ChatKind: triage.ChatSupergroup, Text: "tolong"},
			reason: triage.ReasonIgnoredGroup,
		},
		{
			name:   "blocklisted id in private chat is not a group rule",
			in:     triage.Input{ChatID: "-100777", ChatKind: triage.ChatPrivate, Text: "tolong"},
			reason: triage.ReasonNone,
		},
		{
			name:   "blocked channel",
			in:     triage.Input{ChatID: "-100777", ChatKind: triage.ChatChannel, Text: "cek"},
			reason: triage.ReasonIgnoredGroup,
		},
		{
			name:   "username blocklist is case-insensitive",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, SenderUsername: "SPAM_BOT", Text: "tolong"},
			reason: triage.ReasonIgnoredUser,
		},
		{
			name:   "username blocklist strips at-sign in config",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, SenderUsername: "marketing_cmp", Text: "tolong"},
			reason: triage.ReasonIgnoredUser,
		},
		{
			name:   "whitespace only",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, Text: " \n\t "},
			reason: triage.ReasonEmpty,
		},
		{
			name:   "no keyword",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, Text: "halo apa kabar"},
			reason: triage.ReasonNoKeyword,
		},
		{
			name:   "keyword match is case-insensitive",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, Text: "TOLONG dong"},
			reason: triage.ReasonNone,
		},
		{
			name:   "mixed-case configured phrase still matches",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, Text: "status masih menunggu jawaban"},
			reason: triage.ReasonNone,
		},
		{
			name:   "dense length over the ceiling",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, Text: "tolong " + strings.Repeat("x", 600)},
			reason: triage.ReasonTooLong,
		},
		{
			name:   "dense length exactly at the ceiling",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, Text: "tolong" + strings.Repeat("x", 494)},
			reason: triage.ReasonNone,
		},
		{
			name:   "dense length one past the ceiling",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, Text: "tolong" + strings.Repeat("x", 495)},
			reason: triage.ReasonTooLong,
		},
		{
			name:   "whitespace padding does not count",
			in:     triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, Text: "tolong" + strings.Repeat(" a", 490)},
			reason: triage.ReasonNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.Evaluate(tt.in)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.reason == triage.ReasonNone, d.Accepted)
			assert.Equal(t, d.Accepted, f.ShouldProcess(tt.in))
		})
	}
}

func TestFilter_EvaluateIsDeterministic(t *testing.T) {
	f := newTestFilter()
	in := triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, SenderUsername: "alice", Text: "mau refund, tolong cek"}

	first := f.Evaluate(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f.Evaluate(in))
	}
	assert.Equal(t, []string{"cek", "tolong", "refund"}, first.Matched)
}

func TestFilter_LongMessageWithKeywordRejected(t *testing.T) {
	f := triage.NewFilter(triage.DefaultPolicy())
	text := "tolong " + strings.Repeat("abcdefghij", 60)

	assert.Equal(t, 606, triage.DenseLength(text))
	assert.False(t, f.ShouldProcess(triage.Input{ChatID: "1", ChatKind: triage.ChatPrivate, Text: text}))
}

func TestDenseLength(t *testing.T) {
	assert.Equal(t, 0, triage.DenseLength(""))
	assert.Equal(t, 0, triage.DenseLength(" \t\r\n"))
	assert.Equal(t, 25, triage.DenseLength("tolong cek kode 12345 saya kak"))
	assert.Equal(t, 3, triage.DenseLength("é ü ß"), "counts characters, not bytes")
	assert.True(t, triage.WithinDenseLimit(strings.Repeat("a", 500), 500))
	assert.False(t, triage.WithinDenseLimit(strings.Repeat("a", 501), 500))
}

func TestChatKind_IsGroupOrChannel(t *testing.T) {
	assert.False(t, triage.ChatPrivate.IsGroupOrChannel())
	assert.True(t, triage.ChatGroup.IsGroupOrChannel())
	assert.True(t, triage.ChatSupergroup.IsGroupOrChannel())
	assert.True(t, triage.ChatChannel.IsGroupOrChannel())
}
