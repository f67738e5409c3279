package config

import "time"

const (
	// Triage
	MaxDenseLength = 500

	// Conversation memory
	ContextCeiling = 3000
	ContextKeep    = 2000

	// Listing
	ListLimit     = 1000
	SnapshotLimit = 200

	// LLM
	DefaultLLMTimeout    = 30 * time.Second
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultAssistantName = "Chika MP CS"

	// CancellationKeyword triggers the refund acknowledgement template.
	CancellationKeyword = "dibatalkan"
)

// DefaultKeywords is the triage vocabulary. Matching is done on lower-cased
// text, so every entry is stored lower-cased.
var DefaultKeywords = []string{
	"kode", "tujuan", "cek", "tolong", "up", "update", "bantu",
	"sore", "siang", "pagi", "tim",
	"gimana", "gmn", "lama", "hc", "marah", "validasi",
	"refund", "batalkan", "batal", "diproses", "proses",
	"menunggu jawaban", "trx", "mhn tunggu trx sblmnya selesai",
}

// DefaultIgnoredUsernames are provider bots and our own accounts.
var DefaultIgnoredUsernames = []string{
	"indosat_isimple_bot",
	"sidompul_xl_axis_bot",
	"marketing_cmp",
	"chika7_bot",
	"usenfound",
}
