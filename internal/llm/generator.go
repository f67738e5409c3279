package llm

import (
	"context"
	"regexp"
	"strings"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/contextstore"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"
)

var codePattern = regexp.MustCompile(`\d{3,}`)

// GeneratorConfig holds the prompt settings.
type GeneratorConfig struct {
	AssistantName string
	Language      string
	Timeout       time.Duration
}

// Generator drafts replies. Generate never fails: backend errors turn into
// a fixed apology.
type Generator struct {
	backend  Backend
	contexts *contextstore.Store
	loc      *localization.Localizer
	cfg      GeneratorConfig
}

func NewGenerator(backend Backend, contexts *contextstore.Store, loc *localization.Localizer, cfg GeneratorConfig) *Generator {
	if cfg.AssistantName == "" {
		cfg.AssistantName = config.DefaultAssistantName
	}
	if cfg.Language == "" {
		cfg.Language = "id"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultLLMTimeout
	}
	return &Generator{backend: backend, contexts: contexts, loc: loc, cfg: cfg}
}

// Generate returns a reply for text in the given conversation and records the
// exchange in the conversation context.
func (g *Generator) Generate(ctx context.Context, conversationID, text string) string {
	log := logger.Component("llm").WithField("conversation_id", conversationID)

	history, err := g.contexts.Get(ctx, conversationID)
	if err != nil {
		log.WithError(err).Warn("Could not load conversation context, continuing without it")
		history = ""
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.backend.Complete(callCtx, g.BuildPrompt(history, text))
	if err != nil {
		log.WithError(&models.BackendError{Op: "llm complete", Err: err}).Error("Reply generation failed, using fallback")
		return g.loc.GetString(g.cfg.Language, localization.KeyFallbackApology)
	}

	reply, ok := resp.Extract()
	if !ok {
		log.Warn("Model response carried no text")
		reply = g.loc.GetString(g.cfg.Language, localization.KeyUnableToAnswer)
	}

	if err := g.contexts.Append(ctx, conversationID, text, reply); err != nil {
		log.WithError(err).Warn("Could not update conversation context")
	}
	return reply
}

// BuildPrompt composes the persona, directives, transcript and new message.
func (g *Generator) BuildPrompt(history, text string) string {
	lang := g.cfg.Language
	var b strings.Builder

	b.WriteString(g.loc.Format(lang, localization.KeyPersona, g.cfg.AssistantName))
	b.WriteString("\n")

	codes := codePattern.FindAllString(text, -1)
	if len(codes) > 0 {
		b.WriteString(g.loc.Format(lang, localization.KeyCodeDirective, strings.Join(codes, ", ")))
		b.WriteString("\n")
	}
	if strings.Contains(strings.ToLower(text), config.CancellationKeyword) {
		ref := "kak"
		if len(codes) > 0 {
			ref = strings.Join(codes, ", ")
		}
		b.WriteString(g.loc.Format(lang, localization.KeyCancellationDirective, ref))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(history)
	b.WriteString("\nUser: ")
	b.WriteString(text)
	b.WriteString("\nBot:")
	return b.String()
}
