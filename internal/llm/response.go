// Package llm wraps the language-model backends used to draft automatic replies.
package llm

import (
	"context"
	"strings"
)

// Backend sends one prompt to a language model.
type Backend interface {
	Complete(ctx context.Context, prompt string) (Response, error)
}

// Response is the union of reply shapes the backends are known to return.
// Any of the fields may be empty; Extract picks the first one that carries text.
type Response struct {
	Candidates []Candidate
	Text       *string
	Output     []OutputItem
}

// Candidate mirrors the candidates[].content.parts[].text shape.
type Candidate struct {
	Content *Content
}

type Content struct {
	Parts []Part
}

type Part struct {
	Text string
}

// OutputItem mirrors the output[].content.text shape.
type OutputItem struct {
	Content OutputContent
}

type OutputContent struct {
	Text string
}

// Extract returns the reply text, trying in order:
// candidates[0].content.parts[0].text, the top-level text, output[0].content.text.
func (r Response) Extract() (string, bool) {
	for _, path := range []func() string{r.candidateText, r.topLevelText, r.outputText} {
		if s := strings.TrimSpace(path()); s != "" {
			return s, true
		}
	}
	return "", false
}

func (r Response) candidateText() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}

func (r Response) topLevelText() string {
	if r.Text == nil {
		return ""
	}
	return *r.Text
}

func (r Response) outputText() string {
	if len(r.Output) == 0 {
		return ""
	}
	return r.Output[0].Content.Text
}
