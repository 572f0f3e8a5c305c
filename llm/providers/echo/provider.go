// Package echo provides an offline llm.Generator that answers
// deterministically from the request itself. It lets a session run
// end to end without network access.
package echo

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/senate/llm"
)

const systemPrefix = "You are Senator "

// Provider answers with the speaker's name and the first line of the prompt.
type Provider struct{}

// New returns an echo Provider.
func New() *Provider { return &Provider{} }

// Name returns "echo".
func (p *Provider) Name() string { return "echo" }

// Generate never fails unless ctx is already done.
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := fmt.Sprintf("%s on %q: I will weigh this carefully.", speaker(req.System), firstLine(req.Prompt))
	return &llm.GenerateResponse{
		Content:  content,
		Model:    "echo",
		Provider: p.Name(),
		Usage: llm.Usage{
			PromptTokens:     len(strings.Fields(req.System)) + len(strings.Fields(req.Prompt)),
			CompletionTokens: len(strings.Fields(content)),
		},
	}, nil
}

// speaker extracts "Senator <name>" from a persona description.
func speaker(system string) string {
	rest, ok := strings.CutPrefix(system, systemPrefix)
	if !ok {
		return "The senator"
	}
	if i := strings.Index(rest, " from "); i >= 0 {
		rest = rest[:i]
	}
	return "Senator " + rest
}

func firstLine(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
