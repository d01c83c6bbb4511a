package arbitration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispute-arbiter/internal/ai"
	"dispute-arbiter/internal/dispute"
)

const chatPreviewLines = 5

// AdvisorConfig bounds the narrative call.
type AdvisorConfig struct {
	Timeout     time.Duration
	Language    string
	Temperature float64
	MaxTokens   int
}

// Advisor asks a text-completion backend for a short risk commentary on a case.
// Its output is advisory and never changes the rule-based verdict.
type Advisor struct {
	completer ai.Completer
	cfg       AdvisorConfig
}

// NewAdvisor fills zero config values with the reference deployment defaults.
func NewAdvisor(completer ai.Completer, cfg AdvisorConfig) *Advisor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = "English"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	return &Advisor{completer: completer, cfg: cfg}
}

// Advise returns the commentary or an error; callers treat any error as "no commentary".
func (a *Advisor) Advise(ctx context.Context, c dispute.Case) (string, error) {
	if a == nil || a.completer == nil || !a.completer.Enabled() {
		return "", ai.ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	text, err := a.completer.Complete(ctx, BuildPrompt(c, a.cfg.Language), ai.Options{
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("narrative completion: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ai.ErrEmptyCompletion
	}
	return text, nil
}

// BuildPrompt renders the structured case summary sent to the text backend.
func BuildPrompt(c dispute.Case, language string) string {
	b := &strings.Builder{}
	b.WriteString("You are a professional arbitrator for e-commerce trade disputes. Analyse the following case.\n\n")

	b.WriteString("[Transaction]\n")
	fmt.Fprintf(b, "Amount: %s cUSD\n", c.Amount.String())
	fmt.Fprintf(b, "Description: %s\n", orNone(c.Description))
	fmt.Fprintf(b, "Dispute type: %s\n\n", c.DisputeType.Label())

	fmt.Fprintf(b, "[Buyer claim]\n%s\n\n", orNone(c.BuyerClaim))
	fmt.Fprintf(b, "[Seller response]\n%s\n\n", orNone(c.SellerResponse))

	fmt.Fprintf(b, "[Buyer evidence]\n%d item(s)\n\n", len(c.BuyerEvidence))
	fmt.Fprintf(b, "[Seller evidence]\n%d item(s)\n\n", len(c.SellerEvidence))

	b.WriteString("[Chat history]\n")
	if len(c.ChatHistory) == 0 {
		b.WriteString("no chat record\n")
	} else {
		lines := c.ChatHistory
		if len(lines) > chatPreviewLines {
			lines = lines[:chatPreviewLines]
		}
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\nAssess the case from these angles:\n")
	b.WriteString("1. Credibility of each party's statements\n")
	b.WriteString("2. Sufficiency and authenticity of the evidence\n")
	b.WriteString("3. Any indication of malicious intent\n")
	b.WriteString("4. A reasonable resolution\n\n")
	fmt.Fprintf(b, "Answer concisely in %s (200 characters or fewer) with your professional judgement.", language)
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
