package arbitration

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dispute-arbiter/internal/dispute"
	"dispute-arbiter/internal/scoring"
)

// Narrator produces optional free-text commentary for a case.
type Narrator interface {
	Advise(ctx context.Context, c dispute.Case) (string, error)
}

// Tuning holds the aggregation constants.
type Tuning struct {
	GapWeight     float64 `json:"gap_weight"`
	MinConfidence int     `json:"min_confidence"`
	MaxConfidence int     `json:"max_confidence"`
}

// DefaultTuning returns the reference constants.
func DefaultTuning() Tuning {
	return Tuning{GapWeight: 0.5, MinConfidence: 30, MaxConfidence: 95}
}

// EvidenceSummary reports the inputs the verdict was computed from.
type EvidenceSummary struct {
	BuyerEvidenceCount  int `json:"buyer_evidence_count"`
	SellerEvidenceCount int `json:"seller_evidence_count"`
	ChatMessagesCount   int `json:"chat_messages_count"`
	BuyerEvidenceScore  int `json:"buyer_evidence_score"`
	SellerEvidenceScore int `json:"seller_evidence_score"`
	EvidenceGap         int `json:"evidence_gap"`
	ChatRiskScore       int `json:"chat_risk_score"`
}

// Verdict is the advisory outcome for one case.
type Verdict struct {
	CaseID             string                 `json:"case_id"`
	DisputeType        dispute.DisputeType    `json:"dispute_type"`
	Responsibility     dispute.Responsibility `json:"responsibility"`
	ResponsibilityText string                 `json:"responsibility_text"`
	Resolution         dispute.Resolution     `json:"resolution"`
	ResolutionText     string                 `json:"resolution_text"`
	Confidence         int                    `json:"confidence"`
	BaseConfidence     int                    `json:"base_confidence"`
	DetailedReasons    []string               `json:"detailed_reasons"`
	EvidenceSummary    EvidenceSummary        `json:"evidence_summary"`
	Recommendations    []string               `json:"recommendations"`
	Narrative          string                 `json:"narrative,omitempty"`
	Timestamp          time.Time              `json:"timestamp"`
}

// Engine reconciles the scorers, the rule table and the narrative advisor into a verdict.
type Engine struct {
	scorer   *scoring.Scorer
	narrator Narrator
	tuning   Tuning
	now      func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithNarrator attaches a best-effort narrative advisor.
func WithNarrator(n Narrator) Option {
	return func(e *Engine) { e.narrator = n }
}

// WithTuning overrides the aggregation constants.
func WithTuning(t Tuning) Option {
	return func(e *Engine) { e.tuning = t }
}

// WithClock overrides the clock used for case ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an engine. A nil scorer uses the default profile.
func NewEngine(scorer *scoring.Scorer, opts ...Option) *Engine {
	if scorer == nil {
		scorer = scoring.NewScorer(scoring.DefaultProfile())
	}
	e := &Engine{scorer: scorer, tuning: DefaultTuning(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.tuning.MaxConfidence <= 0 || e.tuning.MinConfidence > e.tuning.MaxConfidence {
		e.tuning = DefaultTuning()
	}
	return e
}

// Tuning returns the constants in use.
func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// Arbitrate produces a verdict. It never fails: a missing or failing narrator only
// removes the narrative section.
func (e *Engine) Arbitrate(ctx context.Context, c dispute.Case) Verdict {
	g, gctx := errgroup.WithContext(ctx)
	var narrative string
	if e.narrator != nil {
		g.Go(func() error {
			text, err := e.narrator.Advise(gctx, c)
			if err != nil {
				logrus.WithError(err).WithField("dispute_type", c.DisputeType).Warn("narrative advisor unavailable")
				return nil
			}
			narrative = text
			return nil
		})
	}

	buyer := e.scorer.EvaluateEvidence(c.BuyerEvidence)
	seller := e.scorer.EvaluateEvidence(c.SellerEvidence)
	chat := e.scorer.AnalyzeChat(c.ChatHistory)
	judgment := scoring.Judge(c)

	gap := buyer.Score - seller.Score
	if gap < 0 {
		gap = -gap
	}
	confidence := e.finalConfidence(judgment.Confidence, gap)

	_ = g.Wait()

	reasons := make([]string, 0, 5)
	reasons = append(reasons, "Rule judgment: "+judgment.Reason)
	if len(buyer.Findings) > 0 {
		reasons = append(reasons, "Buyer evidence: "+strings.Join(buyer.Findings, "; "))
	}
	if len(seller.Findings) > 0 {
		reasons = append(reasons, "Seller evidence: "+strings.Join(seller.Findings, "; "))
	}
	if len(chat.Findings) > 0 {
		reasons = append(reasons, "Chat analysis: "+strings.Join(chat.Findings, "; "))
	}
	if narrative != "" {
		reasons = append(reasons, "AI analysis: "+narrative)
	}

	now := e.now()
	return Verdict{
		CaseID:             NewCaseID(now),
		DisputeType:        c.DisputeType,
		Responsibility:     judgment.Responsibility,
		ResponsibilityText: judgment.Responsibility.Label(),
		Resolution:         judgment.Resolution,
		ResolutionText:     judgment.Resolution.Label(),
		Confidence:         confidence,
		BaseConfidence:     judgment.Confidence,
		DetailedReasons:    reasons,
		EvidenceSummary: EvidenceSummary{
			BuyerEvidenceCount:  len(c.BuyerEvidence),
			SellerEvidenceCount: len(c.SellerEvidence),
			ChatMessagesCount:   len(c.ChatHistory),
			BuyerEvidenceScore:  buyer.Score,
			SellerEvidenceScore: seller.Score,
			EvidenceGap:         gap,
			ChatRiskScore:       chat.RiskScore,
		},
		Recommendations: Recommendations(judgment.Resolution, confidence),
		Narrative:       narrative,
		Timestamp:       now,
	}
}

// finalConfidence lowers the base confidence by the weighted evidence gap, clamps it to
// the tuning band and truncates to an integer.
func (e *Engine) finalConfidence(base, gap int) int {
	adjusted := float64(base) - e.tuning.GapWeight*float64(gap)
	adjusted = math.Min(adjusted, float64(e.tuning.MaxConfidence))
	adjusted = math.Max(adjusted, float64(e.tuning.MinConfidence))
	return int(adjusted)
}

// NewCaseID derives a display identifier from the timestamp. It is not guaranteed unique.
func NewCaseID(t time.Time) string {
	return "CASE-" + t.Format("20060102150405")
}
