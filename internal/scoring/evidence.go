package scoring

import (
	"strings"

	"dispute-arbiter/internal/dispute"
)

// EvidenceResult captures the completeness score of one party's evidence bundle.
// Lower scores mean stronger evidence.
type EvidenceResult struct {
	Score    int      `json:"score"`
	Findings []string `json:"findings"`
}

// ChatResult captures risk signals found in a chat transcript.
type ChatResult struct {
	RiskScore int      `json:"risk_score"`
	Findings  []string `json:"findings"`
	Threats   []string `json:"threats,omitempty"`
	Promises  []string `json:"promises,omitempty"`
	Refusals  []string `json:"refusals,omitempty"`
}

// Scorer evaluates evidence bundles and chat transcripts against a fixed profile.
type Scorer struct {
	evidence EvidenceWeights
	chat     ChatProfile
}

// NewScorer copies the profile so later changes to the caller's value are not observed.
func NewScorer(profile Profile) *Scorer {
	chat := profile.Chat
	chat.ThreatKeywords = cloneStrings(chat.ThreatKeywords)
	chat.PromiseKeywords = cloneStrings(chat.PromiseKeywords)
	chat.RefusalKeywords = cloneStrings(chat.RefusalKeywords)
	return &Scorer{evidence: profile.Evidence, chat: chat}
}

// EvaluateEvidence scores an evidence bundle by which kinds are present.
// Checks run in a fixed order: image, text, tracking.
func (s *Scorer) EvaluateEvidence(items []dispute.EvidenceItem) EvidenceResult {
	w := s.evidence
	if len(items) == 0 {
		return EvidenceResult{Score: w.EmptyScore, Findings: []string{"no evidence provided"}}
	}

	score := 0
	findings := make([]string, 0, 3)

	if dispute.HasKind(items, dispute.EvidenceImage) {
		findings = append(findings, "image evidence provided")
		score -= w.ImagePresent
	} else {
		findings = append(findings, "missing image evidence")
		score += w.ImageMissing
	}

	if dispute.HasKind(items, dispute.EvidenceText) {
		findings = append(findings, "written statement provided")
	} else {
		findings = append(findings, "missing written statement")
		score += w.TextMissing
	}

	if dispute.HasKind(items, dispute.EvidenceTracking) {
		findings = append(findings, "shipping tracking provided")
		score -= w.TrackingPresent
	} else {
		findings = append(findings, "missing shipping tracking")
		score += w.TrackingMissing
	}

	if score < 0 {
		score = 0
	}
	return EvidenceResult{Score: score, Findings: findings}
}

// AnalyzeChat scans the transcript for threats, promises and refusals to communicate.
func (s *Scorer) AnalyzeChat(lines []string) ChatResult {
	if len(lines) == 0 {
		return ChatResult{RiskScore: 0, Findings: []string{"no chat record"}}
	}

	text := strings.ToLower(strings.Join(lines, " "))
	result := ChatResult{Findings: make([]string, 0, 3)}

	if hits := matchKeywords(text, s.chat.ThreatKeywords); len(hits) > 0 {
		result.RiskScore += s.chat.ThreatScore
		result.Threats = hits
		result.Findings = append(result.Findings, "threatening language detected: "+strings.Join(hits, ", "))
	}
	if hits := matchKeywords(text, s.chat.PromiseKeywords); len(hits) > 0 {
		result.Promises = hits
		result.Findings = append(result.Findings, "promise language found: "+strings.Join(hits, ", "))
	}
	if hits := matchKeywords(text, s.chat.RefusalKeywords); len(hits) > 0 {
		result.RiskScore += s.chat.RefusalScore
		result.Refusals = hits
		result.Findings = append(result.Findings, "refusal to communicate detected: "+strings.Join(hits, ", "))
	}
	return result
}

func matchKeywords(text string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
