package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"dispute-arbiter/internal/dispute"
)

func TestEvaluateEvidence(t *testing.T) {
	scorer := NewScorer(DefaultProfile())

	image := dispute.EvidenceItem{Kind: dispute.EvidenceImage, Content: "photo"}
	text := dispute.EvidenceItem{Kind: dispute.EvidenceText, Content: "statement"}
	tracking := dispute.EvidenceItem{Kind: dispute.EvidenceTracking, Content: "SF1234567890"}

	tests := []struct {
		name     string
		items    []dispute.EvidenceItem
		expected int
		findings []string
	}{
		{"empty", nil, 30, []string{"no evidence provided"}},
		{"image only", []dispute.EvidenceItem{image}, 10, []string{
			"image evidence provided", "missing written statement", "missing shipping tracking",
		}},
		{"tracking only", []dispute.EvidenceItem{tracking}, 10, []string{
			"missing image evidence", "missing written statement", "shipping tracking provided",
		}},
		{"text only", []dispute.EvidenceItem{text, text}, 25, []string{
			"missing image evidence", "written statement provided", "missing shipping tracking",
		}},
		{"image and tracking floors at zero", []dispute.EvidenceItem{image, tracking}, 0, nil},
		{"full bundle floors at zero", []dispute.EvidenceItem{image, text, tracking}, 0, nil},
		{"unknown kind counts as submitted", []dispute.EvidenceItem{{Kind: "video"}}, 35, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := scorer.EvaluateEvidence(tc.items)
			if result.Score != tc.expected {
				t.Fatalf("expected score %d got %d", tc.expected, result.Score)
			}
			if result.Score < 0 {
				t.Fatalf("score must never be negative, got %d", result.Score)
			}
			if tc.findings != nil {
				if diff := cmp.Diff(tc.findings, result.Findings); diff != "" {
					t.Fatalf("findings mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestEvaluateEvidenceNeverNegative(t *testing.T) {
	profile := DefaultProfile()
	profile.Evidence.ImagePresent = 100
	profile.Evidence.TrackingPresent = 100
	scorer := NewScorer(profile)

	kinds := []dispute.EvidenceKind{dispute.EvidenceImage, dispute.EvidenceText, dispute.EvidenceTracking, "other"}
	for mask := 1; mask < 1<<len(kinds); mask++ {
		var items []dispute.EvidenceItem
		for i, kind := range kinds {
			if mask&(1<<i) != 0 {
				items = append(items, dispute.EvidenceItem{Kind: kind})
			}
		}
		if got := scorer.EvaluateEvidence(items).Score; got < 0 {
			t.Fatalf("mask %b: expected non-negative score got %d", mask, got)
		}
	}
}

func TestAnalyzeChat(t *testing.T) {
	scorer := NewScorer(DefaultProfile())

	tests := []struct {
		name     string
		lines    []string
		expected int
		findings []string
	}{
		{"empty", nil, 0, []string{"no chat record"}},
		{"neutral", []string{"buyer: when will it ship?", "seller: tomorrow"}, 0, []string{}},
		{"refusal only", []string{"不管了，拉黑你"}, 15, []string{"refusal to communicate detected: 不管, 拉黑"}},
		{"threat and promise", []string{"买家: 我要投诉你", "卖家: 保证全新未拆封"}, 20, []string{
			"threatening language detected: 投诉",
			"promise language found: 保证",
		}},
		{"all categories across lines", []string{"I will call the POLICE", "I promise it ships", "I'll just ignore you"}, 35, []string{
			"threatening language detected: police",
			"promise language found: i promise",
			"refusal to communicate detected: ignore you",
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := scorer.AnalyzeChat(tc.lines)
			if result.RiskScore != tc.expected {
				t.Fatalf("expected risk %d got %d", tc.expected, result.RiskScore)
			}
			if diff := cmp.Diff(tc.findings, result.Findings); diff != "" {
				t.Fatalf("findings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyzeChatRefusalScenario(t *testing.T) {
	result := NewScorer(DefaultProfile()).AnalyzeChat([]string{"不管了，拉黑你"})
	if len(result.Threats) != 0 || len(result.Promises) != 0 {
		t.Fatalf("expected no threat or promise matches, got %v %v", result.Threats, result.Promises)
	}
	if diff := cmp.Diff([]string{"不管", "拉黑"}, result.Refusals); diff != "" {
		t.Fatalf("refusals mismatch (-want +got):\n%s", diff)
	}
}
