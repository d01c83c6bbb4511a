package arbitration

import "dispute-arbiter/internal/dispute"

// Recommendations returns a confidence-banded action followed by resolution-specific guidance.
func Recommendations(resolution dispute.Resolution, confidence int) []string {
	out := make([]string, 0, 3)
	switch {
	case confidence >= 80:
		out = append(out, "High confidence: the arbitration decision can be executed directly")
	case confidence >= 60:
		out = append(out, "Medium confidence: human review is recommended before execution")
	default:
		out = append(out, "Low confidence: an in-depth human review is strongly required")
	}

	switch resolution {
	case dispute.ResolutionManualReview:
		out = append(out,
			"Contact both parties to request additional evidence",
			"Consider a video call to verify the situation",
		)
	case dispute.ResolutionPartialRefund:
		out = append(out,
			"Suggested refund range: 30-70%",
			"Consider refunding after the buyer returns the item",
		)
	}
	return out
}
