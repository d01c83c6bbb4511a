package scoring

import "dispute-arbiter/internal/dispute"

// Judgment is the rule table outcome for a case.
type Judgment struct {
	Responsibility dispute.Responsibility `json:"responsibility"`
	Resolution     dispute.Resolution     `json:"resolution"`
	Confidence     int                    `json:"confidence"`
	Reason         string                 `json:"reason"`
}

var defaultJudgment = Judgment{
	Responsibility: dispute.ResponsibilityUnclear,
	Resolution:     dispute.ResolutionManualReview,
	Confidence:     40,
	Reason:         "insufficient evidence, manual review required",
}

// Judge applies the fixed decision table keyed by dispute type. Each type has at most
// one branch; when its guard fails the case falls through to the default judgment.
// Only evidence presence is considered, never its quality.
func Judge(c dispute.Case) Judgment {
	switch c.DisputeType {
	case dispute.TypeSellerNoShip:
		if !dispute.HasKind(c.SellerEvidence, dispute.EvidenceTracking) {
			return Judgment{
				Responsibility: dispute.ResponsibilitySeller,
				Resolution:     dispute.ResolutionFullRefund,
				Confidence:     85,
				Reason:         "seller provided no proof of shipment",
			}
		}
	case dispute.TypeDamaged:
		if dispute.HasKind(c.BuyerEvidence, dispute.EvidenceImage) {
			return Judgment{
				Responsibility: dispute.ResponsibilitySeller,
				Resolution:     dispute.ResolutionPartialRefund,
				Confidence:     70,
				Reason:         "buyer provided evidence of damage, partial refund suggested",
			}
		}
	case dispute.TypeNotReceived:
		if dispute.HasKind(c.SellerEvidence, dispute.EvidenceTracking) {
			return Judgment{
				Responsibility: dispute.ResponsibilityUnclear,
				Resolution:     dispute.ResolutionManualReview,
				Confidence:     50,
				Reason:         "seller has a shipping record, delivery status must be verified",
			}
		}
		return Judgment{
			Responsibility: dispute.ResponsibilitySeller,
			Resolution:     dispute.ResolutionFullRefund,
			Confidence:     80,
			Reason:         "seller cannot prove the item was shipped",
		}
	case dispute.TypeNotAsDescribed:
		if len(c.BuyerEvidence) > 0 && len(c.SellerEvidence) == 0 {
			return Judgment{
				Responsibility: dispute.ResponsibilitySeller,
				Resolution:     dispute.ResolutionPartialRefund,
				Confidence:     65,
				Reason:         "buyer provided evidence and seller did not rebut it",
			}
		}
	}
	return defaultJudgment
}
