package dispute

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DisputeType classifies what the buyer and seller disagree about.
type DisputeType string

const (
	TypeNotReceived    DisputeType = "not_received"
	TypeNotAsDescribed DisputeType = "not_as_described"
	TypeDamaged        DisputeType = "damaged"
	TypeFake           DisputeType = "fake"
	TypeSellerNoShip   DisputeType = "seller_no_ship"
	TypeBuyerNoPay     DisputeType = "buyer_no_pay"
	TypeOther          DisputeType = "other"
)

// Responsibility names the party held accountable by a verdict.
type Responsibility string

const (
	ResponsibilitySeller   Responsibility = "seller"
	ResponsibilityBuyer    Responsibility = "buyer"
	ResponsibilityBoth     Responsibility = "both"
	ResponsibilityPlatform Responsibility = "platform"
	ResponsibilityUnclear  Responsibility = "unclear"
)

// Resolution is the remedial action recommended for a case.
type Resolution string

const (
	ResolutionFullRefund    Resolution = "full_refund"
	ResolutionPartialRefund Resolution = "partial_refund"
	ResolutionReleaseFunds  Resolution = "release_funds"
	ResolutionExtendEscrow  Resolution = "extend_escrow"
	ResolutionManualReview  Resolution = "manual_review"
)

// EvidenceKind is the category of a single evidence item.
type EvidenceKind string

const (
	EvidenceImage    EvidenceKind = "image"
	EvidenceText     EvidenceKind = "text"
	EvidenceTracking EvidenceKind = "tracking"
)

// EvidenceItem is one proof item submitted by a party.
type EvidenceItem struct {
	Kind    EvidenceKind `json:"type"`
	Content string       `json:"content"`
}

// Case is one disputed transaction submitted for arbitration.
type Case struct {
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	DisputeType    DisputeType     `json:"dispute_type"`
	BuyerClaim     string          `json:"buyer_claim"`
	SellerResponse string          `json:"seller_response"`
	ChatHistory    []string        `json:"chat_history"`
	BuyerEvidence  []EvidenceItem  `json:"buyer_evidence"`
	SellerEvidence []EvidenceItem  `json:"seller_evidence"`
}

// HasKind reports whether any item in the bundle is of the given kind.
func HasKind(items []EvidenceItem, kind EvidenceKind) bool {
	for _, item := range items {
		if EvidenceKind(strings.ToLower(strings.TrimSpace(string(item.Kind)))) == kind {
			return true
		}
	}
	return false
}

// Label pairs an enum value with its display text.
type Label struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var disputeTypeLabels = []Label{
	{Value: string(TypeNotReceived), Label: "Item not received"},
	{Value: string(TypeNotAsDescribed), Label: "Item not as described"},
	{Value: string(TypeDamaged), Label: "Item damaged"},
	{Value: string(TypeFake), Label: "Counterfeit item"},
	{Value: string(TypeSellerNoShip), Label: "Seller did not ship"},
	{Value: string(TypeBuyerNoPay), Label: "Buyer did not pay"},
	{Value: string(TypeOther), Label: "Other dispute"},
}

var responsibilityLabels = map[Responsibility]string{
	ResponsibilitySeller:   "Seller responsible",
	ResponsibilityBuyer:    "Buyer responsible",
	ResponsibilityBoth:     "Both parties responsible",
	ResponsibilityPlatform: "Platform responsible",
	ResponsibilityUnclear:  "Responsibility unclear",
}

var resolutionLabels = map[Resolution]string{
	ResolutionFullRefund:    "Full refund to buyer",
	ResolutionPartialRefund: "Partial refund",
	ResolutionReleaseFunds:  "Release funds to seller",
	ResolutionExtendEscrow:  "Extend escrow period",
	ResolutionManualReview:  "Manual in-depth review required",
}

// DisputeTypes returns the dispute type catalog in declaration order.
func DisputeTypes() []Label {
	out := make([]Label, len(disputeTypeLabels))
	copy(out, disputeTypeLabels)
	return out
}

// Label returns the display text for a dispute type, or "Unknown".
func (t DisputeType) Label() string {
	for _, l := range disputeTypeLabels {
		if l.Value == string(t) {
			return l.Label
		}
	}
	return "Unknown"
}

// Valid reports whether the dispute type is part of the closed enum.
func (t DisputeType) Valid() bool {
	return t.Label() != "Unknown"
}

// Label returns the display text for a responsibility, or the raw value when unknown.
func (r Responsibility) Label() string {
	if label, ok := responsibilityLabels[r]; ok {
		return label
	}
	return string(r)
}

// Label returns the display text for a resolution, or the raw value when unknown.
func (r Resolution) Label() string {
	if label, ok := resolutionLabels[r]; ok {
		return label
	}
	return string(r)
}
