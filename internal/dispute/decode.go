package dispute

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// UnmarshalJSON decodes a case field by field. A field with the wrong shape is left at its
// zero value; only a payload that is not a JSON object is rejected.
func (c *Case) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("case must be a JSON object: %w", err)
	}
	*c = Case{
		Amount:         decodeAmount(fields["amount"]),
		Description:    decodeString(fields["description"]),
		DisputeType:    DisputeType(decodeString(fields["dispute_type"])),
		BuyerClaim:     decodeString(fields["buyer_claim"]),
		SellerResponse: decodeString(fields["seller_response"]),
		ChatHistory:    decodeLines(fields["chat_history"]),
		BuyerEvidence:  decodeEvidence(fields["buyer_evidence"]),
		SellerEvidence: decodeEvidence(fields["seller_evidence"]),
	}
	return nil
}

func decodeAmount(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero
	}
	return d
}

func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// decodeLines keeps the string entries of an array and drops the rest.
func decodeLines(raw json.RawMessage) []string {
	var entries []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil || entries == nil {
		return nil
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		var line string
		if json.Unmarshal(entry, &line) == nil {
			lines = append(lines, line)
		}
	}
	return lines
}

// decodeEvidence keeps every object entry, zeroing fields of the wrong type.
func decodeEvidence(raw json.RawMessage) []EvidenceItem {
	var entries []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil || entries == nil {
		return nil
	}
	items := make([]EvidenceItem, 0, len(entries))
	for _, entry := range entries {
		var fields map[string]json.RawMessage
		if json.Unmarshal(entry, &fields) != nil || fields == nil {
			continue
		}
		items = append(items, EvidenceItem{
			Kind:    EvidenceKind(decodeString(fields["type"])),
			Content: decodeString(fields["content"]),
		})
	}
	return items
}
