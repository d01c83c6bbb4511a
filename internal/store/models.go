package store

import (
	"encoding/json"
	"strings"
	"time"
)

// VerdictRecord is one arbitration outcome persisted for history queries.
// Case ids are derived from timestamps, so several rows may share one.
type VerdictRecord struct {
	ID                  uint   `gorm:"primaryKey"`
	CaseID              string `gorm:"size:32;index"`
	RequestID           string `gorm:"size:64"`
	DisputeType         string `gorm:"size:32;index"`
	Amount              string `gorm:"size:64"`
	Responsibility      string `gorm:"size:16;index"`
	Resolution          string `gorm:"size:16"`
	Confidence          int
	BaseConfidence      int
	ReasonsJSON         string `gorm:"type:text"`
	RecommendationsJSON string `gorm:"type:text"`
	SummaryJSON         string `gorm:"type:text"`
	CaseJSON            string `gorm:"type:text"`
	Narrative           string `gorm:"type:text"`
	ProcessingTimeMs    int64
	DecidedAt           time.Time
	CreatedAt           time.Time `gorm:"autoCreateTime"`
}

// SetReasons stores the detailed reasons as JSON.
func (r *VerdictRecord) SetReasons(reasons []string) {
	r.ReasonsJSON = encodeStrings(reasons)
}

// Reasons decodes the stored detailed reasons.
func (r *VerdictRecord) Reasons() []string {
	return decodeStrings(r.ReasonsJSON)
}

// SetRecommendations stores the recommendations as JSON.
func (r *VerdictRecord) SetRecommendations(recs []string) {
	r.RecommendationsJSON = encodeStrings(recs)
}

// Recommendations decodes the stored recommendations.
func (r *VerdictRecord) Recommendations() []string {
	return decodeStrings(r.RecommendationsJSON)
}

func encodeStrings(values []string) string {
	if values == nil {
		return "[]"
	}
	payload, _ := json.Marshal(values)
	return string(payload)
}

func decodeStrings(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
