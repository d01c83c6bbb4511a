package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"dispute-arbiter/internal/arbitration"
	"dispute-arbiter/internal/dispute"
	"dispute-arbiter/internal/store"
)

// HealthResponse is returned by the liveness endpoints.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	History   bool      `json:"history"`
	Timestamp time.Time `json:"timestamp"`
}

// TypesResponse lists the supported dispute categories.
type TypesResponse struct {
	DisputeTypes []dispute.Label `json:"dispute_types"`
}

// CasesResponse is the paginated verdict history.
type CasesResponse struct {
	Items []CaseDTO `json:"items"`
	Total int64     `json:"total"`
}

// StatsResponse aggregates stored verdicts.
type StatsResponse struct {
	Responsibilities []store.ResponsibilityCount `json:"responsibilities"`
	Tuning           arbitration.Tuning          `json:"tuning"`
	StreamClients    int                         `json:"stream_clients"`
}

// CaseDTO is the API representation for a persisted verdict.
type CaseDTO struct {
	ID                 uint                         `json:"id"`
	CaseID             string                       `json:"case_id"`
	RequestID          string                       `json:"request_id,omitempty"`
	DisputeType        string                       `json:"dispute_type"`
	Amount             string                       `json:"amount"`
	Responsibility     string                       `json:"responsibility"`
	ResponsibilityText string                       `json:"responsibility_text"`
	Resolution         string                       `json:"resolution"`
	ResolutionText     string                       `json:"resolution_text"`
	Confidence         int                          `json:"confidence"`
	BaseConfidence     int                          `json:"base_confidence"`
	DetailedReasons    []string                     `json:"detailed_reasons"`
	Recommendations    []string                     `json:"recommendations"`
	EvidenceSummary    *arbitration.EvidenceSummary `json:"evidence_summary,omitempty"`
	Narrative          string                       `json:"narrative,omitempty"`
	ProcessingTimeMs   int64                        `json:"processing_time_ms"`
	Timestamp          time.Time                    `json:"timestamp"`
}

// CaseFromRecord converts a store.VerdictRecord into the DTO representation.
func CaseFromRecord(r store.VerdictRecord) CaseDTO {
	dto := CaseDTO{
		ID:                 r.ID,
		CaseID:             r.CaseID,
		RequestID:          r.RequestID,
		DisputeType:        r.DisputeType,
		Amount:             r.Amount,
		Responsibility:     r.Responsibility,
		ResponsibilityText: dispute.Responsibility(r.Responsibility).Label(),
		Resolution:         r.Resolution,
		ResolutionText:     dispute.Resolution(r.Resolution).Label(),
		Confidence:         r.Confidence,
		BaseConfidence:     r.BaseConfidence,
		DetailedReasons:    r.Reasons(),
		Recommendations:    r.Recommendations(),
		Narrative:          strings.TrimSpace(r.Narrative),
		ProcessingTimeMs:   r.ProcessingTimeMs,
		Timestamp:          r.DecidedAt,
	}
	if r.SummaryJSON != "" {
		var summary arbitration.EvidenceSummary
		if err := json.Unmarshal([]byte(r.SummaryJSON), &summary); err == nil {
			dto.EvidenceSummary = &summary
		}
	}
	if dto.DetailedReasons == nil {
		dto.DetailedReasons = []string{}
	}
	if dto.Recommendations == nil {
		dto.Recommendations = []string{}
	}
	return dto
}

// RecordFromVerdict builds the history row for a verdict and the case it was computed from.
func RecordFromVerdict(v arbitration.Verdict, c dispute.Case, requestID string, elapsed time.Duration) *store.VerdictRecord {
	record := &store.VerdictRecord{
		CaseID:           v.CaseID,
		RequestID:        requestID,
		DisputeType:      string(v.DisputeType),
		Amount:           c.Amount.String(),
		Responsibility:   string(v.Responsibility),
		Resolution:       string(v.Resolution),
		Confidence:       v.Confidence,
		BaseConfidence:   v.BaseConfidence,
		Narrative:        v.Narrative,
		ProcessingTimeMs: elapsed.Milliseconds(),
		DecidedAt:        v.Timestamp,
	}
	record.SetReasons(v.DetailedReasons)
	record.SetRecommendations(v.Recommendations)

	if payload, err := json.Marshal(v.EvidenceSummary); err == nil {
		record.SummaryJSON = string(payload)
	}
	if payload, err := json.Marshal(c); err == nil {
		record.CaseJSON = string(payload)
	} else {
		logrus.WithError(err).WithField("case_id", v.CaseID).Warn("encode case payload")
	}
	return record
}
