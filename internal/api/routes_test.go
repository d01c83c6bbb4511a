package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"dispute-arbiter/internal/arbitration"
	"dispute-arbiter/internal/dispute"
	"dispute-arbiter/internal/store"
)

var fixedNow = time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)

const damagedCase = `{
	"amount": "120.50",
	"description": "ceramic vase",
	"dispute_type": "damaged",
	"buyer_claim": "arrived broken",
	"seller_response": "it was packed well",
	"chat_history": ["please refund", "not my problem"],
	"buyer_evidence": [{"type": "image", "content": "photo.jpg"}, {"type": "text", "content": "statement"}],
	"seller_evidence": [{"type": "tracking", "content": "SF123"}]
}`

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, withStore bool) (*Server, *gin.Engine) {
	t.Helper()
	cfg := Config{
		Engine: arbitration.NewEngine(nil, arbitration.WithClock(func() time.Time { return fixedNow })),
	}
	if withStore {
		db, err := store.Open(filepath.Join(t.TempDir(), "arbiter.db"), true)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		cfg.Store = db
	}
	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	router, err := server.Router()
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return server, router
}

func doRequest(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresEngine(t *testing.T) {
	if _, err := NewServer(Config{}); err == nil {
		t.Fatalf("expected error without engine")
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, router := newTestServer(t, false)
	for _, path := range []string{"/health", "/api/healthz"} {
		rec := doRequest(router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
		var resp HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != "ok" || resp.Service != serviceName || resp.History {
			t.Fatalf("%s: unexpected body %+v", path, resp)
		}
	}
}

func TestTypesEndpoint(t *testing.T) {
	_, router := newTestServer(t, false)
	rec := doRequest(router, http.MethodGet, "/api/dispute/types", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var resp TypesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(dispute.DisputeTypes(), resp.DisputeTypes); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeReturnsVerdict(t *testing.T) {
	_, router := newTestServer(t, false)
	rec := doRequest(router, http.MethodPost, "/api/dispute/analyze", damagedCase, map[string]string{requestIDHeader: "req-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(requestIDHeader); got != "req-1" {
		t.Fatalf("expected request id echo got %q", got)
	}

	var verdict arbitration.Verdict
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if verdict.CaseID != "CASE-20261019150405" {
		t.Fatalf("unexpected case id %s", verdict.CaseID)
	}
	if verdict.Responsibility != dispute.ResponsibilitySeller || verdict.Resolution != dispute.ResolutionPartialRefund {
		t.Fatalf("unexpected outcome %s/%s", verdict.Responsibility, verdict.Resolution)
	}
	// buyer 0 (image and text, no tracking), seller 10 (tracking only)
	if verdict.EvidenceSummary.EvidenceGap != 10 || verdict.Confidence != 65 {
		t.Fatalf("expected gap 10 confidence 65 got %d/%d", verdict.EvidenceSummary.EvidenceGap, verdict.Confidence)
	}
	if verdict.Narrative != "" {
		t.Fatalf("expected no narrative without an advisor")
	}
}

func TestAnalyzeGeneratesRequestID(t *testing.T) {
	_, router := newTestServer(t, false)
	rec := doRequest(router, http.MethodPost, "/api/dispute/analyze", `{"dispute_type":"other"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if id := rec.Header().Get(requestIDHeader); len(id) != 36 {
		t.Fatalf("expected generated uuid got %q", id)
	}
}

func TestAnalyzeRejectsBadBody(t *testing.T) {
	_, router := newTestServer(t, false)
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"malformed", "{not json"},
		{"array", `[1, 2]`},
		{"string", `"case"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodPost, "/api/dispute/analyze", tc.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "error") {
				t.Fatalf("expected error body got %s", rec.Body.String())
			}
		})
	}
}

func TestAnalyzeDefaultsMalformedFields(t *testing.T) {
	_, router := newTestServer(t, true)
	tests := []struct {
		name           string
		body           string
		responsibility dispute.Responsibility
		buyerCount     int
		chatCount      int
		buyerScore     int
	}{
		{"amount with currency", `{"dispute_type":"seller_no_ship","amount":"12.5 cUSD"}`, dispute.ResponsibilitySeller, 0, 0, 30},
		{"chat history as string", `{"chat_history":"hello"}`, dispute.ResponsibilityUnclear, 0, 0, 30},
		{"evidence kind as number", `{"buyer_evidence":[{"type":1}]}`, dispute.ResponsibilityUnclear, 1, 0, 35},
		{"explicit nulls", `{"amount":null,"chat_history":null,"seller_evidence":null}`, dispute.ResponsibilityUnclear, 0, 0, 30},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(router, http.MethodPost, "/api/dispute/analyze", tc.body, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
			}
			var v arbitration.Verdict
			if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if v.Responsibility != tc.responsibility {
				t.Fatalf("expected %s got %s", tc.responsibility, v.Responsibility)
			}
			s := v.EvidenceSummary
			if s.BuyerEvidenceCount != tc.buyerCount || s.ChatMessagesCount != tc.chatCount || s.BuyerEvidenceScore != tc.buyerScore {
				t.Fatalf("unexpected summary %+v", s)
			}
		})
	}

	rec := doRequest(router, http.MethodGet, "/api/dispute/cases?dispute_type=seller_no_ship", "", nil)
	var list CasesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || list.Items[0].Amount != "0" {
		t.Fatalf("expected one stored case with zero amount got %+v", list)
	}
}

func TestHistoryDisabledWithoutStore(t *testing.T) {
	_, router := newTestServer(t, false)
	for _, path := range []string{"/api/dispute/cases", "/api/dispute/cases/CASE-1", "/api/dispute/stats"} {
		rec := doRequest(router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503 got %d", path, rec.Code)
		}
	}
}

func TestAnalyzePersistsHistory(t *testing.T) {
	_, router := newTestServer(t, true)
	for i := 0; i < 2; i++ {
		rec := doRequest(router, http.MethodPost, "/api/dispute/analyze", damagedCase, map[string]string{requestIDHeader: "req-damaged"})
		if rec.Code != http.StatusOK {
			t.Fatalf("analyze: expected 200 got %d", rec.Code)
		}
	}
	rec := doRequest(router, http.MethodPost, "/api/dispute/analyze", `{"dispute_type":"fake"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze: expected 200 got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/api/dispute/cases?pageSize=2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", rec.Code)
	}
	var list CasesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 3 || len(list.Items) != 2 {
		t.Fatalf("expected total 3 page 2 got %d/%d", list.Total, len(list.Items))
	}
	if list.Items[0].DisputeType != "fake" || list.Items[0].Responsibility != "unclear" {
		t.Fatalf("expected newest verdict first got %+v", list.Items[0])
	}

	rec = doRequest(router, http.MethodGet, "/api/dispute/cases?responsibility=seller", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode filtered list: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected 2 seller verdicts got %d", list.Total)
	}

	rec = doRequest(router, http.MethodGet, "/api/dispute/cases/CASE-20261019150405", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200 got %d", rec.Code)
	}
	var got CaseDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode case: %v", err)
	}
	if got.DisputeType != "fake" || got.ResponsibilityText != dispute.ResponsibilityUnclear.Label() {
		t.Fatalf("expected latest verdict for shared case id got %+v", got)
	}
	if got.EvidenceSummary == nil || got.EvidenceSummary.BuyerEvidenceScore != 30 {
		t.Fatalf("expected stored evidence summary got %+v", got.EvidenceSummary)
	}

	rec = doRequest(router, http.MethodGet, "/api/dispute/cases/CASE-missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing: expected 404 got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/api/dispute/stats", "", nil)
	var stats StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	want := []store.ResponsibilityCount{{Responsibility: "seller", Total: 2}, {Responsibility: "unclear", Total: 1}}
	if diff := cmp.Diff(want, stats.Responsibilities); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	if stats.StreamClients != 0 {
		t.Fatalf("expected no stream clients got %d", stats.StreamClients)
	}
	if stats.Tuning != arbitration.DefaultTuning() {
		t.Fatalf("unexpected tuning %+v", stats.Tuning)
	}
}

func TestStreamBroadcastsVerdicts(t *testing.T) {
	server, router := newTestServer(t, false)
	ts := httptest.NewServer(router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/dispute/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for server.notifier.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("websocket client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/api/dispute/analyze", "application/json", strings.NewReader(damagedCase))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event VerdictEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != "verdict" || event.Verdict == nil || event.Verdict.CaseID != "CASE-20261019150405" {
		t.Fatalf("unexpected event %+v", event)
	}

	// a client connecting later first receives the latest verdict
	late, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial late client: %v", err)
	}
	defer late.Close()
	_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
	var replay VerdictEvent
	if err := late.ReadJSON(&replay); err != nil {
		t.Fatalf("read replay: %v", err)
	}
	if replay.Type != "latest" || replay.Verdict == nil || replay.Verdict.Confidence != event.Verdict.Confidence {
		t.Fatalf("unexpected replay %+v", replay)
	}
}
