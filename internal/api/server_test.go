package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trollornot/troll-analyzer/internal/auth"
	"github.com/trollornot/troll-analyzer/internal/enhance"
	"github.com/trollornot/troll-analyzer/pkg/models"
)

type fakeEnhancer struct {
	analysis *enhance.Analysis
	err      error
}

func (f *fakeEnhancer) Enhance(ctx context.Context, req enhance.Request) (*enhance.Analysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.analysis, nil
}

func (f *fakeEnhancer) ExtractConversation(ctx context.Context, imageBase64, mediaType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "Alice: hi\nBob: hello", nil
}

func newTestServer(enhancer Enhancer) *Server {
	return NewServer(ServerConfig{
		AuthService: auth.NewJWTService(auth.Config{
			SecretKey: "test-secret",
			AdminKey:  "test-admin-key",
		}),
		Enhancer: enhancer,
	})
}

func postJSON(t *testing.T, server *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(nil)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandleAnalyze_MissingConversation(t *testing.T) {
	server := newTestServer(nil)

	rec := postJSON(t, server, "/api/v1/analyze", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Conversation text is required") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestHandleAnalyze_TooShort(t *testing.T) {
	server := newTestServer(nil)

	rec := postJSON(t, server, "/api/v1/analyze", map[string]string{"conversation": "hi   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too short") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestHandleAnalyze_RuleBased(t *testing.T) {
	server := newTestServer(nil)

	conversation := "Alice: hey, how was the game last night?\nBob: pretty good, we won in overtime"
	rec := postJSON(t, server, "/api/v1/analyze", map[string]string{"conversation": conversation})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Success {
		t.Error("expected success")
	}
	if len(resp.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(resp.Messages))
	}
	if resp.Platform != models.PlatformGeneric {
		t.Errorf("expected generic platform, got %s", resp.Platform)
	}
	if resp.ParticipantCount != 2 {
		t.Errorf("expected 2 participants, got %d", resp.ParticipantCount)
	}
	if resp.Verdict != models.VerdictGenuine {
		t.Errorf("expected genuine verdict, got %s", resp.Verdict)
	}
	if resp.LLMEnhanced {
		t.Error("expected llmEnhanced false without an enhancer")
	}
	if resp.Recommendation == "" {
		t.Error("expected a recommendation")
	}
}

func TestHandleAnalyze_EnhancerOverride(t *testing.T) {
	server := newTestServer(&fakeEnhancer{
		analysis: &enhance.Analysis{
			AdjustedScore:   77,
			AdjustedVerdict: models.VerdictTrolling,
			Reasoning:       []string{"clear bait throughout"},
			Recommendation:  "Walk away.",
		},
	})

	conversation := "Alice: hey, how was the game last night?\nBob: pretty good, we won in overtime"
	rec := postJSON(t, server, "/api/v1/analyze", map[string]string{"conversation": conversation})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.OverallScore != 77 {
		t.Errorf("expected adjusted score 77, got %d", resp.OverallScore)
	}
	if resp.Verdict != models.VerdictTrolling {
		t.Errorf("expected adjusted verdict trolling, got %s", resp.Verdict)
	}
	if !resp.LLMEnhanced {
		t.Error("expected llmEnhanced true")
	}
	if resp.Recommendation != "Walk away." {
		t.Errorf("expected adjusted recommendation, got %q", resp.Recommendation)
	}
	if len(resp.Reasoning) != 1 || resp.Reasoning[0] != "clear bait throughout" {
		t.Errorf("expected adjusted reasoning, got %v", resp.Reasoning)
	}
}

func TestHandleAnalyze_EnhancerFailureFallsBack(t *testing.T) {
	server := newTestServer(&fakeEnhancer{err: errors.New("api down")})

	conversation := "Alice: hey, how was the game last night?\nBob: pretty good, we won in overtime"
	rec := postJSON(t, server, "/api/v1/analyze", map[string]string{"conversation": conversation})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Success {
		t.Error("expected success despite enhancer failure")
	}
	if resp.LLMEnhanced {
		t.Error("expected llmEnhanced false after enhancer failure")
	}
	if resp.Verdict != models.VerdictGenuine {
		t.Errorf("expected rule-based verdict, got %s", resp.Verdict)
	}
}

func TestHandleExtract_NotConfigured(t *testing.T) {
	server := newTestServer(nil)

	req := httptest.NewRequest("POST", "/api/v1/extract", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHandleAdminLogin(t *testing.T) {
	server := newTestServer(nil)

	rec := postJSON(t, server, "/api/v1/admin/login", map[string]string{"key": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong key, got %d", rec.Code)
	}

	rec = postJSON(t, server, "/api/v1/admin/login", map[string]string{"key": "test-admin-key"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected non-empty token")
	}
}

func TestHandleAdminStats_RequiresAuth(t *testing.T) {
	server := newTestServer(nil)

	req := httptest.NewRequest("GET", "/api/v1/admin/stats", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestHandleAdminStats_NoStorage(t *testing.T) {
	server := newTestServer(nil)

	login := postJSON(t, server, "/api/v1/admin/login", map[string]string{"key": "test-admin-key"})
	var resp loginResponse
	if err := json.Unmarshal(login.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without storage, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	if ip := clientIP(req); ip != "9.9.9.9" {
		t.Errorf("expected first forwarded IP, got %s", ip)
	}

	req = httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-Real-IP", "8.8.8.8")
	if ip := clientIP(req); ip != "8.8.8.8" {
		t.Errorf("expected X-Real-IP, got %s", ip)
	}
}
