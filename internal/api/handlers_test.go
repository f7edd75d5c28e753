package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"elliott-wave-analyzer/config"
	"elliott-wave-analyzer/internal/elliott"
)

func newTestServer(serverCfg config.ServerConfig) *Server {
	analysisCfg := config.AnalysisConfig{
		DefaultSensitivity: 0.5,
		MaxSeriesLength:    1000,
	}
	return NewServer(serverCfg, analysisCfg, elliott.NewAnalyzer(), nil, nil, zerolog.Nop())
}

func analyzeBody(t *testing.T, n int) *bytes.Buffer {
	t.Helper()
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)*0.5
	}
	body, err := json.Marshal(AnalyzeRequest{Prices: prices})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", response["status"])
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", analyzeBody(t, 60))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var response AnalyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Analysis == nil {
		t.Fatal("analysis missing from response")
	}
	if response.Analysis.CurrentWave.CurrentWave == "" {
		t.Error("current wave missing from analysis")
	}
	if response.Targets == nil {
		t.Error("price targets missing from response")
	}
	if response.RequestID == "" {
		t.Error("request id missing from response")
	}
	if response.Cached {
		t.Error("first response must not be marked cached")
	}
}

func TestAnalyzeRejectsShortSeries(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", analyzeBody(t, 10))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["minimum"] != float64(elliott.MinDataPoints) {
		t.Errorf("minimum = %v, want %d", response["minimum"], elliott.MinDataPoints)
	}
}

func TestAnalyzeRejectsOversizedSeries(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", analyzeBody(t, 1500))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAnalyzeRejectsInvalidBody(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestFibonacciEndpoint(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fibonacci", analyzeBody(t, 60))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	var snapshot elliott.FibonacciSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	// A rising series always yields at least a synthetic impulse.
	if len(snapshot.Impulse) == 0 {
		t.Error("impulse level table missing")
	}
}

func TestFibonacciRejectsOversizedSeries(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fibonacci", analyzeBody(t, 1500))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["limit"] != float64(1000) {
		t.Errorf("limit = %v, want 1000", response["limit"])
	}
}

func TestAnalysesByDigestWithoutRepository(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/by-digest?digest=abc", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestRecentAnalysesWithoutRepository(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/recent", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestRateLimiting(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true, RateLimit: 2})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", analyzeBody(t, 60))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		server.Router().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", analyzeBody(t, 60))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after the limit", w.Code)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	server := newTestServer(config.ServerConfig{ProductionMode: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "test-request-42")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "test-request-42" {
		t.Errorf("X-Request-ID = %q, want the caller's id echoed", got)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	limiter := NewRateLimiter(1, 50*time.Millisecond)

	if !limiter.Allow("key") {
		t.Fatal("first request must pass")
	}
	if limiter.Allow("key") {
		t.Fatal("second request inside the window must fail")
	}
	if !limiter.Allow("other") {
		t.Error("limits are per key")
	}
}
