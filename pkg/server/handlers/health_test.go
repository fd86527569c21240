package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/reviewgraph/pkg/graph"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(h gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	h(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestHealthCheck(t *testing.T) {
	w := run(NewHealthHandler(nil).HealthCheck, "/health")

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", response["status"])
	}
	if response["service"] != "reviewgraph" {
		t.Errorf("expected service reviewgraph, got %v", response["service"])
	}
	if _, ok := response["timestamp"]; !ok {
		t.Error("expected timestamp in response")
	}
	if _, ok := response["version"]; !ok {
		t.Error("expected version in response")
	}
}

func TestLivenessCheck(t *testing.T) {
	w := run(NewHealthHandler(nil).LivenessCheck, "/live")

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if response := decode(t, w); response["status"] != "alive" {
		t.Errorf("expected status alive, got %v", response["status"])
	}
}

func TestReadinessCheck(t *testing.T) {
	w := run(NewHealthHandler(nil).ReadinessCheck, "/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d without a graph, got %d", http.StatusServiceUnavailable, w.Code)
	}
	if response := decode(t, w); response["status"] != "not_ready" {
		t.Errorf("expected status not_ready, got %v", response["status"])
	}

	w = run(NewHealthHandler(graph.New()).ReadinessCheck, "/ready")
	if w.Code != http.StatusOK {
		t.Errorf("expected status %d with a graph, got %d", http.StatusOK, w.Code)
	}
	response := decode(t, w)
	if _, ok := response["graph"]; !ok {
		t.Error("expected graph counts in response")
	}
}

func TestDetailedHealthCheck(t *testing.T) {
	w := run(NewHealthHandler(graph.New()).DetailedHealthCheck, "/health/detailed")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decode(t, w)
	checks, ok := response["checks"].(map[string]any)
	if !ok {
		t.Fatal("expected checks in response")
	}
	for _, key := range []string{"graph", "system"} {
		if _, ok := checks[key]; !ok {
			t.Errorf("expected %s check", key)
		}
	}
}

func TestGetSystemMetrics(t *testing.T) {
	m := getSystemMetrics()
	if m.Goroutines <= 0 {
		t.Error("expected positive goroutine count")
	}
	if m.MemoryUsage == "" {
		t.Error("expected memory usage")
	}
}
