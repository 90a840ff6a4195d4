package main

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/heartform/internal/config"
)

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		Port:           "0",
		GinMode:        gin.TestMode,
		APIURL:         apiURL,
		PredictTimeout: time.Second,
		WakeTimeout:    time.Second,
		SessionTTL:     time.Minute,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func TestRouterHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, store, err := setupRouter(testConfig("http://127.0.0.1:0"), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer store.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouterReadyzFollowsWakeProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	router, store, err := setupRouter(testConfig(upstream.URL), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer store.Close()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before any page load, got %d", w.Code)
	}

	// Loading the page starts a session, which fires the wake probe.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected page to render, got %d", w.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/readyz", nil))
		if w.Code == http.StatusOK {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("service never became ready, last status %d", w.Code)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}
}

func TestRouterServesFieldCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, store, err := setupRouter(testConfig("http://127.0.0.1:0"), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer store.Close()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/fields", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"Thallium"`) {
		t.Fatalf("catalog missing Thallium: %s", w.Body.String())
	}
}
