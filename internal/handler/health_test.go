package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/peladahub/pelada-service/internal/handler"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("pool exhausted") }

func TestHealth_Liveness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewHealthHandler(stubPingerNoop{})
	r.GET("/live", h.Liveness)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHealth_Readiness(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("ready", func(t *testing.T) {
		r := gin.New()
		r.GET("/ready", handler.NewHealthHandler(stubPingerNoop{}).Readiness)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		r := gin.New()
		r.GET("/ready", handler.NewHealthHandler(failingPinger{}).Readiness)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
	})
}
