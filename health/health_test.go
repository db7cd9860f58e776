package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zeebo/assert"
)

func TestCheckAllHealthy(t *testing.T) {
	checker := NewChecker(time.Second)
	checker.Register("a", true, func(ctx context.Context) error { return nil })
	checker.Register("b", false, func(ctx context.Context) error { return nil })

	report := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, 2, len(report.Checks))
	assert.Equal(t, "a", report.Checks[0].Name)
	assert.Equal(t, StatusHealthy, report.Checks[1].Status)
}

func TestCheckWorstOfN(t *testing.T) {
	checker := NewChecker(time.Second)
	checker.Register("ok", true, func(ctx context.Context) error { return nil })
	checker.Register("optional", false, func(ctx context.Context) error {
		return errors.New("rate limited")
	})

	report := checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)

	checker.Register("critical", true, func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	report = checker.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, "connection refused", report.Checks[2].Error)
}

func TestCheckBoundsSlowProbe(t *testing.T) {
	checker := NewChecker(50 * time.Millisecond)
	checker.Register("slow", true, func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	start := time.Now()
	report := checker.Check(context.Background())
	assert.True(t, time.Since(start) < time.Second)
	assert.Equal(t, StatusUnhealthy, report.Status)
}

func TestCheckRecoversPanic(t *testing.T) {
	checker := NewChecker(time.Second)
	checker.Register("panicky", false, func(ctx context.Context) error {
		panic("boom")
	})

	report := checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	assert.That(t, report.Checks[0].Error != "")
}

func TestHTTPCheck(t *testing.T) {
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer alive.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	client := &http.Client{Timeout: time.Second}
	assert.NoError(t, HTTPCheck(client, alive.URL)(context.Background()))
	assert.Error(t, HTTPCheck(client, broken.URL)(context.Background()))
	assert.Error(t, HTTPCheck(client, "http://127.0.0.1:1")(context.Background()))
}
