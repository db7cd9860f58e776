// Package health runs dependency liveness checks. Checks execute
// concurrently, each bounded by its own timeout, and aggregate worst-of-N:
// one unhealthy dependency makes the whole report unhealthy, one degraded
// dependency makes it degraded.
package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/griffin-labs/griffin-orchestrator/metrics"
)

var healthLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	healthLog = zerolog.New(out).With().Timestamp().Str("component", "health").Logger()
}

// Status is one of healthy, degraded, unhealthy.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of one dependency probe.
type CheckResult struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}

// Report is the aggregate of all probes.
type Report struct {
	Status    Status        `json:"status"`
	Checks    []CheckResult `json:"checks"`
	Timestamp time.Time     `json:"timestamp"`
}

// CheckFunc probes one dependency. It must honor ctx.
type CheckFunc func(ctx context.Context) error

type namedCheck struct {
	name     string
	critical bool
	fn       CheckFunc
}

// Checker runs registered probes. Critical dependencies report unhealthy on
// failure, the rest degrade.
type Checker struct {
	checks  []namedCheck
	timeout time.Duration
}

// NewChecker creates a Checker; timeout bounds each individual probe.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{timeout: timeout}
}

// Register adds a probe. Registration order is the report order.
func (c *Checker) Register(name string, critical bool, fn CheckFunc) {
	c.checks = append(c.checks, namedCheck{name: name, critical: critical, fn: fn})
}

// Check runs every probe concurrently and aggregates. It never returns an
// error; a failing probe becomes an unhealthy or degraded entry.
func (c *Checker) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(c.checks))
	var wg sync.WaitGroup
	for i, check := range c.checks {
		wg.Add(1)
		go func(slot int, nc namedCheck) {
			defer wg.Done()
			results[slot] = c.runOne(ctx, nc)
		}(i, check)
	}
	wg.Wait()

	aggregate := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			aggregate = StatusUnhealthy
		case StatusDegraded:
			if aggregate == StatusHealthy {
				aggregate = StatusDegraded
			}
		}
	}
	return Report{Status: aggregate, Checks: results, Timestamp: time.Now().UTC()}
}

func (c *Checker) runOne(ctx context.Context, nc namedCheck) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := safeCheck(checkCtx, nc.fn)
	latency := time.Since(start)

	result := CheckResult{Name: nc.name, Status: StatusHealthy, LatencyMs: latency.Milliseconds()}
	if err != nil {
		result.Error = err.Error()
		if nc.critical {
			result.Status = StatusUnhealthy
		} else {
			result.Status = StatusDegraded
		}
		healthLog.Warn().Str("check", nc.name).Err(err).Dur("latency", latency).
			Msg("dependency check failed")
	}
	metrics.HealthCheckStatus.WithLabelValues(nc.name).Set(statusValue(result.Status))
	return result
}

// safeCheck keeps a panicking probe from taking the report down with it.
func safeCheck(ctx context.Context, fn CheckFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func statusValue(s Status) float64 {
	switch s {
	case StatusHealthy:
		return 1
	case StatusDegraded:
		return 0.5
	}
	return 0
}

// Pinger is anything with a Ping, e.g. the redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck probes a Pinger.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// HTTPCheck probes an HTTP endpoint. Any response below 500 counts as alive;
// quote APIs routinely answer 4xx to bare probes.
func HTTPCheck(client *http.Client, url string) CheckFunc {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
		}
		return nil
	}
}
