// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     health
// Description: Named probes for engines, summarizer and history backend
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package health

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status of one probe or of the whole report
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// rank orders statuses from best to worst
func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// DefaultProbeTimeout bounds a single probe
const DefaultProbeTimeout = 3 * time.Second

// Probe inspects one capability
type Probe func(ctx context.Context) (Status, string)

// Check is a named probe
type Check struct {
	Name  string
	Probe Probe
}

// Result is the outcome of one check
type Result struct {
	Name      string  `json:"name"`
	Status    Status  `json:"status"`
	Message   string  `json:"message,omitempty"`
	LatencyMS float64 `json:"latency_ms"`
}

// Report aggregates all results; Status is the worst result
type Report struct {
	Service string    `json:"service"`
	Version string    `json:"version"`
	Status  Status    `json:"status"`
	Uptime  string    `json:"uptime"`
	Checks  []Result  `json:"checks"`
	At      time.Time `json:"timestamp"`
}

// Registry runs registered checks concurrently
type Registry struct {
	service string
	version string
	started time.Time
	timeout time.Duration

	mu     sync.RWMutex
	checks []Check
}

// NewRegistry creates an empty registry
func NewRegistry(service, version string) *Registry {
	return &Registry{
		service: service,
		version: version,
		started: time.Now(),
		timeout: DefaultProbeTimeout,
	}
}

// SetProbeTimeout changes the per-probe deadline
func (r *Registry) SetProbeTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// Register adds or replaces a check by name
func (r *Registry) Register(c Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.checks {
		if r.checks[i].Name == c.Name {
			r.checks[i] = c
			return
		}
	}
	r.checks = append(r.checks, c)
}

// Check runs every probe and returns the sorted report
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	checks := append([]Check(nil), r.checks...)
	r.mu.RUnlock()

	results := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.run(ctx, c)
		}()
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	overall := StatusHealthy
	for _, res := range results {
		if res.Status.rank() > overall.rank() {
			overall = res.Status
		}
	}
	return &Report{
		Service: r.service,
		Version: r.version,
		Status:  overall,
		Uptime:  time.Since(r.started).Round(time.Second).String(),
		Checks:  results,
		At:      time.Now(),
	}
}

func (r *Registry) run(ctx context.Context, c Check) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	status, msg := c.Probe(ctx)
	if status == "" {
		status = StatusUnhealthy
	}
	return Result{
		Name:      c.Name,
		Status:    status,
		Message:   msg,
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
	}
}

// ReadyCheck is degraded until ready returns true; engines load in the background
func ReadyCheck(name string, ready func() bool) Check {
	return Check{Name: name, Probe: func(context.Context) (Status, string) {
		if ready() {
			return StatusHealthy, "ready"
		}
		return StatusDegraded, "not loaded"
	}}
}

// ErrorCheck is unhealthy while probe returns an error
func ErrorCheck(name string, probe func(ctx context.Context) error) Check {
	return Check{Name: name, Probe: func(ctx context.Context) (Status, string) {
		if err := probe(ctx); err != nil {
			return StatusUnhealthy, err.Error()
		}
		return StatusHealthy, "ok"
	}}
}

// HTTPCheck is degraded when url is unreachable or answers 5xx. A remote
// inference server being down does not make diktat itself unhealthy.
func HTTPCheck(name, url string, timeout time.Duration) Check {
	client := &http.Client{Timeout: timeout}
	return Check{Name: name, Probe: func(ctx context.Context) (Status, string) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return StatusUnhealthy, err.Error()
		}
		resp, err := client.Do(req)
		if err != nil {
			return StatusDegraded, err.Error()
		}
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			return StatusDegraded, fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return StatusHealthy, fmt.Sprintf("HTTP %d", resp.StatusCode)
	}}
}
