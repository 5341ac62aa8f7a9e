// Package health implements liveness and readiness probes for HTTP services.
//
// Registered checks run periodically on their own goroutines. To keep probes
// from flapping on a single transient failure, a check only flips to
// unhealthy after failing several times in a row, and flips back on the first
// success.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Default thresholds, matching common Kubernetes probe settings.
const (
	defaultFailureThreshold = 3
	defaultSuccessThreshold = 1
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// probe is a single registered check plus its runtime state.
//
// The consecutive counters are touched only by the loop goroutine and need no
// locking. healthy and lastErr are also read by HTTP handlers, hence atomic.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	failureThreshold int
	successThreshold int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	consecutiveFails int
	consecutiveOK    int
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	p := &probe{
		name:             name,
		timeout:          timeout,
		check:            check,
		failureThreshold: defaultFailureThreshold,
		successThreshold: defaultSuccessThreshold,
	}
	// Start optimistic so a service is not reported broken before the first
	// probe run completes.
	p.healthy.Store(true)
	return p
}

func (p *probe) ok() bool {
	return p.healthy.Load()
}

func (p *probe) lastError() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// runOnce executes the check and applies the thresholds. Called only from the
// probe's own loop goroutine.
func (p *probe) runOnce(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(checkCtx)
	p.lastErr.Store(&err)

	if err != nil {
		p.consecutiveOK = 0
		if p.consecutiveFails++; p.consecutiveFails >= p.failureThreshold {
			p.healthy.Store(false)
		}
		return
	}

	p.consecutiveFails = 0
	if p.consecutiveOK++; p.consecutiveOK >= p.successThreshold {
		p.healthy.Store(true)
	}
}

// loop runs the probe immediately and then on every tick until ctx is
// cancelled.
func (p *probe) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

// Health tracks the liveness and readiness probes of one service.
type Health struct {
	ready atomic.Bool

	// mu guards the probe slices and cancel. Registration happens before
	// Start; handlers take a read lock only long enough to snapshot a slice.
	mu        sync.RWMutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New returns a Health in the not-ready state. Call SetReady(true) once the
// service finishes initializing.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check that decides whether the process itself
// is functioning (goroutine counts, GC pauses and the like).
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a check that decides whether the service can
// accept traffic, such as database connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newProbe(name, timeout, check))
}

// Start launches one background goroutine per registered probe, each running
// at the given interval. Register all checks before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, 0, len(h.liveness)+len(h.readiness))
	probes = append(probes, h.liveness...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go p.loop(ctx, interval)
	}
}

// SetReady flips the manual readiness gate. It is set to true after startup
// and back to false when a graceful shutdown begins, so load balancers stop
// routing new requests.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}

	h.mu.RLock()
	probes := h.readiness
	h.mu.RUnlock()

	for _, p := range probes {
		if !p.ok() {
			return false
		}
	}
	return true
}

// Stop cancels all probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

type probeReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} while all liveness probes
// pass, otherwise 503 with the failing checks listed.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	probes := make([]*probe, len(h.liveness))
	copy(probes, h.liveness)
	h.mu.RUnlock()

	writeReport(w, failures(probes))
}

// ReadyEndpoint serves /readyz: 200 only when the service is marked ready and
// every readiness probe passes.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	ready := h.ready.Load()

	h.mu.RLock()
	probes := make([]*probe, len(h.readiness))
	copy(probes, h.readiness)
	h.mu.RUnlock()

	failing := failures(probes)
	if !ready {
		failing["_readiness"] = "service is not ready"
	}
	writeReport(w, failing)
}

// failures maps each unhealthy probe to its stored last error. Probes are not
// re-executed on the request path.
func failures(probes []*probe) map[string]string {
	out := make(map[string]string)
	for _, p := range probes {
		if p.ok() {
			continue
		}
		if err := p.lastError(); err != nil {
			out[p.name] = err.Error()
		} else {
			out[p.name] = "check is unhealthy"
		}
	}
	return out
}

func writeReport(w http.ResponseWriter, failing map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	report := probeReport{Status: "ok"}
	status := http.StatusOK
	if len(failing) > 0 {
		report = probeReport{Status: "unhealthy", Checks: failing}
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	// Too late to change the status code on encode failure; that only
	// happens when the client has gone away.
	_ = json.NewEncoder(w).Encode(report)
}
