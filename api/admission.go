package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdmissionConfig defines the per-source-address connection quota.
type AdmissionConfig struct {
	// Connections is how many new connections one address may open per
	// Window.
	Connections int
	// Window is the quota's rolling window.
	Window time.Duration
	// Enabled determines if admission control is active.
	Enabled bool
}

// DefaultAdmissionConfig returns the production quota: 100 connections
// per source address per minute.
func DefaultAdmissionConfig() AdmissionConfig {
	return AdmissionConfig{
		Connections: 100,
		Window:      60 * time.Second,
		Enabled:     true,
	}
}

// NoAdmissionControl returns a configuration with the quota disabled.
func NoAdmissionControl() AdmissionConfig {
	return AdmissionConfig{Enabled: false}
}

// AdmissionLimiter enforces the quota with one token bucket per source
// address. Buckets refill at Connections/Window and hold a full window's
// burst, approximating a rolling-window count.
type AdmissionLimiter struct {
	cfg AdmissionConfig

	mu      sync.Mutex
	sources map[string]*rate.Limiter
}

// NewAdmissionLimiter creates a limiter for the given quota.
func NewAdmissionLimiter(cfg AdmissionConfig) *AdmissionLimiter {
	return &AdmissionLimiter{
		cfg:     cfg,
		sources: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether one more connection from the address fits the
// quota, consuming one token if it does.
func (l *AdmissionLimiter) Allow(addr string) bool {
	if !l.cfg.Enabled {
		return true
	}

	l.mu.Lock()
	limiter, ok := l.sources[addr]
	if !ok {
		limit := rate.Limit(float64(l.cfg.Connections) / l.cfg.Window.Seconds())
		limiter = rate.NewLimiter(limit, l.cfg.Connections)
		l.sources[addr] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
