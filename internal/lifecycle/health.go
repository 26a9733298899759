package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
)

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

// CheckFunc reports per-component statuses, "OK" meaning healthy.
type CheckFunc func(ctx context.Context) map[string]string

// Probes implements HealthChecker on top of the component health checker.
type Probes struct {
	log   *slog.Logger
	check CheckFunc
}

// NewProbes creates a new Probes instance.
func NewProbes(log *slog.Logger, check CheckFunc) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{log: log, check: check}
}

// Liveness reports success while the process is running.
func (p *Probes) Liveness(ctx context.Context) error {
	if p.log != nil {
		p.log.Debug("liveness probe called")
	}
	return nil
}

// Readiness fails when any registered component check is unhealthy.
func (p *Probes) Readiness(ctx context.Context) error {
	if p.check == nil {
		return nil
	}

	for name, status := range p.check(ctx) {
		if status != "OK" {
			return fmt.Errorf("component %s unhealthy: %s", name, status)
		}
	}

	return nil
}
