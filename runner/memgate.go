// Copyright 2017, Kerby Shedden and the Muscato contributors.

package runner

import (
	"context"
	"log"
	"time"
)

// MemGate holds back new scans while the share of system memory in
// use is at or above Limit percent.  It is advisory: a scan is always
// allowed to start when no other scan is running, so the run cannot
// stall on memory held by other processes.
type MemGate struct {
	Limit float64

	// Time between memory checks while waiting
	Poll time.Duration

	used func() (float64, error)
}

// NewMemGate returns a gate using the system memory statistics.
func NewMemGate(limit float64) *MemGate {
	return &MemGate{
		Limit: limit,
		Poll:  time.Second,
		used:  MemoryUsed,
	}
}

// Wait returns once memory use is below the limit, running reports no
// other scans, or ctx is done.  Only the last case returns an error.
// A nil gate never waits.  logger may be nil.
func (g *MemGate) Wait(ctx context.Context, running func() int, logger *log.Logger) error {

	if g == nil {
		return nil
	}

	ticker := time.NewTicker(g.Poll)
	defer ticker.Stop()

	var warned bool
	for {
		if running() == 0 {
			return nil
		}
		u, err := g.used()
		if err != nil || u < g.Limit {
			return nil
		}
		if !warned && logger != nil {
			logger.Printf("Memory use %.1f%% is above %.1f%%, waiting for a running file to finish", u, g.Limit)
			warned = true
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
