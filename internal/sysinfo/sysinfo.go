// Package sysinfo derives a default fetch concurrency from host resources.
package sysinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/mem"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultConcurrency is used whenever the host probe fails.
	DefaultConcurrency = 8
	// maxConcurrency caps the planned value regardless of host size.
	maxConcurrency = 32
)

// Resources describes the host capacity the planner works from.
type Resources struct {
	CPUs     int
	MemBytes uint64
}

// Probe reads logical CPU count and total physical memory. Unlike a silent
// fallback, failures surface as an explicit error; Plan owns the default
// policy.
func Probe() (Resources, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Resources{}, fmt.Errorf("reading host memory: %w", err)
	}
	return Resources{CPUs: runtime.NumCPU(), MemBytes: vm.Total}, nil
}

// PlanFor maps host resources to a concurrency level. Hosts with little RAM
// get fewer connections than they have cores; large hosts get up to two per
// core, capped at maxConcurrency.
func PlanFor(r Resources) int {
	memGiB := float64(r.MemBytes) / (1 << 30)
	cpus := r.CPUs
	if cpus <= 0 {
		cpus = 4
	}

	var concurrency int
	switch {
	case memGiB < 4:
		concurrency = max(2, cpus/2)
	case memGiB < 8:
		concurrency = max(4, cpus)
	default:
		concurrency = max(8, cpus*2)
	}

	return min(maxConcurrency, concurrency)
}

// Plan probes the host and returns the planned concurrency, degrading to
// DefaultConcurrency when the probe fails. An explicit caller-supplied value
// should always take precedence over this heuristic.
func Plan() int {
	r, err := Probe()
	if err != nil {
		log.WithError(err).Debugf("Host resource probe failed, defaulting concurrency to %d", DefaultConcurrency)
		return DefaultConcurrency
	}
	planned := PlanFor(r)
	log.Debugf("Planned concurrency %d (cpus=%d, mem=%.1fGiB)", planned, r.CPUs, float64(r.MemBytes)/(1<<30))
	return planned
}
