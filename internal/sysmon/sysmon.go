// Package sysmon provides system-wide CPU and memory usage sampling, used to
// warn when the host is too busy for trustworthy timings.
package sysmon

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// BusyCPUPercent is the CPU usage above which a comparison is flagged as
// running on a loaded host.
const BusyCPUPercent = 80.0

// DefaultSampleWindow is the CPU measurement window used before a comparison.
const DefaultSampleWindow = 500 * time.Millisecond

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Busy reports whether CPU usage exceeds threshold.
func (s Stats) Busy(threshold float64) bool {
	return s.CPUPercent > threshold
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	return SampleContext(context.Background(), 0)
}

// SampleContext measures CPU usage over window, then reads memory usage.
// Fields that cannot be read are left at zero.
func SampleContext(ctx context.Context, window time.Duration) Stats {
	var s Stats
	cpuPcts, err := cpu.PercentWithContext(ctx, window, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}
