// Package system sizes the worker pool from available CPU and RAM so
// bulk processing stays under resource limits.
package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	// CPULimit and RAMLimit keep 20% headroom for the rest of the
	// system.
	CPULimit = 0.80
	RAMLimit = 0.80

	// RAMPerPageMB is a rough budget for one in-flight page: the
	// rendered bitmap, its working copy and masks.
	RAMPerPageMB = 300

	MinWorkers    = 1
	MaxWorkersCap = 16
)

// OptimalWorkers picks a worker count bounded by CPU count, available
// memory and the number of pages. Probing failures fall back to the
// CPU count alone.
func OptimalWorkers(pageCount int) int {
	cpuWorkers := runtime.NumCPU()
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		cpuWorkers = n
	}
	workers := int(float64(cpuWorkers) * CPULimit)
	if workers < MinWorkers {
		workers = MinWorkers
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		usableMB := int(float64(vm.Available/(1024*1024)) * RAMLimit)
		ramWorkers := usableMB / RAMPerPageMB
		if ramWorkers < MinWorkers {
			ramWorkers = MinWorkers
		}
		if ramWorkers < workers {
			workers = ramWorkers
		}
	}

	if workers > MaxWorkersCap {
		workers = MaxWorkersCap
	}
	if pageCount > 0 && workers > pageCount {
		workers = pageCount
	}
	return workers
}
