package system

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const cpuSampleInterval = 200 * time.Millisecond

// MemoryUsage returns system memory utilization as a percentage.
func MemoryUsage() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// CPUUsage samples overall CPU utilization as a percentage. The call blocks
// for the sample interval.
func CPUUsage() (float64, error) {
	percents, err := cpu.Percent(cpuSampleInterval, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}
