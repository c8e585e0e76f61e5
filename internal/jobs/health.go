package jobs

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthReport is one snapshot of process-host resource usage
type HealthReport struct {
	CPUUsage    float64   `json:"cpu_usage"`
	MemoryUsage float64   `json:"memory_usage"`
	CollectedAt time.Time `json:"collected_at"`
}

// collectHealth samples host CPU and memory usage
func collectHealth() (*HealthReport, error) {
	cpuPercent, err := cpu.Percent(time.Second, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU usage: %w", err)
	}
	if len(cpuPercent) == 0 {
		return nil, fmt.Errorf("no CPU usage samples returned")
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory usage: %w", err)
	}

	return &HealthReport{
		CPUUsage:    cpuPercent[0],
		MemoryUsage: memInfo.UsedPercent,
		CollectedAt: time.Now(),
	}, nil
}
