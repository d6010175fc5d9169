package system

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HostInfo описывает машину, на которой шел рендер.
// Поля, которые не удалось получить, остаются нулевыми.
type HostInfo struct {
	CPUModel       string
	Cores          int
	CPUPercent     float64
	MemTotalMB     uint64
	MemUsedPercent float64
	ProcessRSSMB   uint64
}

// CollectHostInfo собирает сведения о CPU, памяти и текущем процессе
func CollectHostInfo() HostInfo {
	info := HostInfo{Cores: runtime.NumCPU()}

	if stats, err := cpu.Info(); err == nil && len(stats) > 0 {
		info.CPUModel = stats[0].ModelName
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		info.Cores = n
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		info.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemTotalMB = vm.Total / (1 << 20)
		info.MemUsedPercent = vm.UsedPercent
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			info.ProcessRSSMB = mi.RSS / (1 << 20)
		}
	}
	return info
}

func (h HostInfo) String() string {
	model := h.CPUModel
	if model == "" {
		model = "unknown CPU"
	}
	return fmt.Sprintf("%s x%d | CPU %.0f%% | RAM %dMB (%.0f%% used) | RSS %dMB",
		model, h.Cores, h.CPUPercent, h.MemTotalMB, h.MemUsedPercent, h.ProcessRSSMB)
}
