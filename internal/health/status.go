package health

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

type HostInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Uptime   uint64 `json:"uptime_seconds"`
}

type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"used_percent"`
}

type ProcessInfo struct {
	PID        int32   `json:"pid"`
	RSS        uint64  `json:"rss"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
	Uptime     string  `json:"uptime"`
}

// Status is the body of /data/status.
type Status struct {
	Host    *HostInfo    `json:"host,omitempty"`
	Memory  *MemoryInfo  `json:"memory,omitempty"`
	Process *ProcessInfo `json:"process,omitempty"`
	Store   *StoreState  `json:"store,omitempty"`
	Errors  []string     `json:"errors,omitempty"`
}

// Reporter assembles Status from gopsutil and the store probe.
type Reporter struct {
	probe   *Probe
	started time.Time
}

// NewReporter accepts a nil probe; the store section is then omitted.
func NewReporter(probe *Probe) *Reporter {
	return &Reporter{probe: probe, started: time.Now()}
}

// Ready follows the probe; without one the service is always ready.
func (r *Reporter) Ready() bool {
	if r.probe == nil {
		return true
	}
	return r.probe.Ready()
}

// Status collects what it can; a failing section is listed in Errors instead of failing the report.
func (r *Reporter) Status(ctx context.Context) Status {
	var s Status

	if info, err := host.InfoWithContext(ctx); err != nil {
		s.Errors = append(s.Errors, fmt.Sprintf("host: %v", err))
	} else {
		s.Host = &HostInfo{
			Hostname: info.Hostname,
			OS:       info.OS,
			Platform: info.Platform,
			Uptime:   info.Uptime,
		}
	}

	if v, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		s.Errors = append(s.Errors, fmt.Sprintf("memory: %v", err))
	} else {
		s.Memory = &MemoryInfo{Total: v.Total, Available: v.Available, UsedPercent: v.UsedPercent}
	}

	pi := &ProcessInfo{
		PID:        int32(os.Getpid()),
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(r.started).Round(time.Second).String(),
	}
	if p, err := process.NewProcessWithContext(ctx, pi.PID); err != nil {
		s.Errors = append(s.Errors, fmt.Sprintf("process: %v", err))
	} else {
		if m, err := p.MemoryInfoWithContext(ctx); err == nil && m != nil {
			pi.RSS = m.RSS
		}
		pi.CPUPercent, _ = p.CPUPercentWithContext(ctx)
	}
	s.Process = pi

	if r.probe != nil {
		state := r.probe.State()
		s.Store = &state
	}
	return s
}
