package watchdog

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/R1das67/globex-security/internal/logging"
	"github.com/R1das67/globex-security/internal/metrics"

	"github.com/shirou/gopsutil/v3/process"
)

// Probe reports whether a component currently works.
type Probe func(ctx context.Context) error

type Watchdog struct {
	mu            sync.RWMutex
	components    map[string]*ComponentHealth
	checkInterval time.Duration
	maxRSS        uint64
	proc          *process.Process
	now           func() time.Time
}

type ComponentHealth struct {
	Name          string
	LastHeartbeat int64
	IsHealthy     uint32
	Threshold     time.Duration
	probe         Probe
}

func NewWatchdog(checkInterval time.Duration, maxRSSBytes uint64) *Watchdog {
	w := &Watchdog{
		components:    make(map[string]*ComponentHealth),
		checkInterval: checkInterval,
		maxRSS:        maxRSSBytes,
		now:           time.Now,
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		w.proc = p
	} else {
		logging.Warn("Watchdog: process sampling unavailable: %v", err)
	}
	return w
}

// RegisterComponent tracks a component that must call Heartbeat at least once per threshold.
func (w *Watchdog) RegisterComponent(name string, threshold time.Duration) {
	w.register(&ComponentHealth{Name: name, IsHealthy: 1, Threshold: threshold})
}

// RegisterProbe tracks a component whose health is polled on every check.
func (w *Watchdog) RegisterProbe(name string, probe Probe) {
	w.register(&ComponentHealth{Name: name, IsHealthy: 1, probe: probe})
}

func (w *Watchdog) register(comp *ComponentHealth) {
	w.mu.Lock()
	w.components[comp.Name] = comp
	w.mu.Unlock()
	metrics.ComponentHealthy.WithLabelValues(comp.Name).Set(1)
}

func (w *Watchdog) Heartbeat(name string) {
	w.mu.RLock()
	comp, exists := w.components[name]
	w.mu.RUnlock()
	if exists {
		atomic.StoreInt64(&comp.LastHeartbeat, w.now().UnixNano())
	}
}

// Run checks all components until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.CheckAll(ctx)
			w.SampleProcess()
		}
	}
}

func (w *Watchdog) CheckAll(ctx context.Context) {
	w.mu.RLock()
	comps := make([]*ComponentHealth, 0, len(w.components))
	for _, comp := range w.components {
		comps = append(comps, comp)
	}
	w.mu.RUnlock()

	for _, comp := range comps {
		w.check(ctx, comp)
	}
}

func (w *Watchdog) check(ctx context.Context, comp *ComponentHealth) {
	healthy := true
	if comp.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, w.checkInterval)
		err := comp.probe(probeCtx)
		cancel()
		if err != nil {
			healthy = false
			logging.Error("Watchdog: %s unhealthy: %v", comp.Name, err)
		}
	} else if lastBeat := atomic.LoadInt64(&comp.LastHeartbeat); lastBeat != 0 {
		elapsed := time.Duration(w.now().UnixNano() - lastBeat)
		if elapsed > comp.Threshold {
			healthy = false
			logging.Error("Watchdog: %s unhealthy (no heartbeat for %v)", comp.Name, elapsed)
		}
	}

	var flag uint32
	if healthy {
		flag = 1
	}
	if prev := atomic.SwapUint32(&comp.IsHealthy, flag); prev == 0 && flag == 1 {
		logging.Info("Watchdog: %s recovered", comp.Name)
	}
	metrics.ComponentHealthy.WithLabelValues(comp.Name).Set(float64(flag))
}

// SampleProcess records RSS and CPU usage of this process.
func (w *Watchdog) SampleProcess() {
	if w.proc == nil {
		return
	}
	if mem, err := w.proc.MemoryInfo(); err == nil {
		metrics.ProcessRSS.Set(float64(mem.RSS))
		if w.maxRSS > 0 && mem.RSS > w.maxRSS {
			logging.Warn("Watchdog: resident memory %d MiB above limit %d MiB", mem.RSS>>20, w.maxRSS>>20)
		}
	}
	if cpu, err := w.proc.CPUPercent(); err == nil {
		metrics.ProcessCPU.Set(cpu)
	}
}

func (w *Watchdog) IsHealthy(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if comp, exists := w.components[name]; exists {
		return atomic.LoadUint32(&comp.IsHealthy) == 1
	}
	return false
}

// Healthy reports whether every registered component is healthy.
func (w *Watchdog) Healthy() bool {
	for _, ok := range w.GetStatus() {
		if !ok {
			return false
		}
	}
	return true
}

func (w *Watchdog) GetStatus() map[string]bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	status := make(map[string]bool, len(w.components))
	for name, comp := range w.components {
		status[name] = atomic.LoadUint32(&comp.IsHealthy) == 1
	}
	return status
}

// GatewayProbe fails when the gateway has not acknowledged a heartbeat within stale.
func GatewayProbe(lastAck func() time.Time, stale time.Duration) Probe {
	return func(context.Context) error {
		ack := lastAck()
		if ack.IsZero() {
			return nil
		}
		if age := time.Since(ack); age > stale {
			return &StaleError{Age: age}
		}
		return nil
	}
}

type StaleError struct {
	Age time.Duration
}

func (e *StaleError) Error() string {
	return "last heartbeat ack " + e.Age.Round(time.Second).String() + " ago"
}
