package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
)

// Profiler tracks frame rate, shader data traffic and memory statistics.
// Outputs stats to the engine logger at a configurable interval.
type Profiler struct {
	frameCount     int
	frames         scene.FrameStats
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		now:            time.Now,
	}
}

// Record adds one frame's scene statistics to the current interval.
//
// Parameters:
//   - stats: the frame statistics
func (p *Profiler) Record(stats scene.FrameStats) {
	p.frames.Synced += stats.Synced
	p.frames.Uploaded += stats.Uploaded
	p.frames.Fallback += stats.Fallback
	p.frames.Released += stats.Released
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	// PauseNs is a circular buffer of the last 256 pauses.
	for i := startIdx; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	common.Logger().Info("profiler",
		"fps", fps,
		"synced", p.frames.Synced,
		"uploaded", p.frames.Uploaded,
		"fallback", p.frames.Fallback,
		"released", p.frames.Released,
		"heapMB", allocMB,
		"allocRateMB", allocRateMB,
		"gc", gcCount,
		"maxPauseUs", maxPauseUs,
	)

	p.frameCount = 0
	p.frames = scene.FrameStats{}
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Totals returns the statistics recorded since the last logged interval.
func (p *Profiler) Totals() scene.FrameStats {
	return p.frames
}
