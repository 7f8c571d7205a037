package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const mb = 1 << 20

type runtimeStats struct {
	Timestamp  string      `json:"timestamp"`
	Goroutines int         `json:"goroutines"`
	Memory     memoryStats `json:"memory"`
}

type memoryStats struct {
	AllocMB      uint64 `json:"alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	GCRuns       uint32 `json:"gc_runs"`
}

// Metrics reports goroutine and heap figures. Search sessions each hold a
// few goroutines, so the goroutine count tracks open sessions and streams.
// Request and lookup metrics are exported over OTLP, not here.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		c.JSON(http.StatusOK, runtimeStats{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Goroutines: runtime.NumGoroutine(),
			Memory: memoryStats{
				AllocMB:      m.Alloc / mb,
				TotalAllocMB: m.TotalAlloc / mb,
				SysMB:        m.Sys / mb,
				GCRuns:       m.NumGC,
			},
		})
	}
}
