// Package monitoring tracks in-process request metrics, system stats, and
// registered health checks, exposed as JSON on /metrics.
package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestMetrics is a snapshot of the request counters.
type RequestMetrics struct {
	RequestCount   int64            `json:"request_count"`
	ErrorCount     int64            `json:"error_count"`
	ActiveRequests int64            `json:"active_requests"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	Endpoints      map[string]int64 `json:"endpoints"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
}

type requestMetrics struct {
	mu             sync.Mutex
	requestCount   int64
	errorCount     int64
	activeRequests int64
	statusCodes    map[string]int64
	endpoints      map[string]int64
	totalLatency   time.Duration
}

var (
	startTime     = time.Now()
	globalMetrics = newRequestMetrics()
)

func newRequestMetrics() *requestMetrics {
	return &requestMetrics{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
	}
}

func resetGlobalMetrics() {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()
	globalMetrics.requestCount = 0
	globalMetrics.errorCount = 0
	globalMetrics.activeRequests = 0
	globalMetrics.statusCodes = make(map[string]int64)
	globalMetrics.endpoints = make(map[string]int64)
	globalMetrics.totalLatency = 0
}

// MetricsMiddleware records count, status, endpoint, and latency for every
// request passing through the router.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		globalMetrics.mu.Lock()
		globalMetrics.activeRequests++
		globalMetrics.mu.Unlock()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		endpoint := c.Request.Method + " " + c.FullPath()

		globalMetrics.mu.Lock()
		globalMetrics.activeRequests--
		globalMetrics.requestCount++
		globalMetrics.totalLatency += latency
		globalMetrics.statusCodes[http.StatusText(status)]++
		globalMetrics.endpoints[endpoint]++
		if status >= http.StatusInternalServerError {
			globalMetrics.errorCount++
		}
		globalMetrics.mu.Unlock()
	}
}

// GetMetrics returns a consistent snapshot of the request counters.
func GetMetrics() RequestMetrics {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	snapshot := RequestMetrics{
		RequestCount:   globalMetrics.requestCount,
		ErrorCount:     globalMetrics.errorCount,
		ActiveRequests: globalMetrics.activeRequests,
		StatusCodes:    make(map[string]int64, len(globalMetrics.statusCodes)),
		Endpoints:      make(map[string]int64, len(globalMetrics.endpoints)),
	}
	for k, v := range globalMetrics.statusCodes {
		snapshot.StatusCodes[k] = v
	}
	for k, v := range globalMetrics.endpoints {
		snapshot.Endpoints[k] = v
	}
	if globalMetrics.requestCount > 0 {
		snapshot.AvgLatencyMs = float64(globalMetrics.totalLatency.Milliseconds()) /
			float64(globalMetrics.requestCount)
	}
	return snapshot
}

// MemoryMetrics reports allocator numbers in megabytes.
type MemoryMetrics struct {
	Alloc      uint64 `json:"alloc_mb"`
	TotalAlloc uint64 `json:"total_alloc_mb"`
	Sys        uint64 `json:"sys_mb"`
	NumGC      uint32 `json:"num_gc"`
}

// SystemMetrics reports process-level stats.
type SystemMetrics struct {
	Uptime         time.Duration `json:"uptime_ns"`
	GoroutineCount int           `json:"goroutine_count"`
	CPUCount       int           `json:"cpu_count"`
	GoVersion      string        `json:"go_version"`
	MemoryUsage    MemoryMetrics `json:"memory_usage"`
}

func GetSystemMetrics() SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SystemMetrics{
		Uptime:         time.Since(startTime),
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
		MemoryUsage: MemoryMetrics{
			Alloc:      bToMb(mem.Alloc),
			TotalAlloc: bToMb(mem.TotalAlloc),
			Sys:        bToMb(mem.Sys),
			NumGC:      mem.NumGC,
		},
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// MetricsHandler serves the combined request, system, and health-check
// snapshot.
func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"requests": GetMetrics(),
			"system":   GetSystemMetrics(),
			"health":   RunHealthChecks(),
		})
	}
}

// HealthCheckFunc probes one dependency.
type HealthCheckFunc func(ctx context.Context) error

// HealthCheck is the outcome of one registered probe.
type HealthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthChecker struct {
	mu     sync.Mutex
	checks map[string]HealthCheckFunc
}

var globalHealthChecker = &healthChecker{checks: make(map[string]HealthCheckFunc)}

func resetGlobalHealthChecker() {
	globalHealthChecker.mu.Lock()
	defer globalHealthChecker.mu.Unlock()
	globalHealthChecker.checks = make(map[string]HealthCheckFunc)
}

// RegisterHealthCheck adds a named probe run on every RunHealthChecks call.
func RegisterHealthCheck(name string, check HealthCheckFunc) {
	globalHealthChecker.mu.Lock()
	defer globalHealthChecker.mu.Unlock()
	globalHealthChecker.checks[name] = check
}

// RunHealthChecks executes every registered probe with a short timeout.
func RunHealthChecks() map[string]HealthCheck {
	globalHealthChecker.mu.Lock()
	checks := make(map[string]HealthCheckFunc, len(globalHealthChecker.checks))
	for name, fn := range globalHealthChecker.checks {
		checks[name] = fn
	}
	globalHealthChecker.mu.Unlock()

	results := make(map[string]HealthCheck, len(checks))
	for name, fn := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		result := HealthCheck{Name: name, Status: "healthy"}
		if err := fn(ctx); err != nil {
			result.Status = "unhealthy"
			result.Message = err.Error()
		}
		cancel()
		results[name] = result
	}
	return results
}
