// Package services hosts the HTTP status endpoint for this process.
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/craftwatch/mcstatusbot/orchestrator"
	"github.com/craftwatch/mcstatusbot/system"
)

// StatusServer provides /status, /health and /metrics over loopback.
type StatusServer struct {
	startTime time.Time
	port      int
	orch      *orchestrator.Orchestrator
}

// NewStatusServer creates a new status server.
func NewStatusServer(port int, orch *orchestrator.Orchestrator) *StatusServer {
	return &StatusServer{
		startTime: time.Now(),
		port:      port,
		orch:      orch,
	}
}

// Start begins serving in the background. A port of 0 disables the
// server entirely.
func (ss *StatusServer) Start() {
	if ss.port == 0 {
		log.Println("[STATUS] Status server disabled")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", ss.handleStatus)
	mux.HandleFunc("/health", ss.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", ss.port)
	log.Printf("[STATUS] Starting status server on http://%s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[STATUS] Server error: %v", err)
		}
	}()
}

// handleStatus returns detailed service status.
func (ss *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(ss.startTime)

	cpuUsage, _ := system.GetCPUUsage()
	memUsage, _ := system.GetMemoryUsage()
	procMem, _ := system.GetProcessMemoryMB()

	status := map[string]interface{}{
		"service":   "mcstatusbot",
		"status":    "operational",
		"uptime":    uptime.String(),
		"timestamp": time.Now().Format(time.RFC3339),
		"system": map[string]interface{}{
			"cpu_percent":       cpuUsage,
			"memory_percent":    memUsage,
			"process_memory_mb": procMem,
			"goroutines":        runtime.NumGoroutine(),
		},
		"servers": ss.orch.Snapshot(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("[STATUS] Error encoding status: %v", err)
	}
}

// handleHealth returns a simple health check.
func (ss *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	}); err != nil {
		log.Printf("[STATUS] Error encoding health: %v", err)
	}
}
