package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application counters
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	SubmissionsTotal   uint64
	SubmissionsFailed  uint64
	EmailsQueued       uint64
	EmailsFailed       uint64
	CRMSyncs           uint64
	CRMSyncFailures    uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementSubmissions increments accepted calculator submission counter
func IncrementSubmissions() {
	atomic.AddUint64(&globalMetrics.SubmissionsTotal, 1)
}

// IncrementSubmissionsFailed increments failed submission counter
func IncrementSubmissionsFailed() {
	atomic.AddUint64(&globalMetrics.SubmissionsFailed, 1)
}

// IncrementEmailsQueued increments queued email counter
func IncrementEmailsQueued() {
	atomic.AddUint64(&globalMetrics.EmailsQueued, 1)
}

// IncrementEmailsFailed increments dropped email counter
func IncrementEmailsFailed() {
	atomic.AddUint64(&globalMetrics.EmailsFailed, 1)
}

// IncrementCRMSyncs increments successful CRM sync counter
func IncrementCRMSyncs() {
	atomic.AddUint64(&globalMetrics.CRMSyncs, 1)
}

// IncrementCRMSyncFailures increments failed CRM sync counter
func IncrementCRMSyncFailures() {
	atomic.AddUint64(&globalMetrics.CRMSyncFailures, 1)
}

// GetMetrics returns current counters plus runtime stats
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"submissions_total":    atomic.LoadUint64(&globalMetrics.SubmissionsTotal),
		"submissions_failed":   atomic.LoadUint64(&globalMetrics.SubmissionsFailed),
		"emails_queued":        atomic.LoadUint64(&globalMetrics.EmailsQueued),
		"emails_failed":        atomic.LoadUint64(&globalMetrics.EmailsFailed),
		"crm_syncs":            atomic.LoadUint64(&globalMetrics.CRMSyncs),
		"crm_sync_failures":    atomic.LoadUint64(&globalMetrics.CRMSyncFailures),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		// Wrap response writer to capture status
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		// Track success/failure based on status code
		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
