package observability

import (
	"sync"
	"testing"
)

// TestNewMetricsConcurrency verifies that NewMetrics can be called concurrently
// without causing race conditions
func TestNewMetricsConcurrency(t *testing.T) {
	// Number of concurrent goroutines to test with
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	// Start multiple goroutines that all try to create metrics concurrently
	for range numGoroutines {
		go func() {
			defer wg.Done()

			// Call NewMetrics - this should not cause a race condition
			metrics, err := NewMetrics()
			if err != nil {
				t.Errorf("NewMetrics failed: %v", err)
				return
			}

			// Verify metrics is not nil
			if metrics == nil {
				t.Error("NewMetrics returned nil")
				return
			}

			// Verify all metric fields are initialized
			if metrics.registry == nil {
				t.Error("metrics.registry is nil")
			}
			if metrics.API == nil {
				t.Error("metrics.API is nil")
			}
			if metrics.Cache == nil {
				t.Error("metrics.Cache is nil")
			}
			if metrics.Download == nil {
				t.Error("metrics.Download is nil")
			}
			if metrics.UpperLimit == nil {
				t.Error("metrics.UpperLimit is nil")
			}
		}()
	}

	// Wait for all goroutines to complete
	wg.Wait()
}
