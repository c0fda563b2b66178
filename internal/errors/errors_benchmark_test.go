package errors

import (
	"fmt"
	"testing"
)

// BenchmarkErrorCreation tests error creation with explicit component and category
func BenchmarkErrorCreation(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).
			Component("test").
			Category(CategoryGeneric).
			Build()
	}
}

// BenchmarkErrorCreationAutoDetect tests error creation with category auto-detection
func BenchmarkErrorCreationAutoDetect(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("connection refused by upstream")
		_ = New(err).Build()
	}
}

// BenchmarkErrorCreationWithContext tests error creation with context attached
func BenchmarkErrorCreationWithContext(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).
			Component("test").
			Category(CategoryGeneric).
			Context("operation", "test_op").
			Context("count", 42).
			Build()
	}
}

// BenchmarkComponentDetection tests the lazy stack-walk path
func BenchmarkComponentDetection(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		ee := New(fmt.Errorf("test error")).Build()
		_ = ee.GetComponent()
	}
}
