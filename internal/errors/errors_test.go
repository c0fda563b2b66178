package errors

import (
	"fmt"
	"testing"
	"time"
)

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("test error")
	ee := New(err).Build()

	if ee.Err.Error() != "test error" {
		t.Errorf("Expected error message 'test error', got '%s'", ee.Err.Error())
	}

	if ee.Category != CategoryGeneric {
		t.Errorf("Expected category 'generic' for undetectable error, got '%s'", ee.Category)
	}

	if ee.Timestamp.IsZero() {
		t.Error("Expected a non-zero timestamp")
	}
}

func TestCategoryDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"not found", fmt.Errorf("source not found in catalogue"), CategoryNotFound},
		{"ambiguous", fmt.Errorf("identifier is ambiguous across revisions"), CategoryAmbiguous},
		{"timeout", fmt.Errorf("request timeout after 30s"), CategoryTimeout},
		{"cancelled", fmt.Errorf("operation cancelled by caller"), CategoryCancellation},
		{"parsing", fmt.Errorf("failed to parse json envelope"), CategoryResponseParsing},
		{"network", fmt.Errorf("connection refused"), CategoryNetwork},
		{"validation", fmt.Errorf("invalid band name"), CategoryValidation},
		{"file", fmt.Errorf("directory is read-only"), CategoryFileIO},
		{"fallback", fmt.Errorf("something odd happened"), CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ee := New(tt.err).Build()
			if ee.Category != tt.want {
				t.Errorf("detectCategory(%q) = %s, want %s", tt.err, ee.Category, tt.want)
			}
		})
	}
}

func TestExplicitCategoryWins(t *testing.T) {
	t.Parallel()

	// Message hints at network but the builder says otherwise
	ee := New(fmt.Errorf("connection refused")).Category(CategoryDownload).Build()
	if ee.Category != CategoryDownload {
		t.Errorf("Expected explicit category to win, got '%s'", ee.Category)
	}
}

func TestCategorySentinelMatching(t *testing.T) {
	t.Parallel()

	sentinel := Newf("upper limit job still pending").Category(CategoryPending).Build()
	got := New(fmt.Errorf("job 42 incomplete")).Category(CategoryPending).Build()

	if !Is(got, sentinel) {
		t.Error("Expected errors sharing a category to match via Is")
	}

	other := New(fmt.Errorf("boom")).Category(CategoryNetwork).Build()
	if Is(other, sentinel) {
		t.Error("Expected differing categories not to match")
	}
}

func TestCategoryHelpers(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("call failed: %w", New(NewStd("gone")).Category(CategoryConsumed).Build())

	if !IsConsumed(wrapped) {
		t.Error("IsConsumed should see through wrapping")
	}
	if IsPending(wrapped) {
		t.Error("IsPending should not match a consumed error")
	}

	nf := New(NewStd("no such stack")).Category(CategoryNotFound).Build()
	if !IsNotFound(nf) {
		t.Error("IsNotFound failed for CategoryNotFound")
	}

	amb := New(NewStd("fragmented")).Category(CategoryAmbiguous).Build()
	if !IsAmbiguous(amb) {
		t.Error("IsAmbiguous failed for CategoryAmbiguous")
	}
}

func TestContextCopySemantics(t *testing.T) {
	t.Parallel()

	ee := New(NewStd("x")).
		Context("op", "getLightCurve").
		Context("attempt", 1).
		Build()

	ctx := ee.GetContext()
	if ctx["op"] != "getLightCurve" {
		t.Errorf("Expected context op 'getLightCurve', got %v", ctx["op"])
	}

	// Mutating the copy must not affect the error
	ctx["op"] = "mutated"
	if ee.GetContext()["op"] != "getLightCurve" {
		t.Error("GetContext must return a copy")
	}
}

func TestNetworkContextAnonymizesURL(t *testing.T) {
	t.Parallel()

	ee := New(NewStd("dial failed")).
		NetworkContext("https://api.sxcat.org/query", 10*time.Second).
		Build()

	ctx := ee.GetContext()
	if ctx["url_category"] != "https-endpoint" {
		t.Errorf("Expected url_category 'https-endpoint', got %v", ctx["url_category"])
	}
	if ctx["timeout_seconds"] != 10.0 {
		t.Errorf("Expected timeout_seconds 10, got %v", ctx["timeout_seconds"])
	}

	ftp := New(NewStd("ftp fail")).NetworkContext("ftp://mirror.sxcat.org/tables", 0).Build()
	if ftp.GetContext()["url_category"] != "ftp-endpoint" {
		t.Errorf("Expected ftp-endpoint, got %v", ftp.GetContext()["url_category"])
	}
}

func TestFileContextCategorization(t *testing.T) {
	t.Parallel()

	ee := FileError(NewStd("write failed"), "/data/lc/Total_rates.csv", 2048)
	ctx := ee.GetContext()

	if ctx["file_type"] != "absolute-path" {
		t.Errorf("Expected absolute-path, got %v", ctx["file_type"])
	}
	if ctx["file_extension"] != "csv" {
		t.Errorf("Expected csv extension, got %v", ctx["file_extension"])
	}
	if ctx["file_size_category"] != "small" {
		t.Errorf("Expected small size category, got %v", ctx["file_size_category"])
	}
}

func TestUnwrapChain(t *testing.T) {
	t.Parallel()

	base := NewStd("root cause")
	ee := New(base).Category(CategoryDatabase).Build()

	if Unwrap(ee) != base {
		t.Error("Unwrap should return the wrapped error")
	}
	if !Is(ee, base) {
		t.Error("Is should find the root cause through the wrapper")
	}
}

type selfCategorized struct{ msg string }

func (s *selfCategorized) Error() string                { return s.msg }
func (s *selfCategorized) ErrorCategory() ErrorCategory { return CategorySupersession }

func TestCategorizedErrorInterface(t *testing.T) {
	t.Parallel()

	ee := New(&selfCategorized{msg: "stale revision"}).Build()
	if ee.Category != CategorySupersession {
		t.Errorf("Expected category from CategorizedError interface, got '%s'", ee.Category)
	}
}

func TestComponentDetectionLazy(t *testing.T) {
	t.Parallel()

	ee := New(NewStd("x")).Component("api").Build()
	if ee.GetComponent() != "api" {
		t.Errorf("Expected explicit component 'api', got '%s'", ee.GetComponent())
	}

	// No component given: detection runs on first access and is stable
	auto := New(NewStd("y")).Build()
	first := auto.GetComponent()
	if first == "" {
		t.Error("GetComponent must never return empty")
	}
	if auto.GetComponent() != first {
		t.Error("Component detection must be stable across calls")
	}
}
