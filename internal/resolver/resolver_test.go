package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sxcat-go/internal/errors"
)

func TestNewServiceProviderSelection(t *testing.T) {
	t.Run("sesame", func(t *testing.T) {
		service, err := NewService(createTestSettings(t, "sesame"), nil)
		require.NoError(t, err)
		assert.IsType(t, &SesameProvider{}, service.provider)
	})

	t.Run("catalogue without client", func(t *testing.T) {
		_, err := NewService(createTestSettings(t, "catalogue"), nil)
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewService(createTestSettings(t, "gaia"), nil)
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	})
}

func TestResolveCaching(t *testing.T) {
	stub := &stubProvider{result: &Result{
		Canonical: "V* V404 Cyg",
		RA:        306.0159,
		Dec:       33.8674,
		Provider:  "stub",
	}}
	service := NewServiceWithProvider(stub, time.Minute)

	first, err := service.Resolve(t.Context(), "V404 Cyg")
	require.NoError(t, err)
	assert.Equal(t, "V404 Cyg", first.Query)
	assert.Equal(t, 1, stub.calls)

	// Repeat and case variants come from the cache.
	second, err := service.Resolve(t.Context(), "v404 cyg")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "v404 cyg", second.Query, "cache hit keeps the caller's spelling")
	assert.InDelta(t, first.RA, second.RA, 1e-9)

	metrics := service.GetMetrics()
	assert.Equal(t, int64(2), metrics.Lookups)
	assert.Equal(t, int64(1), metrics.CacheHits)
	assert.Equal(t, int64(1), metrics.CacheMisses)

	service.ClearCache()
	_, err = service.Resolve(t.Context(), "V404 Cyg")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestResolveFailuresNotCached(t *testing.T) {
	stub := &stubProvider{err: errors.Newf("resolver offline").
		Category(errors.CategoryNetwork).
		Build()}
	service := NewServiceWithProvider(stub, time.Minute)

	for range 2 {
		_, err := service.Resolve(t.Context(), "GX 339-4")
		require.Error(t, err)
	}
	assert.Equal(t, 2, stub.calls, "errors must be retried, not cached")
}

func TestResolveEmptyName(t *testing.T) {
	service := NewServiceWithProvider(&stubProvider{result: &Result{}}, time.Minute)

	_, err := service.Resolve(t.Context(), "   ")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}
