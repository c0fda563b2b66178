package observability

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointServesMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.API.RecordOperation("getSourceInfo", "success")

	endpoint := NewEndpoint("127.0.0.1:0")
	require.NoError(t, endpoint.Start(m))
	defer endpoint.Close()

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", endpoint.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sxcat_api_calls_total")
}

func TestEndpointCloseIsIdempotent(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	endpoint := NewEndpoint("127.0.0.1:0")
	require.NoError(t, endpoint.Start(m))

	require.NoError(t, endpoint.Close())
	require.NoError(t, endpoint.Close())
}

func TestEndpointBadAddress(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	endpoint := NewEndpoint("256.0.0.1:none")
	assert.Error(t, endpoint.Start(m))
	assert.Nil(t, endpoint.Addr())
}
