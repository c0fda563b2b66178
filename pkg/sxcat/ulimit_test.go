package sxcat

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

func limitsBody() map[string]any {
	return map[string]any{
		"SrcID": 0,
		"RA":    150.1, "Dec": 2.2, "Sigma": 3.0,
		"Limits": []any{
			map[string]any{"Band": "Total", "UpperLimit": 0.0123, "Counts": 18.0, "BGCounts": 11.5, "Exposure": 3200.0},
			map[string]any{"Band": "Soft", "UpperLimit": 0.004, "Counts": 6.0, "BGCounts": 4.1, "Exposure": 3200.0},
		},
	}
}

func TestSubmitUpperLimitImmediate(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpSubmitUpperLimit {
			return limitsBody()
		}
		return nil
	})
	client := svc.newClient(t)

	result, job, err := client.SubmitUpperLimit(t.Context(), UpperLimitRequest{
		Target: catalogue.ByPosition(150.1, 2.2),
		Bands:  []catalogue.Band{catalogue.BandTotal, catalogue.BandSoft},
		Sigma:  3.0,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Nil(t, job)

	assert.Zero(t, result.SourceID, "a bare position matches no catalogue source")
	assert.InDelta(t, 3.0, result.Sigma, 1e-9)
	require.Len(t, result.Limits, 2)

	soft := result.Limit(catalogue.BandSoft)
	require.NotNil(t, soft)
	assert.InDelta(t, 0.004, soft.UpperLimit, 1e-9)
	assert.Nil(t, result.Limit(catalogue.BandHard))

	// Positions go straight to the service as coordinates; no cone search,
	// no catalogue matching, one request.
	require.Equal(t, 1, svc.totalCalls())
	params := svc.paramsOf(api.OpSubmitUpperLimit)[0]
	assert.InDelta(t, 150.1, params["ra"].(float64), 1e-9)
	assert.InDelta(t, 2.2, params["dec"].(float64), 1e-9)
	assert.NotContains(t, params, "srcid")
	assert.Equal(t, []any{"Total", "Soft"}, params["bands"])
	assert.InDelta(t, 3.0, params["sigma"].(float64), 1e-9)
	assert.NotContains(t, params, "mjdstart")
}

func TestSubmitUpperLimitTimeWindow(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpSubmitUpperLimit {
			return limitsBody()
		}
		return nil
	})
	client := svc.newClient(t)

	_, _, err := client.SubmitUpperLimit(t.Context(), UpperLimitRequest{
		Target:   catalogue.ByID(testSourceID),
		MJDStart: 58000,
		MJDStop:  59000,
	})
	require.NoError(t, err)

	params := svc.paramsOf(api.OpSubmitUpperLimit)[0]
	assert.EqualValues(t, testSourceID, params["srcid"])
	assert.InDelta(t, 58000.0, params["mjdstart"].(float64), 1e-9)
	assert.InDelta(t, 59000.0, params["mjdstop"].(float64), 1e-9)
	assert.NotContains(t, params, "bands", "no band restriction means the key stays off the wire")
	assert.NotContains(t, params, "sigma")
}

func TestSubmitUpperLimitInvalidBand(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any { return nil })
	client := svc.newClient(t)

	_, _, err := client.SubmitUpperLimit(t.Context(), UpperLimitRequest{
		Target: catalogue.ByID(testSourceID),
		Bands:  []catalogue.Band{"Ultraviolet"},
	})
	require.Error(t, err)
	assert.True(t, IsInvalidIdentifier(err))
	assert.Equal(t, 0, svc.totalCalls())
}

func TestSubmitUpperLimitDeferred(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpSubmitUpperLimit {
			return map[string]any{"JobToken": "tok-1", "ETASeconds": 90}
		}
		return nil
	})
	client := svc.newClient(t)

	result, job, err := client.SubmitUpperLimit(t.Context(), UpperLimitRequest{
		Target: catalogue.ByPosition(150.1, 2.2),
	})
	require.NoError(t, err)
	assert.Nil(t, result)
	require.NotNil(t, job)
	assert.Equal(t, "tok-1", job.Token)
	assert.Equal(t, 90*time.Second, job.ETA)
}

// deferredJob submits against a service whose fetchJob behavior is the
// given handler and returns the pending job.
func deferredJob(t *testing.T, fetch func(n int64) map[string]any) (*testService, *Job) {
	t.Helper()
	var fetches atomic.Int64
	svc := newTestService(t, func(req queryRequest) map[string]any {
		switch req.Op {
		case api.OpSubmitUpperLimit:
			return map[string]any{"JobToken": "tok-9", "ETASeconds": 1}
		case api.OpFetchJob:
			return fetch(fetches.Add(1))
		case api.OpJobStatus:
			return nil
		}
		return nil
	})
	client := svc.newClient(t)

	_, job, err := client.SubmitUpperLimit(t.Context(), UpperLimitRequest{
		Target: catalogue.ByPosition(150.1, 2.2),
	})
	require.NoError(t, err)
	require.NotNil(t, job)
	return svc, job
}

func TestJobFetchPendingThenReady(t *testing.T) {
	svc, job := deferredJob(t, func(n int64) map[string]any {
		if n < 3 {
			return errBody(api.CodeJobPending, "still computing")
		}
		return limitsBody()
	})

	// Two early fetches fail as pending and leave the job fetchable.
	for range 2 {
		result, err := job.Fetch(t.Context())
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, IsPending(err))
		assert.False(t, IsConsumed(err))
	}

	result, err := job.Fetch(t.Context())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Limits, 2)

	// The token is spent now; another fetch fails locally, without a
	// request.
	before := svc.callCount(api.OpFetchJob)
	_, err = job.Fetch(t.Context())
	require.Error(t, err)
	assert.True(t, IsConsumed(err))
	assert.Equal(t, before, svc.callCount(api.OpFetchJob))
	assert.Equal(t, 3, before)
}

func TestJobFetchConsumedByServer(t *testing.T) {
	svc, job := deferredJob(t, func(n int64) map[string]any {
		return errBody(api.CodeJobConsumed, "token already spent")
	})

	_, err := job.Fetch(t.Context())
	require.Error(t, err)
	assert.True(t, IsConsumed(err))

	// The server's verdict sticks locally too.
	_, err = job.Fetch(t.Context())
	require.Error(t, err)
	assert.True(t, IsConsumed(err))
	assert.Equal(t, 1, svc.callCount(api.OpFetchJob))

	status, err := job.Status(t.Context())
	require.NoError(t, err)
	assert.Equal(t, JobStatusConsumed, status)
	assert.Equal(t, 0, svc.callCount(api.OpJobStatus))
}

func TestJobStatusLifecycle(t *testing.T) {
	var polls atomic.Int64
	svc := newTestService(t, func(req queryRequest) map[string]any {
		switch req.Op {
		case api.OpSubmitUpperLimit:
			return map[string]any{"JobToken": "tok-2"}
		case api.OpJobStatus:
			assert.Equal(t, "tok-2", req.Params["token"])
			switch polls.Add(1) {
			case 1:
				return map[string]any{"Status": "pending"}
			case 2:
				return map[string]any{"Status": "ready"}
			default:
				return map[string]any{"Status": "consumed"}
			}
		}
		return nil
	})
	client := svc.newClient(t)

	_, job, err := client.SubmitUpperLimit(t.Context(), UpperLimitRequest{
		Target: catalogue.ByID(testSourceID),
	})
	require.NoError(t, err)

	for _, want := range []JobStatus{JobStatusPending, JobStatusReady, JobStatusConsumed} {
		status, sErr := job.Status(t.Context())
		require.NoError(t, sErr)
		assert.Equal(t, want, status)
	}

	// Consumed is remembered; the next ask costs nothing.
	status, err := job.Status(t.Context())
	require.NoError(t, err)
	assert.Equal(t, JobStatusConsumed, status)
	assert.Equal(t, 3, svc.callCount(api.OpJobStatus))
}

func TestWaitForUpperLimit(t *testing.T) {
	svc, job := deferredJob(t, func(n int64) map[string]any {
		if n < 3 {
			return errBody(api.CodeJobPending, "still computing")
		}
		return limitsBody()
	})

	result, err := job.client.WaitForUpperLimit(t.Context(), job)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 3, svc.callCount(api.OpFetchJob))
}

func TestWaitForUpperLimitDeadline(t *testing.T) {
	_, job := deferredJob(t, func(n int64) map[string]any {
		return errBody(api.CodeJobPending, "still computing")
	})

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()

	result, err := job.client.WaitForUpperLimit(ctx, job)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForUpperLimitNilJob(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any { return nil })
	client := svc.newClient(t)

	_, err := client.WaitForUpperLimit(t.Context(), nil)
	require.Error(t, err)
	assert.Equal(t, 0, svc.totalCalls())
}

func TestJobRehydratedFromToken(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpFetchJob {
			assert.Equal(t, "tok-44", req.Params["token"])
			return limitsBody()
		}
		return nil
	})
	client := svc.newClient(t)

	// A token issued to an earlier process is enough to fetch the result.
	job := client.Job("tok-44")
	result, err := job.Fetch(t.Context())
	require.NoError(t, err)
	require.Len(t, result.Limits, 2)
	assert.Equal(t, 1, svc.callCount(api.OpFetchJob))
}
