package sxcat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// UpperLimitRequest asks for count-rate upper limits at one sky position.
// Position targets are passed to the service as coordinates without any
// catalogue matching, so limits work at positions with no catalogued
// source; that is their point.
type UpperLimitRequest struct {
	Target catalogue.Target

	// Bands restricts the computation. Empty means every band.
	Bands []catalogue.Band

	// Sigma is the confidence level of the limits. Zero means the server
	// default.
	Sigma float64

	// MJDStart and MJDStop bound the data epoch. Both zero means the whole
	// mission.
	MJDStart float64
	MJDStop  float64
}

func (r *UpperLimitRequest) params(c *Client) (map[string]any, error) {
	if err := r.Target.Validate(); err != nil {
		return nil, err
	}

	params := map[string]any{}
	switch r.Target.Kind() {
	case catalogue.TargetID:
		params["srcid"] = r.Target.ID()
	case catalogue.TargetName:
		params["name"] = r.Target.Name()
	default:
		ra, dec := r.Target.Position()
		params["ra"] = ra
		params["dec"] = dec
	}

	if len(r.Bands) > 0 {
		bands := make([]string, 0, len(r.Bands))
		for _, band := range r.Bands {
			if !band.Valid() {
				return nil, errors.Newf("unknown energy band %q", band).
					Category(errors.CategoryValidation).
					Component("client").
					Build()
			}
			bands = append(bands, string(band))
		}
		params["bands"] = bands
	}
	if r.Sigma > 0 {
		params["sigma"] = r.Sigma
	}
	if r.MJDStart != 0 || r.MJDStop != 0 {
		params["mjdstart"] = r.MJDStart
		params["mjdstop"] = r.MJDStop
	}
	return params, nil
}

// JobStatus is the lifecycle state of a deferred upper-limit job.
type JobStatus string

const (
	// JobStatusPending: the computation has not finished.
	JobStatusPending JobStatus = "pending"
	// JobStatusReady: the result is computed and waiting for one fetch.
	JobStatusReady JobStatus = "ready"
	// JobStatusConsumed: the result was fetched and the token is spent.
	JobStatusConsumed JobStatus = "consumed"
)

// Job is a pending upper-limit computation. Its token buys exactly one
// result fetch; after a successful Fetch the job is consumed and further
// fetches fail, locally when this Job did the fetching and from the service
// otherwise.
type Job struct {
	Token string
	// ETA is the service's completion estimate at submission time, zero
	// when it gave none.
	ETA time.Duration

	client   *Client
	consumed atomic.Bool
}

// Job rehydrates a deferred job from a token issued by an earlier
// SubmitUpperLimit, so the result can be fetched from a different process
// than the one that submitted it.
func (c *Client) Job(token string) *Job {
	return &Job{Token: token, client: c}
}

// SubmitUpperLimit submits an upper-limit computation. Small requests are
// answered immediately with a result; larger ones are deferred and answered
// with a job whose result is fetched later. Exactly one of the two returns
// is non-nil on success.
func (c *Client) SubmitUpperLimit(ctx context.Context, req UpperLimitRequest) (*catalogue.UpperLimitResult, *Job, error) {
	params, err := req.params(c)
	if err != nil {
		return nil, nil, err
	}

	obj, err := c.api.Call(ctx, api.OpSubmitUpperLimit, params)
	if err != nil {
		return nil, nil, err
	}

	res, err := parseResolution(obj)
	if err != nil {
		return nil, nil, err
	}
	if res.Ambiguous() {
		return nil, nil, ambiguousError(req.Target, res)
	}

	if token, tErr := obj.GetString("JobToken"); tErr == nil {
		job := &Job{Token: token, client: c}
		if eta, etaErr := obj.GetInt64("ETASeconds"); etaErr == nil {
			job.ETA = time.Duration(eta) * time.Second
		}
		c.metrics.UpperLimit.RecordJobSubmitted("deferred")
		logger.Info("upper-limit job deferred",
			"target", req.Target.String(),
			"token", token,
			"eta", job.ETA)
		return nil, job, nil
	}

	result, err := parseUpperLimitResult(obj)
	if err != nil {
		return nil, nil, err
	}
	c.metrics.UpperLimit.RecordJobSubmitted("immediate")
	return result, nil, nil
}

// Status asks the service where the job stands. A job this client already
// fetched reports consumed without a network call.
func (j *Job) Status(ctx context.Context) (JobStatus, error) {
	if j.consumed.Load() {
		return JobStatusConsumed, nil
	}

	obj, err := j.client.api.Call(ctx, api.OpJobStatus, map[string]any{"token": j.Token})
	if err != nil {
		j.client.metrics.UpperLimit.RecordJobPoll("error")
		return "", err
	}

	raw, err := obj.GetString("Status")
	if err != nil {
		return "", parseError(err, "Status")
	}

	status := JobStatus(raw)
	switch status {
	case JobStatusPending, JobStatusReady:
	case JobStatusConsumed:
		j.consumed.Store(true)
	default:
		return "", errors.Newf("unknown job status %q", raw).
			Category(errors.CategoryResponseParsing).
			Context("token", j.Token).
			Component("client").
			Build()
	}
	j.client.metrics.UpperLimit.RecordJobPoll(string(status))
	return status, nil
}

// Fetch retrieves the job's result. The fetch is destructive: the first
// success spends the token, and every later fetch fails with a job-consumed
// error. A job that is still computing fails with a job-pending error and
// can be fetched again.
func (j *Job) Fetch(ctx context.Context) (*catalogue.UpperLimitResult, error) {
	if j.consumed.Load() {
		j.client.metrics.UpperLimit.RecordJobPoll("consumed")
		return nil, errors.Newf("upper-limit job already fetched").
			Category(errors.CategoryConsumed).
			Context("token", j.Token).
			Component("client").
			Build()
	}

	obj, err := j.client.api.Call(ctx, api.OpFetchJob, map[string]any{"token": j.Token})
	if err != nil {
		switch {
		case errors.IsPending(err):
			j.client.metrics.UpperLimit.RecordJobPoll("pending")
		case errors.IsConsumed(err):
			// Someone else spent the token, remember that locally too.
			j.consumed.Store(true)
			j.client.metrics.UpperLimit.RecordJobPoll("consumed")
		default:
			j.client.metrics.UpperLimit.RecordJobPoll("error")
		}
		return nil, err
	}

	j.consumed.Store(true)
	j.client.metrics.UpperLimit.RecordJobPoll("ready")

	result, err := parseUpperLimitResult(obj)
	if err != nil {
		return nil, err
	}
	logger.Info("upper-limit job fetched",
		"token", j.Token,
		"limits", len(result.Limits))
	return result, nil
}

// WaitForUpperLimit polls the job until its result is ready and fetches it.
// The first poll happens immediately, later ones every poll interval. A
// context deadline bounds the wait when present; without one a default cap
// applies so an abandoned server job cannot hang the caller forever.
func (c *Client) WaitForUpperLimit(ctx context.Context, job *Job) (*catalogue.UpperLimitResult, error) {
	if job == nil {
		return nil, errors.Newf("nil upper-limit job").
			Category(errors.CategoryValidation).
			Component("client").
			Build()
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultWaitCap)
		defer cancel()
	}

	start := time.Now()
	timer := time.NewTimer(c.options.PollInterval)
	defer timer.Stop()

	for {
		result, err := job.Fetch(ctx)
		if err == nil {
			c.metrics.UpperLimit.RecordJobWait(time.Since(start).Seconds())
			return result, nil
		}
		if !errors.IsPending(err) {
			return nil, err
		}

		timer.Reset(c.options.PollInterval)
		select {
		case <-ctx.Done():
			category := errors.CategoryCancellation
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				category = errors.CategoryTimeout
			}
			return nil, errors.Newf("waiting for upper-limit job: %w", ctx.Err()).
				Category(category).
				Context("token", job.Token).
				Context("waited", time.Since(start).Round(time.Millisecond).String()).
				Component("client").
				Build()
		case <-timer.C:
		}
	}
}
