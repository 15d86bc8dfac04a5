// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jobqueue

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/pkg/id"
	"github.com/skku-artclub/artclub/pkg/log"
	"github.com/skku-artclub/artclub/pkg/loop"
	"github.com/skku-artclub/artclub/pkg/metrics"
	"github.com/skku-artclub/artclub/pkg/retry"
	"github.com/skku-artclub/artclub/pkg/safe"
	"github.com/skku-artclub/artclub/pkg/statemachine"
)

// Config holds queue settings. Per-job defaults can be overridden with
// Options at submission.
type Config struct {
	MaxConcurrent int           `mapstructure:"maxConcurrent"`
	HistoryLimit  int           `mapstructure:"historyLimit"`
	TickInterval  time.Duration `mapstructure:"tickInterval"`
	PruneInterval time.Duration `mapstructure:"pruneInterval"`
	BatchSize     int           `mapstructure:"batchSize"`
	RetryAttempts int           `mapstructure:"retryAttempts"`
	RetryDelay    time.Duration `mapstructure:"retryDelay"`
}

func (c *Config) SetDefaults() {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 3
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 100
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.PruneInterval <= 0 {
		c.PruneInterval = time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
}

// Auditor is the audit trail as seen by the queue.
type Auditor interface {
	Log(ctx context.Context, spec audit.EventSpec) audit.Receipt
}

// entry is the queue's record of one job. attempt identifies the current
// run so late progress from an earlier run is dropped.
type entry struct {
	job     *Job
	actor   *audit.Actor
	attempt int
	cancel  context.CancelFunc
	timer   clock.Timer
}

// Queue is an in-process batch job engine. A job lives in exactly one of
// the pending, running, waiting (retry delay) or history stores. All
// stores are guarded by mu.
type Queue struct {
	cfg      Config
	registry *Registry
	auditor  Auditor
	logger   log.ILogger
	clock    clock.Clock
	sm       *statemachine.StateMachine[Status]

	mu      sync.Mutex
	seq     uint64
	pending map[string]*entry
	running map[string]*entry
	waiting map[string]*entry
	history map[string]*Job

	inflight sync.WaitGroup
	loops    sync.WaitGroup
	stop     context.CancelFunc
}

type QueueOption func(*Queue)

func WithClock(clk clock.Clock) QueueOption {
	return func(q *Queue) {
		if clk != nil {
			q.clock = clk
		}
	}
}

func WithLogger(l log.ILogger) QueueOption {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// New returns a stopped queue. Call Start to run the scheduler, or drive
// it with ProcessQueue and PruneHistory.
func New(cfg Config, registry *Registry, auditor Auditor, opts ...QueueOption) *Queue {
	cfg.SetDefaults()
	if registry == nil {
		registry = NewRegistry()
	}
	q := &Queue{
		cfg:      cfg,
		registry: registry,
		auditor:  auditor,
		logger:   log.Global(),
		clock:    clock.WallClock,
		sm:       statemachine.NewJobStateMachine(),
		pending:  make(map[string]*entry),
		running:  make(map[string]*entry),
		waiting:  make(map[string]*entry),
		history:  make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) Config() Config {
	return q.cfg
}

// CreateJob validates and enqueues a job and returns its id without
// waiting for it to run.
func (q *Queue) CreateJob(ctx context.Context, spec Spec, opts ...Option) (string, error) {
	if spec.Type == "" || len(spec.Targets) == 0 {
		return "", ErrInvalidJob
	}

	o := Options{
		BatchSize:     q.cfg.BatchSize,
		RetryAttempts: q.cfg.RetryAttempts,
		RetryDelay:    q.cfg.RetryDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}

	job := &Job{
		ID:          id.PrefixedUlid("job"),
		Type:        spec.Type,
		Targets:     slices.Clone(spec.Targets),
		Options:     o,
		Status:      StatusPending,
		Priority:    spec.Priority,
		Description: spec.Description,
		CreatedAt:   q.clock.Now(),
		Progress:    Progress{Total: len(spec.Targets)},
	}
	if spec.Actor != nil {
		job.UserID = spec.Actor.ID
	}

	q.mu.Lock()
	q.seq++
	job.seq = q.seq
	q.pending[job.ID] = &entry{job: job, actor: spec.Actor}
	q.mu.Unlock()

	metrics.RecordJobSubmitted(string(job.Type))
	q.logger.Infow("batch job created", "jobId", job.ID, "jobType", string(job.Type), "targets", len(job.Targets), "priority", job.Priority)
	q.audit(ctx, audit.EventSpec{
		Type:       audit.EventBulkOperation,
		Severity:   audit.SeverityMedium,
		Actor:      spec.Actor,
		Operation:  "create_job",
		Resource:   "job",
		ResourceID: job.ID,
		Details: map[string]any{
			"jobId":       job.ID,
			"jobType":     string(job.Type),
			"targetCount": len(job.Targets),
			"priority":    job.Priority,
			"description": job.Description,
		},
	})
	return job.ID, nil
}

// JobStatus returns a snapshot of the job, or false if it is unknown or
// has been evicted from history.
func (q *Queue) JobStatus(jobID string) (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if j := q.lookup(jobID); j != nil {
		return j.clone(), true
	}
	return nil, false
}

func (q *Queue) lookup(jobID string) *Job {
	for _, store := range []map[string]*entry{q.pending, q.running, q.waiting} {
		if e, ok := store[jobID]; ok {
			return e.job
		}
	}
	return q.history[jobID]
}

// AllJobs returns matching jobs from every store, newest created first.
func (q *Queue) AllJobs(f Filter) []*Job {
	q.mu.Lock()
	var out []*Job
	for _, store := range []map[string]*entry{q.pending, q.running, q.waiting} {
		for _, e := range store {
			if f.match(e.job) {
				out = append(out, e.job.clone())
			}
		}
	}
	for _, j := range q.history {
		if f.match(j) {
			out = append(out, j.clone())
		}
	}
	q.mu.Unlock()

	slices.SortFunc(out, func(a, b *Job) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	return out
}

// CancelJob cancels a pending, waiting or running job. A running job is
// marked CANCELLED at once and its context is cancelled; the handler is not
// interrupted. It returns false for unknown or finished jobs.
func (q *Queue) CancelJob(ctx context.Context, jobID string, actor *audit.Actor) bool {
	q.mu.Lock()
	now := q.clock.Now()
	var (
		job     *Job
		wasFrom Status
	)
	if e, ok := q.running[jobID]; ok && e.job.Status == StatusRunning {
		wasFrom = e.job.Status
		e.job.Status = q.mustTransition(e.job, StatusCancelled)
		e.job.Cancelled = true
		e.job.CompletedAt = &now
		e.cancel()
		job = e.job.clone()
	} else if e, ok := q.takeQueued(jobID); ok {
		wasFrom = e.job.Status
		e.job.Status = q.mustTransition(e.job, StatusCancelled)
		e.job.Cancelled = true
		e.job.CompletedAt = &now
		q.history[jobID] = e.job
		job = e.job.clone()
	}
	q.mu.Unlock()

	if job == nil {
		return false
	}

	metrics.RecordJobFinished(string(job.Type), string(StatusCancelled))
	q.logger.Infow("batch job cancelled", "jobId", jobID, "from", string(wasFrom))
	q.audit(ctx, audit.EventSpec{
		Type:       audit.EventBulkOperation,
		Severity:   audit.SeverityMedium,
		Actor:      actor,
		Operation:  "cancel_job",
		Resource:   "job",
		ResourceID: jobID,
		Details: map[string]any{
			"jobId":      jobID,
			"jobType":    string(job.Type),
			"fromStatus": string(wasFrom),
			"processed":  job.Progress.Processed,
		},
	})
	return true
}

// takeQueued removes a PENDING job from the pending or waiting store.
func (q *Queue) takeQueued(jobID string) (*entry, bool) {
	if e, ok := q.pending[jobID]; ok {
		delete(q.pending, jobID)
		return e, true
	}
	if e, ok := q.waiting[jobID]; ok {
		delete(q.waiting, jobID)
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		return e, true
	}
	return nil, false
}

// ProcessQueue is one scheduler tick. It starts as many pending jobs as
// the concurrency limit allows, lowest priority value first, and returns
// how many were started. It never waits for a job.
func (q *Queue) ProcessQueue() int {
	q.mu.Lock()
	capacity := q.cfg.MaxConcurrent - len(q.running)
	if capacity <= 0 || len(q.pending) == 0 {
		q.mu.Unlock()
		return 0
	}

	candidates := make([]*entry, 0, len(q.pending))
	for _, e := range q.pending {
		candidates = append(candidates, e)
	}
	slices.SortFunc(candidates, func(a, b *entry) int {
		if c := cmp.Compare(a.job.Priority, b.job.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.job.seq, b.job.seq)
	})
	if len(candidates) > capacity {
		candidates = candidates[:capacity]
	}

	runs := make([]*Run, 0, len(candidates))
	now := q.clock.Now()
	for _, e := range candidates {
		e.job.Status = q.mustTransition(e.job, StatusRunning)
		e.job.StartedAt = &now
		e.job.Progress = Progress{Total: len(e.job.Targets), Errors: e.job.Progress.Errors}
		e.attempt++

		runCtx, cancel := context.WithCancel(context.Background())
		e.cancel = cancel
		delete(q.pending, e.job.ID)
		q.running[e.job.ID] = e

		runs = append(runs, &Run{
			q:       q,
			e:       e,
			attempt: e.attempt,
			jobID:   e.job.ID,
			jobType: e.job.Type,
			userID:  e.job.UserID,
			targets: e.job.Targets,
			opts:    e.job.Options,
			ctx:     runCtx,
		})
	}
	q.inflight.Add(len(runs))
	q.mu.Unlock()

	for _, r := range runs {
		safe.Go(func() {
			defer q.inflight.Done()
			q.execute(r)
		})
	}
	return len(runs)
}

func (q *Queue) execute(r *Run) {
	handler, ok := q.registry.Lookup(r.jobType)
	if !ok {
		q.fail(r, fmt.Errorf("%w: %s", ErrNoHandler, r.jobType), false)
		return
	}

	q.logger.Debugw("batch job started", "jobId", r.jobID, "jobType", string(r.jobType), "attempt", r.attempt)
	start := q.clock.Now()
	var res *Result
	err := safe.Call(func() error {
		var err error
		res, err = handler(r.ctx, r)
		return err
	})
	metrics.RecordJobRun(string(r.jobType), q.clock.Now().Sub(start))

	if err != nil {
		q.fail(r, err, true)
		return
	}
	q.complete(r, res)
}

// current reports whether r is still the live run of its job. Callers hold mu.
func (q *Queue) current(r *Run) bool {
	e, ok := q.running[r.jobID]
	return ok && e == r.e && e.attempt == r.attempt
}

func (q *Queue) recordItem(r *Run, targetID string, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.current(r) {
		return
	}
	p := &r.e.job.Progress
	p.Processed++
	if err != nil {
		p.Failed++
		p.Errors = append(p.Errors, ItemError{ID: targetID, Error: err.Error(), At: q.clock.Now()})
		return
	}
	p.Successful++
}

// settleCancelled moves a run that finished after cancellation into
// history. Callers hold mu.
func (q *Queue) settleCancelled(r *Run) {
	delete(q.running, r.jobID)
	q.history[r.jobID] = r.e.job
	r.e.cancel()
}

func (q *Queue) complete(r *Run, res *Result) {
	q.mu.Lock()
	if !q.current(r) {
		q.mu.Unlock()
		return
	}
	job := r.e.job
	if res != nil {
		job.Result = res
	}
	if job.Status == StatusCancelled {
		q.settleCancelled(r)
		q.mu.Unlock()
		q.logger.Infow("cancelled batch job finished", "jobId", r.jobID)
		return
	}

	now := q.clock.Now()
	if job.Progress.Processed == 0 && res != nil {
		job.Progress.Successful = len(res.SuccessfulIDs)
		job.Progress.Failed = len(res.Failed)
		job.Progress.Processed = job.Progress.Successful + job.Progress.Failed
		for _, f := range res.Failed {
			job.Progress.Errors = append(job.Progress.Errors, ItemError{ID: f.ID, Error: f.Error, At: now})
		}
	}
	job.Status = q.mustTransition(job, StatusCompleted)
	job.CompletedAt = &now
	delete(q.running, r.jobID)
	q.history[r.jobID] = job
	r.e.cancel()
	snap := job.clone()
	actor := r.e.actor
	q.mu.Unlock()

	duration := snap.CompletedAt.Sub(*snap.StartedAt)
	result := audit.ResultSuccess
	if snap.Progress.Failed > 0 {
		result = audit.ResultPartial
	}
	metrics.RecordJobFinished(string(snap.Type), string(StatusCompleted))
	q.logger.Infow("batch job completed", "jobId", snap.ID, "jobType", string(snap.Type),
		"successful", snap.Progress.Successful, "failed", snap.Progress.Failed, "duration", duration)
	q.audit(context.Background(), audit.EventSpec{
		Type:       audit.EventBulkOperation,
		Severity:   audit.SeverityMedium,
		Result:     result,
		Actor:      actor,
		Operation:  "complete_job",
		Resource:   "job",
		ResourceID: snap.ID,
		Details: map[string]any{
			"jobId":      snap.ID,
			"jobType":    string(snap.Type),
			"duration":   duration.Milliseconds(),
			"total":      snap.Progress.Total,
			"processed":  snap.Progress.Processed,
			"successful": snap.Progress.Successful,
			"failed":     snap.Progress.Failed,
			"retryCount": snap.RetryCount,
		},
		Metadata: audit.Metadata{Duration: duration, AffectedRecords: snap.Progress.Successful},
	})
}

// fail routes a handler error through the retry path, or finishes the job
// as FAILED once the retry budget is spent.
func (q *Queue) fail(r *Run, cause error, retryable bool) {
	var pe *safe.PanicError
	if errors.As(cause, &pe) {
		q.logger.Errorw("batch job handler panicked", "jobId", r.jobID, "panic", pe.Value, "stack", string(pe.Stack))
	}

	q.mu.Lock()
	if !q.current(r) {
		q.mu.Unlock()
		return
	}
	job := r.e.job
	now := q.clock.Now()
	job.Error = cause.Error()
	job.Progress.Errors = append(job.Progress.Errors, ItemError{Error: cause.Error(), At: now})

	if job.Status == StatusCancelled {
		q.settleCancelled(r)
		q.mu.Unlock()
		q.logger.Infow("cancelled batch job stopped", "jobId", r.jobID, "error", cause)
		return
	}

	if retryable && job.RetryCount < job.Options.RetryAttempts {
		job.RetryCount++
		job.Status = q.mustTransition(job, StatusPending)
		delete(q.running, r.jobID)
		r.e.cancel()
		q.waiting[r.jobID] = r.e

		delay := retry.Fixed(job.Options.RetryDelay).Next(job.RetryCount - 1)
		e := r.e
		e.timer = q.clock.AfterFunc(delay, func() { q.requeue(e) })
		retryCount := job.RetryCount
		q.mu.Unlock()

		metrics.RecordJobRetry(string(r.jobType))
		q.logger.Warnw("batch job failed, retry scheduled", "jobId", r.jobID, "retryCount", retryCount, "delay", delay, "error", cause)
		return
	}

	job.Status = q.mustTransition(job, StatusFailed)
	job.CompletedAt = &now
	delete(q.running, r.jobID)
	q.history[r.jobID] = job
	r.e.cancel()
	snap := job.clone()
	actor := r.e.actor
	q.mu.Unlock()

	metrics.RecordJobFinished(string(snap.Type), string(StatusFailed))
	q.logger.Errorw("batch job failed", "jobId", snap.ID, "jobType", string(snap.Type), "retryCount", snap.RetryCount, "error", cause)
	q.audit(context.Background(), audit.EventSpec{
		Type:       audit.EventBulkOperation,
		Severity:   audit.SeverityHigh,
		Result:     audit.ResultFailure,
		Actor:      actor,
		Operation:  "fail_job",
		Resource:   "job",
		ResourceID: snap.ID,
		Details: map[string]any{
			"jobId":      snap.ID,
			"jobType":    string(snap.Type),
			"error":      snap.Error,
			"retryCount": snap.RetryCount,
			"processed":  snap.Progress.Processed,
		},
	})
}

// requeue returns a job whose retry delay elapsed to the pending store.
func (q *Queue) requeue(e *entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if cur, ok := q.waiting[e.job.ID]; !ok || cur != e {
		return
	}
	delete(q.waiting, e.job.ID)
	e.timer = nil
	q.pending[e.job.ID] = e
	q.logger.Debugw("batch job requeued", "jobId", e.job.ID, "retryCount", e.job.RetryCount)
}

// mustTransition applies a transition the queue has already established
// as legal. An illegal one is logged and leaves the status unchanged.
func (q *Queue) mustTransition(job *Job, to Status) Status {
	next, err := q.sm.Transition(job.Status, to)
	if err != nil {
		q.logger.Errorw("illegal batch job transition", "jobId", job.ID, "error", err)
	}
	return next
}

// PruneHistory evicts the oldest completed jobs until the history fits
// the configured limit and returns how many were removed.
func (q *Queue) PruneHistory() int {
	q.mu.Lock()
	excess := len(q.history) - q.cfg.HistoryLimit
	if excess <= 0 {
		q.mu.Unlock()
		return 0
	}
	jobs := make([]*Job, 0, len(q.history))
	for _, j := range q.history {
		jobs = append(jobs, j)
	}
	slices.SortFunc(jobs, func(a, b *Job) int {
		if c := completedAt(a).Compare(completedAt(b)); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	for _, j := range jobs[:excess] {
		delete(q.history, j.ID)
	}
	remaining := len(q.history)
	q.mu.Unlock()

	q.logger.Debugw("batch job history pruned", "removed", excess, "remaining", remaining)
	return excess
}

func completedAt(j *Job) time.Time {
	if j.CompletedAt == nil {
		return time.Time{}
	}
	return *j.CompletedAt
}

// Stats implements metrics.QueueStatsSource.
func (q *Queue) Stats() metrics.QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return metrics.QueueStats{
		Pending:   len(q.pending),
		Running:   len(q.running),
		RetryWait: len(q.waiting),
		History:   len(q.history),
	}
}

// Start runs the scheduler tick and history pruning until ctx ends or Stop
// is called.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.stop != nil {
		q.mu.Unlock()
		return
	}
	ctx, q.stop = context.WithCancel(ctx)
	q.mu.Unlock()

	q.loops.Add(2)
	safe.Go(func() {
		defer q.loops.Done()
		_ = loop.New(loop.WithContext(ctx), loop.WithInterval(q.cfg.TickInterval)).Do(func() (bool, error) {
			q.ProcessQueue()
			return false, nil
		})
	})
	safe.Go(func() {
		defer q.loops.Done()
		_ = loop.New(loop.WithContext(ctx), loop.WithInterval(q.cfg.PruneInterval)).Do(func() (bool, error) {
			q.PruneHistory()
			return false, nil
		})
	})
	q.logger.Infow("batch job queue started", "maxConcurrent", q.cfg.MaxConcurrent, "historyLimit", q.cfg.HistoryLimit)
}

// Stop halts the scheduler and waits for running handlers to return.
func (q *Queue) Stop() {
	q.mu.Lock()
	stop := q.stop
	q.stop = nil
	q.mu.Unlock()
	if stop != nil {
		stop()
		q.loops.Wait()
	}
	q.inflight.Wait()
	q.logger.Infow("batch job queue stopped")
}

func (q *Queue) audit(ctx context.Context, spec audit.EventSpec) {
	if q.auditor == nil {
		return
	}
	q.auditor.Log(ctx, spec)
}
