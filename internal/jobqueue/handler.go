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
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// FailedItem is a target the handler could not process.
type FailedItem struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Result is what a handler reports when it returns without error.
type Result struct {
	SuccessfulIDs []string     `json:"successfulIds"`
	Failed        []FailedItem `json:"failed"`
}

// Handler performs one job. ctx is cancelled when the job is cancelled;
// handlers should check it between items. Progress recorded through run
// takes precedence over counts derived from the returned Result.
type Handler func(ctx context.Context, run *Run) (*Result, error)

// Registry maps job types to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[JobType]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[JobType]Handler)}
}

// Register binds h to typ, replacing any previous handler.
func (r *Registry) Register(typ JobType, h Handler) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[typ] = h
	return r
}

func (r *Registry) Lookup(typ JobType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[typ]
	return h, ok
}

// Types returns the registered job types, sorted.
func (r *Registry) Types() []JobType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.handlers))
}

// Run is a handler's view of the job it executes.
type Run struct {
	q       *Queue
	e       *entry
	attempt int
	ctx     context.Context

	jobID   string
	jobType JobType
	userID  string
	targets []string
	opts    Options
}

func (r *Run) JobID() string    { return r.jobID }
func (r *Run) Type() JobType    { return r.jobType }
func (r *Run) Attempt() int     { return r.attempt }
func (r *Run) Options() Options { return r.opts }

// UserID is the id of the user who submitted the job.
func (r *Run) UserID() string { return r.userID }

func (r *Run) Targets() []string {
	return slices.Clone(r.targets)
}

// Flag returns an operation flag set with WithFlag.
func (r *Run) Flag(name string) (any, bool) {
	v, ok := r.opts.Flags[name]
	return v, ok
}

// Cancelled reports whether the job has been cancelled.
func (r *Run) Cancelled() bool {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return r.e.job.Cancelled
}

// Succeeded records one processed target.
func (r *Run) Succeeded(id string) {
	r.q.recordItem(r, id, nil)
}

// Failed records one target that could not be processed.
func (r *Run) Failed(id string, err error) {
	if err == nil {
		err = fmt.Errorf("target %s failed", id)
	}
	r.q.recordItem(r, id, err)
}

// ForEachBatch walks the targets in BatchSize chunks. fn returns the
// per-target failures of a batch. An error from fn aborts the run and is
// returned, which sends the job through the retry path. Progress is
// recorded in target order. Iteration stops when ctx ends.
func ForEachBatch(ctx context.Context, run *Run, fn func(ctx context.Context, ids []string) (map[string]error, error)) (*Result, error) {
	targets := run.Targets()
	size := run.opts.BatchSize
	if size <= 0 {
		size = len(targets)
	}
	res := &Result{SuccessfulIDs: []string{}, Failed: []FailedItem{}}
	for batch := range slices.Chunk(targets, size) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		failed, err := fn(ctx, batch)
		if err != nil {
			return res, fmt.Errorf("batch starting at %s: %w", batch[0], err)
		}
		for _, id := range batch {
			if itemErr := failed[id]; itemErr != nil {
				run.Failed(id, itemErr)
				res.Failed = append(res.Failed, FailedItem{ID: id, Error: itemErr.Error()})
				continue
			}
			run.Succeeded(id)
			res.SuccessfulIDs = append(res.SuccessfulIDs, id)
		}
	}
	return res, nil
}
