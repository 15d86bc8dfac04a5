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
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/pkg/statemachine"
)

var (
	ErrInvalidJob = errors.New("jobqueue: job needs a type and at least one target")
	ErrNoHandler  = errors.New("jobqueue: no handler registered for job type")
)

// JobType names a bulk operation.
type JobType string

const (
	BulkDeleteUsers           JobType = "BULK_DELETE_USERS"
	BulkUpdateUserRoles       JobType = "BULK_UPDATE_USER_ROLES"
	BulkDeleteArtworks        JobType = "BULK_DELETE_ARTWORKS"
	BulkToggleArtworkFeatured JobType = "BULK_TOGGLE_ARTWORK_FEATURED"
	BulkDeleteExhibitions     JobType = "BULK_DELETE_EXHIBITIONS"
	BulkDeleteNotices         JobType = "BULK_DELETE_NOTICES"
)

// Status aliases the shared job status type.
type Status = statemachine.JobStatus

const (
	StatusPending   = statemachine.JobPending
	StatusRunning   = statemachine.JobRunning
	StatusCompleted = statemachine.JobCompleted
	StatusFailed    = statemachine.JobFailed
	StatusCancelled = statemachine.JobCancelled
	StatusPartial   = statemachine.JobPartial
)

// Options tune one job's execution.
type Options struct {
	BatchSize     int            `json:"batchSize"`
	RetryAttempts int            `json:"retryAttempts"`
	RetryDelay    time.Duration  `json:"retryDelay"`
	Flags         map[string]any `json:"flags,omitempty"`
}

// ItemError is one recorded failure. ID is empty for job level errors.
type ItemError struct {
	ID    string    `json:"id,omitempty"`
	Error string    `json:"error"`
	At    time.Time `json:"at"`
}

type Progress struct {
	Total      int         `json:"total"`
	Processed  int         `json:"processed"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors,omitempty"`
}

// Job is a snapshot of a batch job. Queue methods return copies; mutating
// one has no effect on the queue.
type Job struct {
	ID          string     `json:"id"`
	Type        JobType    `json:"type"`
	Targets     []string   `json:"targets"`
	Options     Options    `json:"options"`
	Status      Status     `json:"status"`
	Priority    int        `json:"priority"`
	Description string     `json:"description,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Progress    Progress   `json:"progress"`
	Result      *Result    `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retryCount"`
	Cancelled   bool       `json:"cancelled"`

	seq uint64
}

// IsPartial reports a completed job where some targets failed.
func (j *Job) IsPartial() bool {
	return j.Status == StatusCompleted && j.Progress.Failed > 0
}

func (j *Job) clone() *Job {
	c := *j
	c.Targets = slices.Clone(j.Targets)
	c.Options.Flags = maps.Clone(j.Options.Flags)
	c.Progress.Errors = slices.Clone(j.Progress.Errors)
	return &c
}

// Spec describes a job submission.
type Spec struct {
	Type        JobType
	Targets     []string
	Priority    int
	Description string
	Actor       *audit.Actor
}

// Option overrides a per-job default.
type Option func(*Options)

func WithBatchSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

func WithRetryAttempts(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.RetryAttempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) {
		if d >= 0 {
			o.RetryDelay = d
		}
	}
}

// WithFlag sets an operation specific flag read by the handler.
func WithFlag(name string, value any) Option {
	return func(o *Options) {
		if o.Flags == nil {
			o.Flags = make(map[string]any)
		}
		o.Flags[name] = value
	}
}

// Filter narrows AllJobs. Zero fields match everything.
type Filter struct {
	Status Status
	Type   JobType
	UserID string
}

func (f Filter) match(j *Job) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.Type != "" && j.Type != f.Type {
		return false
	}
	if f.UserID != "" && j.UserID != f.UserID {
		return false
	}
	return true
}
