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

package statemachine

// JobStatus is the lifecycle status of a batch job.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobCancelled JobStatus = "CANCELLED"
	// JobPartial is reserved. Jobs with mixed outcomes finish COMPLETED.
	JobPartial JobStatus = "PARTIAL"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled || s == JobPartial
}

// IsCancellable reports whether a job in this status may still be cancelled.
func (s JobStatus) IsCancellable() bool {
	return s == JobPending || s == JobRunning
}

func (s JobStatus) String() string {
	return string(s)
}

// NewJobStateMachine returns the batch job transition table. RUNNING ->
// PENDING is the retry edge.
func NewJobStateMachine() *StateMachine[JobStatus] {
	sm := New[JobStatus]()
	sm.Allow(JobPending, JobRunning, JobCancelled).
		Allow(JobRunning, JobPending, JobCompleted, JobFailed, JobCancelled)
	return sm
}
