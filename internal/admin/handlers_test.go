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

package admin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	existing map[string]bool
	roles    map[string]string
	featured map[string]bool
}

func newFakeStore(ids ...string) *fakeStore {
	s := &fakeStore{existing: map[string]bool{}, roles: map[string]string{}, featured: map[string]bool{}}
	for _, id := range ids {
		s.existing[id] = true
	}
	return s
}

func (s *fakeStore) apply(ids []string, fn func(id string)) map[string]error {
	s.mu.Lock()
	defer s.mu.Unlock()
	missing := map[string]error{}
	for _, id := range ids {
		if !s.existing[id] {
			missing[id] = assert.AnError
			continue
		}
		fn(id)
	}
	return missing
}

func (s *fakeStore) delete(_ context.Context, ids []string) (map[string]error, error) {
	return s.apply(ids, func(id string) { delete(s.existing, id) }), nil
}

func (s *fakeStore) DeleteUsers(ctx context.Context, ids []string) (map[string]error, error) {
	return s.delete(ctx, ids)
}

func (s *fakeStore) UpdateUserRoles(_ context.Context, ids []string, role string) (map[string]error, error) {
	return s.apply(ids, func(id string) { s.roles[id] = role }), nil
}

func (s *fakeStore) DeleteArtworks(ctx context.Context, ids []string) (map[string]error, error) {
	return s.delete(ctx, ids)
}

func (s *fakeStore) SetFeatured(_ context.Context, ids []string, featured *bool) (map[string]error, error) {
	return s.apply(ids, func(id string) {
		if featured == nil {
			s.featured[id] = !s.featured[id]
			return
		}
		s.featured[id] = *featured
	}), nil
}

func (s *fakeStore) DeleteExhibitions(ctx context.Context, ids []string) (map[string]error, error) {
	return s.delete(ctx, ids)
}

func (s *fakeStore) DeleteNotices(ctx context.Context, ids []string) (map[string]error, error) {
	return s.delete(ctx, ids)
}

func runJob(t *testing.T, store *fakeStore, typ jobqueue.JobType, targets []string, opts ...jobqueue.Option) *jobqueue.Job {
	t.Helper()
	reg := Register(jobqueue.NewRegistry(), Services{Users: store, Artworks: store, Exhibitions: store, Notices: store})
	q := jobqueue.New(jobqueue.Config{}, reg, nil)
	t.Cleanup(q.Stop)

	jobID, err := q.CreateJob(context.Background(), jobqueue.Spec{Type: typ, Targets: targets, Actor: &audit.Actor{ID: "admin"}}, opts...)
	require.NoError(t, err)
	q.ProcessQueue()

	var job *jobqueue.Job
	require.Eventually(t, func() bool {
		job, _ = q.JobStatus(jobID)
		return job.Status.IsTerminal()
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestRegister_AllTypes(t *testing.T) {
	store := newFakeStore()
	reg := Register(jobqueue.NewRegistry(), Services{Users: store, Artworks: store, Exhibitions: store, Notices: store})
	assert.Len(t, reg.Types(), 6)

	partial := Register(jobqueue.NewRegistry(), Services{Notices: store})
	assert.Equal(t, []jobqueue.JobType{jobqueue.BulkDeleteNotices}, partial.Types())
}

func TestDeleteUsers_SkipsSubmitter(t *testing.T) {
	store := newFakeStore("u1", "u2", "admin")
	job := runJob(t, store, jobqueue.BulkDeleteUsers, []string{"u1", "admin", "u2", "ghost"})

	assert.Equal(t, jobqueue.StatusCompleted, job.Status)
	assert.Equal(t, 4, job.Progress.Processed)
	assert.Equal(t, 2, job.Progress.Successful)
	assert.Equal(t, 2, job.Progress.Failed)
	assert.True(t, store.existing["admin"])
	assert.False(t, store.existing["u1"])

	failed := map[string]string{}
	for _, f := range job.Result.Failed {
		failed[f.ID] = f.Error
	}
	assert.Equal(t, ErrSelfTarget.Error(), failed["admin"])
	assert.Contains(t, failed, "ghost")
}

func TestUpdateUserRoles(t *testing.T) {
	store := newFakeStore("u1", "u2")
	job := runJob(t, store, jobqueue.BulkUpdateUserRoles, []string{"u1", "u2"},
		jobqueue.WithFlag(FlagRole, "admin_read_only"))

	assert.Equal(t, 2, job.Progress.Successful)
	assert.Equal(t, "ADMIN_READ_ONLY", store.roles["u1"])
}

func TestUpdateUserRoles_InvalidRole(t *testing.T) {
	store := newFakeStore("u1", "u2")
	job := runJob(t, store, jobqueue.BulkUpdateUserRoles, []string{"u1", "u2"},
		jobqueue.WithFlag(FlagRole, "OWNER"))

	assert.Equal(t, jobqueue.StatusCompleted, job.Status)
	assert.Equal(t, 2, job.Progress.Failed)
	assert.Contains(t, job.Progress.Errors[0].Error, ErrInvalidRole.Error())
	assert.Empty(t, store.roles)
}

func TestToggleFeatured(t *testing.T) {
	store := newFakeStore("a1", "a2")
	runJob(t, store, jobqueue.BulkToggleArtworkFeatured, []string{"a1", "a2"})
	assert.True(t, store.featured["a1"])

	runJob(t, store, jobqueue.BulkToggleArtworkFeatured, []string{"a1"}, jobqueue.WithFlag(FlagFeatured, true))
	assert.True(t, store.featured["a1"])

	runJob(t, store, jobqueue.BulkToggleArtworkFeatured, []string{"a1", "a2"})
	assert.False(t, store.featured["a1"])
	assert.False(t, store.featured["a2"])
}

func TestDeleteContent(t *testing.T) {
	store := newFakeStore("e1", "n1", "a1")
	for typ, id := range map[jobqueue.JobType]string{
		jobqueue.BulkDeleteExhibitions: "e1",
		jobqueue.BulkDeleteNotices:     "n1",
		jobqueue.BulkDeleteArtworks:    "a1",
	} {
		job := runJob(t, store, typ, []string{id})
		assert.Equal(t, 1, job.Progress.Successful, typ)
	}
	assert.Empty(t, store.existing)
}
