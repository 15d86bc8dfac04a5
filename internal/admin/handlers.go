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
	"errors"
	"fmt"

	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/skku-artclub/artclub/internal/rbac"
)

// Operation flags read by the handlers.
const (
	FlagRole     = "role"
	FlagFeatured = "featured"
)

var (
	ErrSelfTarget  = errors.New("the submitting user cannot target their own account")
	ErrInvalidRole = errors.New("invalid or missing role flag")
)

type UserService interface {
	DeleteUsers(ctx context.Context, userIds []string) (map[string]error, error)
	UpdateUserRoles(ctx context.Context, userIds []string, role string) (map[string]error, error)
}

type ArtworkService interface {
	DeleteArtworks(ctx context.Context, artworkIds []string) (map[string]error, error)
	SetFeatured(ctx context.Context, artworkIds []string, featured *bool) (map[string]error, error)
}

type ExhibitionService interface {
	DeleteExhibitions(ctx context.Context, exhibitionIds []string) (map[string]error, error)
}

type NoticeService interface {
	DeleteNotices(ctx context.Context, noticeIds []string) (map[string]error, error)
}

// Services are the domain operations bulk jobs run against. Nil services
// leave their job types unregistered.
type Services struct {
	Users       UserService
	Artworks    ArtworkService
	Exhibitions ExhibitionService
	Notices     NoticeService
}

// Register binds a handler for every job type whose service is present.
func Register(reg *jobqueue.Registry, svc Services) *jobqueue.Registry {
	if svc.Users != nil {
		reg.Register(jobqueue.BulkDeleteUsers, deleteUsers(svc.Users))
		reg.Register(jobqueue.BulkUpdateUserRoles, updateUserRoles(svc.Users))
	}
	if svc.Artworks != nil {
		reg.Register(jobqueue.BulkDeleteArtworks, batchHandler(svc.Artworks.DeleteArtworks))
		reg.Register(jobqueue.BulkToggleArtworkFeatured, toggleFeatured(svc.Artworks))
	}
	if svc.Exhibitions != nil {
		reg.Register(jobqueue.BulkDeleteExhibitions, batchHandler(svc.Exhibitions.DeleteExhibitions))
	}
	if svc.Notices != nil {
		reg.Register(jobqueue.BulkDeleteNotices, batchHandler(svc.Notices.DeleteNotices))
	}
	return reg
}

type batchFunc func(ctx context.Context, ids []string) (map[string]error, error)

func batchHandler(fn batchFunc) jobqueue.Handler {
	return func(ctx context.Context, run *jobqueue.Run) (*jobqueue.Result, error) {
		return jobqueue.ForEachBatch(ctx, run, fn)
	}
}

// excludeSelf fails the submitter's own id and runs fn on the rest.
func excludeSelf(run *jobqueue.Run, fn batchFunc) batchFunc {
	return func(ctx context.Context, ids []string) (map[string]error, error) {
		self := run.UserID()
		rest := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != self || self == "" {
				rest = append(rest, id)
			}
		}
		failed := map[string]error{}
		if len(rest) != len(ids) {
			failed[self] = ErrSelfTarget
		}
		if len(rest) == 0 {
			return failed, nil
		}
		more, err := fn(ctx, rest)
		if err != nil {
			return nil, err
		}
		for id, e := range more {
			failed[id] = e
		}
		return failed, nil
	}
}

func deleteUsers(users UserService) jobqueue.Handler {
	return func(ctx context.Context, run *jobqueue.Run) (*jobqueue.Result, error) {
		return jobqueue.ForEachBatch(ctx, run, excludeSelf(run, users.DeleteUsers))
	}
}

func updateUserRoles(users UserService) jobqueue.Handler {
	return func(ctx context.Context, run *jobqueue.Run) (*jobqueue.Result, error) {
		raw, _ := run.Flag(FlagRole)
		name, _ := raw.(string)
		role, ok := rbac.ParseRole(name)
		if !ok {
			invalid := fmt.Errorf("%w: %q", ErrInvalidRole, name)
			return jobqueue.ForEachBatch(ctx, run, func(_ context.Context, ids []string) (map[string]error, error) {
				failed := make(map[string]error, len(ids))
				for _, id := range ids {
					failed[id] = invalid
				}
				return failed, nil
			})
		}
		return jobqueue.ForEachBatch(ctx, run, excludeSelf(run, func(ctx context.Context, ids []string) (map[string]error, error) {
			return users.UpdateUserRoles(ctx, ids, string(role))
		}))
	}
}

func toggleFeatured(artworks ArtworkService) jobqueue.Handler {
	return func(ctx context.Context, run *jobqueue.Run) (*jobqueue.Result, error) {
		var featured *bool
		if raw, ok := run.Flag(FlagFeatured); ok {
			if v, ok := raw.(bool); ok {
				featured = &v
			}
		}
		return jobqueue.ForEachBatch(ctx, run, func(ctx context.Context, ids []string) (map[string]error, error) {
			return artworks.SetFeatured(ctx, ids, featured)
		})
	}
}
