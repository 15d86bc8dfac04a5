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
	"fmt"

	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/skku-artclub/artclub/internal/rbac"
)

var jobPermissions = map[jobqueue.JobType]rbac.Permission{
	jobqueue.BulkDeleteUsers:           rbac.UserDelete,
	jobqueue.BulkUpdateUserRoles:       rbac.UserManageRole,
	jobqueue.BulkDeleteArtworks:        rbac.ArtworkDelete,
	jobqueue.BulkToggleArtworkFeatured: rbac.ArtworkFeature,
	jobqueue.BulkDeleteExhibitions:     rbac.ExhibitionDelete,
	jobqueue.BulkDeleteNotices:         rbac.NoticeDelete,
}

// RequiredPermission returns the domain permission a submitter of t must
// hold in addition to job:create.
func RequiredPermission(t jobqueue.JobType) (rbac.Permission, bool) {
	p, ok := jobPermissions[t]
	return p, ok
}

// ValidateFlags rejects flags a handler of t could not run with.
func ValidateFlags(t jobqueue.JobType, flags map[string]any) error {
	switch t {
	case jobqueue.BulkUpdateUserRoles:
		name, _ := flags[FlagRole].(string)
		if _, ok := rbac.ParseRole(name); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidRole, name)
		}
	case jobqueue.BulkToggleArtworkFeatured:
		if raw, ok := flags[FlagFeatured]; ok {
			if _, ok := raw.(bool); !ok {
				return fmt.Errorf("flag %s must be a boolean", FlagFeatured)
			}
		}
	}
	return nil
}
