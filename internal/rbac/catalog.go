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

package rbac

import (
	"slices"
	"strings"
)

// Permission is a `domain:action` capability string.
type Permission string

func (p Permission) String() string { return string(p) }

// Domain returns the part before the colon.
func (p Permission) Domain() string {
	d, _, _ := strings.Cut(string(p), ":")
	return d
}

// Action returns the part after the colon.
func (p Permission) Action() string {
	_, a, _ := strings.Cut(string(p), ":")
	return a
}

const (
	ArtworkCreate  Permission = "artwork:create"
	ArtworkRead    Permission = "artwork:read"
	ArtworkUpdate  Permission = "artwork:update"
	ArtworkDelete  Permission = "artwork:delete"
	ArtworkFeature Permission = "artwork:feature"

	ExhibitionCreate Permission = "exhibition:create"
	ExhibitionRead   Permission = "exhibition:read"
	ExhibitionUpdate Permission = "exhibition:update"
	ExhibitionDelete Permission = "exhibition:delete"

	NoticeCreate Permission = "notice:create"
	NoticeRead   Permission = "notice:read"
	NoticeUpdate Permission = "notice:update"
	NoticeDelete Permission = "notice:delete"

	UserRead       Permission = "user:read"
	UserUpdate     Permission = "user:update"
	UserDelete     Permission = "user:delete"
	UserManageRole Permission = "user:manage_role"

	AdminAccess    Permission = "admin:access"
	AdminDashboard Permission = "admin:dashboard"
	AdminSettings  Permission = "admin:settings"

	JobCreate Permission = "job:create"
	JobRead   Permission = "job:read"
	JobCancel Permission = "job:cancel"

	AuditRead Permission = "audit:read"
)

// Role is a named bundle of permissions.
type Role string

func (r Role) String() string { return string(r) }

const (
	RoleAdmin               Role = "ADMIN"
	RoleAdminReadOnly       Role = "ADMIN_READ_ONLY"
	RoleAdminUserManager    Role = "ADMIN_USER_MANAGER"
	RoleAdminContentManager Role = "ADMIN_CONTENT_MANAGER"
	RoleSkkuMember          Role = "SKKU_MEMBER"
	RoleExternalMember      Role = "EXTERNAL_MEMBER"
)

var allPermissions = []Permission{
	ArtworkCreate, ArtworkRead, ArtworkUpdate, ArtworkDelete, ArtworkFeature,
	ExhibitionCreate, ExhibitionRead, ExhibitionUpdate, ExhibitionDelete,
	NoticeCreate, NoticeRead, NoticeUpdate, NoticeDelete,
	UserRead, UserUpdate, UserDelete, UserManageRole,
	AdminAccess, AdminDashboard, AdminSettings,
	JobCreate, JobRead, JobCancel,
	AuditRead,
}

var allRoles = []Role{
	RoleAdmin,
	RoleAdminReadOnly,
	RoleAdminUserManager,
	RoleAdminContentManager,
	RoleSkkuMember,
	RoleExternalMember,
}

// ownershipRestricted permissions also require the actor to own the resource.
var ownershipRestricted = map[Permission]struct{}{
	ArtworkUpdate: {},
	ArtworkDelete: {},
	UserUpdate:    {},
}

// rolePermissions is built once at init and only read afterwards.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdmin: permSet(allPermissions...),
	RoleAdminReadOnly: permSet(
		ArtworkRead, ExhibitionRead, NoticeRead, UserRead,
		AdminAccess, AdminDashboard,
		JobRead, AuditRead,
	),
	RoleAdminUserManager: permSet(
		UserRead, UserUpdate, UserDelete, UserManageRole,
		ArtworkRead, ExhibitionRead, NoticeRead,
		AdminAccess, AdminDashboard,
		JobCreate, JobRead, JobCancel,
	),
	RoleAdminContentManager: permSet(
		ArtworkCreate, ArtworkRead, ArtworkUpdate, ArtworkDelete, ArtworkFeature,
		ExhibitionCreate, ExhibitionRead, ExhibitionUpdate, ExhibitionDelete,
		NoticeCreate, NoticeRead, NoticeUpdate, NoticeDelete,
		UserRead,
		AdminAccess, AdminDashboard,
		JobCreate, JobRead, JobCancel,
	),
	RoleSkkuMember: permSet(
		ArtworkCreate, ArtworkRead, ArtworkUpdate,
		ExhibitionRead, NoticeRead,
		UserRead, UserUpdate,
	),
	RoleExternalMember: permSet(
		ArtworkRead, ExhibitionRead, NoticeRead,
		UserRead, UserUpdate,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// AllPermissions returns every declared permission, sorted.
func AllPermissions() []Permission {
	out := slices.Clone(allPermissions)
	slices.Sort(out)
	return out
}

// AllRoles returns every declared role, most privileged first.
func AllRoles() []Role {
	return slices.Clone(allRoles)
}

// ParseRole maps a role name (case-insensitive) to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rolePermissions[r]; !ok {
		return "", false
	}
	return r, true
}

// IsKnownPermission reports whether p is declared in the catalog.
func IsKnownPermission(p Permission) bool {
	return slices.Contains(allPermissions, p)
}

// IsOwnershipRestricted reports whether p additionally requires ownership.
func IsOwnershipRestricted(p Permission) bool {
	_, ok := ownershipRestricted[p]
	return ok
}

// RolePermissions returns the configured set of role, sorted. Unknown roles
// yield an empty slice. ADMIN is not expanded beyond its table entry.
func RolePermissions(role Role) []Permission {
	set := rolePermissions[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func roleHas(role Role, p Permission) (has bool, known bool) {
	set, ok := rolePermissions[role]
	if !ok {
		return false, false
	}
	_, has = set[p]
	return has, true
}
