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
	"context"
	"time"

	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/pkg/log"
)

// Actor is the authenticated user a decision is made for.
type Actor struct {
	ID          string
	Username    string
	Email       string
	Role        Role
	Active      bool
	LastLoginAt *time.Time
}

// AuditActor converts the actor into the audit trail's representation.
func (a *Actor) AuditActor() *audit.Actor {
	if a == nil {
		return nil
	}
	return &audit.Actor{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		Role:        string(a.Role),
		Active:      a.Active,
		LastLoginAt: a.LastLoginAt,
	}
}

// Resource is the minimal view of an owned object. UserID is checked
// before CreatedBy.
type Resource struct {
	ID        string
	UserID    string
	CreatedBy string
	Data      any
}

// OwnerID returns UserID, falling back to CreatedBy.
func (r *Resource) OwnerID() string {
	if r == nil {
		return ""
	}
	if r.UserID != "" {
		return r.UserID
	}
	return r.CreatedBy
}

// Auditor is the audit trail as seen by the engine.
type Auditor interface {
	Log(ctx context.Context, spec audit.EventSpec) audit.Receipt
}

// Engine answers permission and ownership questions and builds guards.
// The zero value is not usable; construct it with NewEngine.
type Engine struct {
	auditor Auditor
	logger  log.ILogger
}

// NewEngine returns an engine recording guard outcomes to auditor. A nil
// logger falls back to the global one.
func NewEngine(auditor Auditor, logger log.ILogger) *Engine {
	if logger == nil {
		logger = log.Global()
	}
	return &Engine{auditor: auditor, logger: logger}
}

// HasPermission reports whether role grants perm. ADMIN is always allowed.
func (e *Engine) HasPermission(role Role, perm Permission) bool {
	if perm == "" {
		e.logger.Warnw("permission check with empty permission", "role", string(role))
		return false
	}
	if role == RoleAdmin {
		return true
	}
	has, known := roleHas(role, perm)
	if !known {
		e.logger.Warnw("permission check for unknown role", "role", string(role), "permission", string(perm))
		return false
	}
	e.logger.Debugw("permission check", "role", string(role), "permission", string(perm), "granted", has)
	return has
}

// HasAnyPermission reports whether role grants at least one of perms. An
// empty list is never satisfied.
func (e *Engine) HasAnyPermission(role Role, perms []Permission) bool {
	for _, p := range perms {
		if e.HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether role grants every one of perms. An
// empty list is trivially satisfied.
func (e *Engine) HasAllPermissions(role Role, perms []Permission) bool {
	for _, p := range perms {
		if !e.HasPermission(role, p) {
			return false
		}
	}
	return true
}

// CheckOwnership combines the role check with resource ownership for
// ownership-restricted permissions. A resource without an owner is not
// owned by anyone.
func (e *Engine) CheckOwnership(actor *Actor, res *Resource, perm Permission) bool {
	if actor == nil {
		return false
	}
	if actor.Role == RoleAdmin {
		return true
	}
	if !e.HasPermission(actor.Role, perm) {
		return false
	}
	if !IsOwnershipRestricted(perm) {
		return true
	}
	owner := res.OwnerID()
	return owner != "" && owner == actor.ID
}

// UserPermissions returns the permissions configured for role.
func (e *Engine) UserPermissions(role Role) []Permission {
	return RolePermissions(role)
}

// AllPermissions returns the whole catalog.
func (e *Engine) AllPermissions() []Permission {
	return AllPermissions()
}

func (e *Engine) check(role Role, perms []Permission, requireAll bool) bool {
	if requireAll {
		return e.HasAllPermissions(role, perms)
	}
	return e.HasAnyPermission(role, perms)
}

func permissionNames(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
