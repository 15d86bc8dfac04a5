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
	"fmt"
	"slices"

	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/pkg/metrics"
)

// Request carries the actor and request facts a guard needs.
type Request struct {
	Actor     *Actor
	Method    string
	Path      string
	ClientIP  string
	SessionID string
	UserAgent string
	// Params are route parameters, used by resource lookups.
	Params map[string]string
}

// Guard allows a request by returning nil. Otherwise it returns
// ErrUnauthenticated or a *DeniedError.
type Guard func(ctx context.Context, req *Request) error

// ResourceLookup resolves the resource a request targets. A nil resource
// with a nil error means it does not exist.
type ResourceLookup func(ctx context.Context, req *Request) (*Resource, error)

// OwnershipCheck is a guard that also hands the resolved resource to the
// caller on success.
type OwnershipCheck func(ctx context.Context, req *Request) (*Resource, error)

const (
	guardPermission = "permission"
	guardOwnership  = "ownership"
)

// PermissionGuard returns a guard requiring any (or, with requireAll, all)
// of required. Every outcome is audited exactly once.
func (e *Engine) PermissionGuard(required []Permission, requireAll bool) Guard {
	required = slices.Clone(required)
	return func(ctx context.Context, req *Request) error {
		if req == nil || req.Actor == nil {
			e.record(ctx, req, guardPermission, "unauthenticated", audit.EventSpec{
				Type:      audit.EventUnauthorizedAccess,
				Severity:  audit.SeverityMedium,
				Result:    audit.ResultFailure,
				Operation: "permission_check",
				Details: map[string]any{
					"reason":              "not_authenticated",
					"requiredPermissions": permissionNames(required),
				},
			})
			return ErrUnauthenticated
		}

		if !e.check(req.Actor.Role, required, requireAll) {
			e.record(ctx, req, guardPermission, "denied", audit.EventSpec{
				Type:      audit.EventPermissionDenied,
				Severity:  audit.SeverityHigh,
				Result:    audit.ResultBlocked,
				Operation: "permission_check",
				Details: map[string]any{
					"requiredPermissions": permissionNames(required),
					"requireAll":          requireAll,
					"userRole":            string(req.Actor.Role),
				},
			})
			return &DeniedError{Required: slices.Clone(required), RequireAll: requireAll}
		}

		e.record(ctx, req, guardPermission, "granted", audit.EventSpec{
			Type:      audit.EventPermissionGranted,
			Severity:  audit.SeverityLow,
			Result:    audit.ResultSuccess,
			Operation: "permission_check",
			Details: map[string]any{
				"requiredPermissions": permissionNames(required),
				"requireAll":          requireAll,
				"userRole":            string(req.Actor.Role),
			},
		})
		return nil
	}
}

// OwnershipGuard returns a check requiring perm on the resource found by
// lookup. A missing resource yields ErrResourceNotFound, an existing one the
// actor may not touch yields a *DeniedError.
func (e *Engine) OwnershipGuard(perm Permission, lookup ResourceLookup) OwnershipCheck {
	required := []Permission{perm}
	return func(ctx context.Context, req *Request) (*Resource, error) {
		if req == nil || req.Actor == nil {
			e.record(ctx, req, guardOwnership, "unauthenticated", audit.EventSpec{
				Type:      audit.EventUnauthorizedAccess,
				Severity:  audit.SeverityMedium,
				Result:    audit.ResultFailure,
				Operation: "ownership_check",
				Details: map[string]any{
					"reason":             "not_authenticated",
					"requiredPermission": string(perm),
				},
			})
			return nil, ErrUnauthenticated
		}

		res, err := lookup(ctx, req)
		if err != nil {
			metrics.RecordAuthzDecision(guardOwnership, "error")
			return nil, fmt.Errorf("rbac: resolve resource: %w", err)
		}
		if res == nil {
			e.record(ctx, req, guardOwnership, "not_found", audit.EventSpec{
				Type:      audit.EventResourceNotFound,
				Severity:  audit.SeverityLow,
				Result:    audit.ResultFailure,
				Operation: "ownership_check",
				Details: map[string]any{
					"requiredPermission": string(perm),
				},
			})
			return nil, ErrResourceNotFound
		}

		if !e.CheckOwnership(req.Actor, res, perm) {
			e.record(ctx, req, guardOwnership, "denied", audit.EventSpec{
				Type:       audit.EventPermissionDenied,
				Severity:   audit.SeverityHigh,
				Result:     audit.ResultBlocked,
				Operation:  "ownership_check",
				ResourceID: res.ID,
				Details: map[string]any{
					"requiredPermission": string(perm),
					"userRole":           string(req.Actor.Role),
					"resourceOwner":      res.OwnerID(),
				},
			})
			return nil, &DeniedError{Required: required}
		}

		e.record(ctx, req, guardOwnership, "granted", audit.EventSpec{
			Type:       audit.EventPermissionGranted,
			Severity:   audit.SeverityLow,
			Result:     audit.ResultSuccess,
			Operation:  "ownership_check",
			ResourceID: res.ID,
			Details: map[string]any{
				"requiredPermission": string(perm),
				"userRole":           string(req.Actor.Role),
			},
		})
		return res, nil
	}
}

func (e *Engine) record(ctx context.Context, req *Request, guard, decision string, spec audit.EventSpec) {
	metrics.RecordAuthzDecision(guard, decision)
	if e.auditor == nil {
		return
	}
	if req != nil {
		spec.Actor = req.Actor.AuditActor()
		spec.Endpoint = req.Path
		spec.Method = req.Method
		spec.ClientIP = req.ClientIP
		spec.SessionID = req.SessionID
		spec.UserAgent = req.UserAgent
	}
	e.auditor.Log(ctx, spec)
}
