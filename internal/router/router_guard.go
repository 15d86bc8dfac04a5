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

package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/internal/model"
	"github.com/skku-artclub/artclub/internal/rbac"
	"github.com/skku-artclub/artclub/pkg/http"
	"github.com/skku-artclub/artclub/pkg/http/middleware"
	"github.com/skku-artclub/artclub/pkg/log"
	"gorm.io/gorm"
)

const (
	actorKey    = "actor"
	resourceKey = "resource"
)

// actorMiddleware resolves the authenticated actor from the token claims
// and tags the request context with its correlation id.
func (rt *Router) actorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := audit.WithCorrelationID(c.UserContext(), middleware.RequestId(c))
		c.SetUserContext(ctx)

		claims, ok := middleware.Claims(c)
		if !ok {
			return c.Next()
		}

		role := rbac.Role(claims.Role)
		if r, ok := rbac.ParseRole(claims.Role); ok {
			role = r
		}
		actor := &rbac.Actor{
			ID:       claims.UserId,
			Username: claims.Username,
			Role:     role,
			Active:   true,
		}

		if rt.Deps.Users != nil {
			u, err := rt.Deps.Users.GetUser(ctx, claims.UserId)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.InvalidToken.Code, http.InvalidToken.Msg, c.Path())
			}
			if err != nil {
				log.WithContext(ctx).Errorw("load actor failed", "userId", claims.UserId, "error", err)
				return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg, c.Path())
			}
			if !u.IsActive {
				return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.UserInactive.Code, http.UserInactive.Msg, c.Path())
			}
			actor = actorFromUser(u)
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

func actorFromUser(u *model.User) *rbac.Actor {
	role := rbac.Role(u.Role)
	if r, ok := rbac.ParseRole(u.Role); ok {
		role = r
	}
	return &rbac.Actor{
		ID:          u.UserId,
		Username:    u.Username,
		Email:       u.Email,
		Role:        role,
		Active:      u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}

func actorOf(c *fiber.Ctx) *rbac.Actor {
	a, _ := c.Locals(actorKey).(*rbac.Actor)
	return a
}

func guardRequest(c *fiber.Ctx) *rbac.Request {
	req := &rbac.Request{
		Actor:     actorOf(c),
		Method:    c.Method(),
		Path:      c.Path(),
		ClientIP:  middleware.ClientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Params:    c.AllParams(),
	}
	if claims, ok := middleware.Claims(c); ok {
		req.SessionID = claims.SessionId
	}
	return req
}

func (rt *Router) requireAny(perms ...rbac.Permission) fiber.Handler {
	return rt.guard(rt.Engine.PermissionGuard(perms, false))
}

func (rt *Router) requireAll(perms ...rbac.Permission) fiber.Handler {
	return rt.guard(rt.Engine.PermissionGuard(perms, true))
}

// authenticated only requires an actor.
func (rt *Router) authenticated() fiber.Handler {
	return rt.guard(rt.Engine.PermissionGuard(nil, true))
}

func (rt *Router) guard(g rbac.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := g(c.UserContext(), guardRequest(c)); err != nil {
			return guardError(c, err)
		}
		return c.Next()
	}
}

// owned runs an ownership check and hands the resource to the next handler.
func (rt *Router) owned(perm rbac.Permission, lookup rbac.ResourceLookup) fiber.Handler {
	check := rt.Engine.OwnershipGuard(perm, lookup)
	return func(c *fiber.Ctx) error {
		res, err := check(c.UserContext(), guardRequest(c))
		if err != nil {
			return guardError(c, err)
		}
		c.Locals(resourceKey, res)
		return c.Next()
	}
}

func resourceOf(c *fiber.Ctx) *rbac.Resource {
	r, _ := c.Locals(resourceKey).(*rbac.Resource)
	return r
}

// guardError maps guard outcomes to 401, 403 and 404.
func guardError(c *fiber.Ctx, err error) error {
	var denied *rbac.DeniedError
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	case errors.As(err, &denied):
		return http.WithRepErrStatus(c, fiber.StatusForbidden, http.PermissionDenied.Code, denied.Error(), c.Path())
	case errors.Is(err, rbac.ErrPermissionDenied):
		return http.WithRepErrStatus(c, fiber.StatusForbidden, http.PermissionDenied.Code, http.PermissionDenied.Msg, c.Path())
	case errors.Is(err, rbac.ErrResourceNotFound):
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.NotFound.Code, http.NotFound.Msg, c.Path())
	default:
		log.WithContext(c.UserContext()).Errorw("authorization check failed", "path", c.Path(), "error", err)
		return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg, c.Path())
	}
}
