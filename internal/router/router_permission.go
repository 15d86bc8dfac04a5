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
	"github.com/gofiber/fiber/v2"
	"github.com/skku-artclub/artclub/internal/rbac"
	"github.com/skku-artclub/artclub/pkg/http"
)

type catalogResp struct {
	Permissions         []rbac.Permission               `json:"permissions"`
	Roles               map[rbac.Role][]rbac.Permission `json:"roles"`
	OwnershipRestricted []rbac.Permission               `json:"ownershipRestricted"`
}

func (rt *Router) listPermissions(c *fiber.Ctx) error {
	resp := catalogResp{
		Permissions: rt.Engine.AllPermissions(),
		Roles:       make(map[rbac.Role][]rbac.Permission),
	}
	for _, role := range rbac.AllRoles() {
		resp.Roles[role] = rt.Engine.UserPermissions(role)
	}
	for _, p := range resp.Permissions {
		if rbac.IsOwnershipRestricted(p) {
			resp.OwnershipRestricted = append(resp.OwnershipRestricted, p)
		}
	}
	return http.WithRepJSON(c, resp)
}

type myPermissionsResp struct {
	UserId      string            `json:"userId"`
	Role        rbac.Role         `json:"role"`
	Permissions []rbac.Permission `json:"permissions"`
}

func (rt *Router) myPermissions(c *fiber.Ctx) error {
	actor := actorOf(c)
	return http.WithRepJSON(c, myPermissionsResp{
		UserId:      actor.ID,
		Role:        actor.Role,
		Permissions: rt.Engine.UserPermissions(actor.Role),
	})
}
