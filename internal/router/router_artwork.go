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
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/skku-artclub/artclub/internal/rbac"
	"github.com/skku-artclub/artclub/pkg/http"
	"github.com/skku-artclub/artclub/pkg/log"
	"gorm.io/gorm"
)

func (rt *Router) artworkLookup(ctx context.Context, req *rbac.Request) (*rbac.Resource, error) {
	a, err := rt.Deps.Artworks.GetArtwork(ctx, req.Params["artworkId"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rbac.Resource{ID: a.ArtworkId, UserID: a.UserId, Data: a}, nil
}

func (rt *Router) getArtwork(c *fiber.Ctx) error {
	return http.WithRepJSON(c, resourceOf(c).Data)
}

func (rt *Router) deleteArtwork(c *fiber.Ctx) error {
	res := resourceOf(c)
	failed, err := rt.Deps.Artworks.DeleteArtworks(c.UserContext(), []string{res.ID})
	if err == nil {
		err = failed[res.ID]
	}
	if err != nil {
		log.WithContext(c.UserContext()).Errorw("delete artwork failed", "artworkId", res.ID, "error", err)
		return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg, c.Path())
	}
	return http.WithRepNotDetail(c)
}
