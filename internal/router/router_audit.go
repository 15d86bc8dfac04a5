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
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/pkg/http"
	"github.com/skku-artclub/artclub/pkg/log"
)

func (rt *Router) listAuditEvents(c *fiber.Ctx) error {
	f := audit.Filter{
		EventType: audit.EventType(strings.ToUpper(c.Query("eventType"))),
		Severity:  audit.Severity(strings.ToUpper(c.Query("severity"))),
		UserID:    c.Query("userId"),
		Limit:     c.QueryInt("limit"),
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest.Code, "since must be RFC3339", c.Path())
		}
		f.Since = t
	}

	events, err := rt.Deps.Events.List(c.UserContext(), f)
	if err != nil {
		log.WithContext(c.UserContext()).Errorw("list audit events failed", "error", err)
		return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg, c.Path())
	}
	return http.WithRepJSON(c, events)
}
