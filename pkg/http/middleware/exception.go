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

package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/skku-artclub/artclub/pkg/http"
	"github.com/skku-artclub/artclub/pkg/log"
	"github.com/skku-artclub/artclub/pkg/safe"
)

// ExceptionMiddleware turns a handler panic into a 500 response.
func ExceptionMiddleware(c *fiber.Ctx) error {
	err := safe.Call(c.Next)
	var pe *safe.PanicError
	if errors.As(err, &pe) {
		log.WithContext(c.UserContext()).Errorw("panic in handler",
			"path", c.Path(),
			"panic", pe.Value,
			"stack", string(pe.Stack),
		)
		return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg, c.Path())
	}
	return err
}
