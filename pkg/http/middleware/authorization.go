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
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/skku-artclub/artclub/pkg/http"
	"github.com/skku-artclub/artclub/pkg/http/jwt"
	"github.com/skku-artclub/artclub/pkg/log"
)

// ClaimsKey is the fiber Locals key holding *jwt.AuthClaims.
const ClaimsKey = "claims"

// SessionChecker reports whether a login session is still live.
type SessionChecker interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// AuthorizationMiddleware verifies the bearer token when one is sent and
// stores its claims in Locals. Requests without an Authorization header pass
// through anonymously; route guards decide what they may reach. A nil
// sessions skips the session lookup.
func AuthorizationMiddleware(secretKey string, sessions SessionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aToken := c.Get(fiber.HeaderAuthorization)
		if aToken == "" {
			return c.Next()
		}

		parts := strings.SplitN(aToken, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.AuthorizationIncorrect.Code, http.AuthorizationIncorrect.Msg, c.Path())
		}

		claims, err := jwt.ParseToken(parts[1], secretKey)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
			}
			log.Warnw("parse token failed", "path", c.Path(), "error", err)
			return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.InvalidToken.Code, http.InvalidToken.Msg, c.Path())
		}

		if sessions != nil {
			live, err := sessions.Exists(c.UserContext(), claims.SessionId)
			if err != nil {
				log.Errorw("check session failed", "sessionId", claims.SessionId, "error", err)
				return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg, c.Path())
			}
			if !live {
				return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
			}
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// Claims returns the verified claims of the request, if any.
func Claims(c *fiber.Ctx) (*jwt.AuthClaims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*jwt.AuthClaims)
	return claims, ok && claims != nil
}
