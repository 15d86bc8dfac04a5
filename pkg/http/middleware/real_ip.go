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
	"strings"

	"github.com/gofiber/fiber/v2"
)

const ClientIpKey = "ip"

// RealIPMiddleware stores the client address from X-Forwarded-For or
// X-Real-IP in Locals.
func RealIPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
			// client, proxy1, proxy2
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				c.Locals(ClientIpKey, ip)
				return c.Next()
			}
		}
		if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
			c.Locals(ClientIpKey, ip)
		}
		return c.Next()
	}
}

// ClientIP returns the address stored by RealIPMiddleware, falling back to
// the peer address.
func ClientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals(ClientIpKey).(string); ok && ip != "" {
		return ip
	}
	return c.IP()
}
