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

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/skku-artclub/artclub/internal/config"
	"github.com/skku-artclub/artclub/internal/rbac"
	"github.com/skku-artclub/artclub/pkg/cache"
	"github.com/skku-artclub/artclub/pkg/http/jwt"
	"github.com/spf13/cobra"
)

var (
	tokenUser     string
	tokenUsername string
	tokenRole     string
	tokenExpire   time.Duration
)

// tokenCmd mints an access token for operators and smoke tests. The session
// is registered in redis when one is configured so the API accepts it.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := rbac.ParseRole(tokenRole)
		if !ok {
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		loader, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg := loader.Config()
		if err := cfg.Validate(); err != nil {
			return err
		}

		expire := cfg.Http.Auth.AccessExpire
		if tokenExpire > 0 {
			expire = tokenExpire
		}
		sub := jwt.Subject{UserId: tokenUser, Username: tokenUsername, Role: role.String()}
		token, claims, err := jwt.GenToken(sub, []byte(cfg.Http.Auth.SecretKey), cfg.Http.Auth.Issuer, expire)
		if err != nil {
			return err
		}

		if cfg.Redis.Enabled() {
			client, err := cache.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			defer client.Close()
			store := cache.ProvideTokenStore(cfg.Redis, cache.ProvideICache(client), cache.ProvideLocalCache())
			if err := store.Save(context.Background(), claims.SessionId, tokenUser, expire); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "session:  %s\n", claims.SessionId)
		fmt.Fprintf(out, "expires:  %s\n", claims.ExpiresAt.Time.Format(time.RFC3339))
		fmt.Fprintf(out, "token:    %s\n", token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id carried by the token")
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "display name carried by the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", rbac.RoleSkkuMember.String(), "role carried by the token")
	tokenCmd.Flags().DurationVar(&tokenExpire, "expire", 0, "token lifetime, defaults to http.auth.accessExpire")
	_ = tokenCmd.MarkFlagRequired("user")
}
