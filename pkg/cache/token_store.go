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

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenStoreUnavailable is returned when no backend is configured.
var ErrTokenStoreUnavailable = errors.New("token store unavailable")

// TokenStore tracks live login sessions in redis, keyed by session id.
// Positive lookups are remembered locally for a short time.
type TokenStore struct {
	remote   ICache
	local    *LocalCache
	prefix   string
	localTTL time.Duration
}

func NewTokenStore(remote ICache, local *LocalCache, prefix string) *TokenStore {
	return &TokenStore{
		remote:   remote,
		local:    local,
		prefix:   prefix,
		localTTL: 30 * time.Second,
	}
}

func (s *TokenStore) key(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

// Save records sessionID as belonging to userID for ttl.
func (s *TokenStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if s.remote == nil {
		return ErrTokenStoreUnavailable
	}
	if err := s.remote.Set(ctx, s.key(sessionID), userID, ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Exists reports whether sessionID is still live.
func (s *TokenStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	key := s.key(sessionID)
	if s.local != nil {
		if _, ok := s.local.Get(key); ok {
			return true, nil
		}
	}
	if s.remote == nil {
		return false, ErrTokenStoreUnavailable
	}
	userID, err := s.remote.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup session %s: %w", sessionID, err)
	}
	if s.local != nil {
		s.local.Set(key, []byte(userID), s.localTTL)
	}
	return true, nil
}

// Revoke ends sessionID.
func (s *TokenStore) Revoke(ctx context.Context, sessionID string) error {
	key := s.key(sessionID)
	if s.local != nil {
		s.local.Del(key)
	}
	if s.remote == nil {
		return ErrTokenStoreUnavailable
	}
	return s.remote.Del(ctx, key).Err()
}
