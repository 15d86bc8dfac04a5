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
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

const defaultLocalMaxBytes = 32 * 1024 * 1024

var ProviderSet = wire.NewSet(
	ProvideRedis,
	ProvideICache,
	ProvideLocalCache,
	ProvideTokenStore,
)

// ProvideRedis connects when an address is configured, else returns nil.
func ProvideRedis(conf Redis) (*redis.Client, error) {
	if !conf.Enabled() {
		return nil, nil
	}
	return NewRedis(conf)
}

func ProvideICache(client *redis.Client) ICache {
	if client == nil {
		return nil
	}
	return client
}

func ProvideLocalCache() *LocalCache {
	return NewLocalCache(defaultLocalMaxBytes)
}

func ProvideTokenStore(conf Redis, remote ICache, local *LocalCache) *TokenStore {
	conf.SetDefaults()
	return NewTokenStore(remote, local, conf.KeyPrefix)
}
