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
	"encoding/binary"
	"time"

	"github.com/VictoriaMetrics/fastcache"
)

// LocalCache is an in-process byte cache with per-entry expiry, backed by
// fastcache. Entries may be evicted early when the cache is full.
type LocalCache struct {
	cache *fastcache.Cache
	now   func() time.Time
}

func NewLocalCache(maxBytes int) *LocalCache {
	if maxBytes <= 0 {
		maxBytes = 16 * 1024 * 1024
	}
	return &LocalCache{
		cache: fastcache.New(maxBytes),
		now:   time.Now,
	}
}

// Set stores value until ttl elapses.
func (c *LocalCache) Set(key string, value []byte, ttl time.Duration) {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf, uint64(c.now().Add(ttl).UnixNano()))
	copy(buf[8:], value)
	c.cache.Set([]byte(key), buf)
}

// Get returns the value if present and not expired.
func (c *LocalCache) Get(key string) ([]byte, bool) {
	buf, ok := c.cache.HasGet(nil, []byte(key))
	if !ok || len(buf) < 8 {
		return nil, false
	}
	exp := int64(binary.BigEndian.Uint64(buf))
	if c.now().UnixNano() >= exp {
		c.cache.Del([]byte(key))
		return nil, false
	}
	return buf[8:], true
}

func (c *LocalCache) Del(key string) {
	c.cache.Del([]byte(key))
}

func (c *LocalCache) Reset() {
	c.cache.Reset()
}
