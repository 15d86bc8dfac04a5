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

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/skku-artclub/artclub/pkg/retry"
)

// Publisher is the redis capability RedisNotifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisNotifier publishes critical events as JSON on a pub/sub channel.
type RedisNotifier struct {
	pub      Publisher
	channel  string
	attempts int
	backoff  retry.Backoff
}

func NewRedisNotifier(pub Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{
		pub:      pub,
		channel:  channel,
		attempts: 3,
		backoff:  retry.Exponential(100*time.Millisecond, time.Second),
	}
}

func (n *RedisNotifier) NotifyCritical(ctx context.Context, ev *Event) error {
	payload, err := sonic.MarshalString(ev)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	return retry.Do(ctx, func(ctx context.Context) error {
		return n.pub.Publish(ctx, n.channel, payload).Err()
	}, retry.WithMaxAttempts(n.attempts), retry.WithBackoff(n.backoff))
}
