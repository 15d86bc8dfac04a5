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
	"errors"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/skku-artclub/artclub/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	failures int
	calls    int
	channel  string
	message  any
}

func (p *fakePublisher) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	p.calls++
	p.channel = channel
	p.message = message
	if p.calls <= p.failures {
		return redis.NewIntResult(0, errors.New("connection reset"))
	}
	return redis.NewIntResult(1, nil)
}

func TestRedisNotifier_Publishes(t *testing.T) {
	pub := &fakePublisher{}
	n := NewRedisNotifier(pub, "artclub:audit:alerts")

	ev := sampleEvent()
	ev.Severity = SeverityCritical
	require.NoError(t, n.NotifyCritical(context.Background(), ev))

	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, "artclub:audit:alerts", pub.channel)
	var got Event
	require.NoError(t, sonic.UnmarshalString(pub.message.(string), &got))
	assert.Equal(t, ev.AuditID, got.AuditID)
	assert.Equal(t, SeverityCritical, got.Severity)
}

func TestRedisNotifier_Retries(t *testing.T) {
	pub := &fakePublisher{failures: 2}
	n := NewRedisNotifier(pub, "alerts")
	n.backoff = retry.Fixed(time.Millisecond)

	require.NoError(t, n.NotifyCritical(context.Background(), sampleEvent()))
	assert.Equal(t, 3, pub.calls)
}

func TestRedisNotifier_GivesUp(t *testing.T) {
	pub := &fakePublisher{failures: 10}
	n := NewRedisNotifier(pub, "alerts")
	n.backoff = retry.Fixed(time.Millisecond)

	err := n.NotifyCritical(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, 3, pub.calls)
}
