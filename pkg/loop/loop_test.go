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

package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopMaxTimes(t *testing.T) {
	count := 0
	l := New(WithMaxTimes(20), WithInterval(time.Millisecond))
	err := l.Do(func() (bool, error) {
		count++
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}

func TestLoopStop(t *testing.T) {
	count := 0
	stopErr := errors.New("stop")
	l := New(WithInterval(time.Millisecond))
	err := l.Do(func() (bool, error) {
		count++
		if count == 3 {
			return true, stopErr
		}
		return false, nil
	})
	assert.ErrorIs(t, err, stopErr)
	assert.Equal(t, 3, count)
}

func TestLoopDecline(t *testing.T) {
	l := New(WithInterval(time.Millisecond), WithDeclineRatio(2), WithDeclineLimit(3*time.Millisecond), WithMaxTimes(4))
	_ = l.Do(func() (bool, error) {
		return false, errors.New("effect")
	})
	assert.Equal(t, 3*time.Millisecond, l.lastSleepTime)
}

func TestWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	executed := 0
	l := New(WithContext(ctx), WithMaxTimes(10))
	_ = l.Do(func() (bool, error) {
		executed++
		return false, nil
	})
	assert.Equal(t, 0, executed)

	ctx, cancel = context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	l = New(WithContext(ctx), WithInterval(100*time.Millisecond), WithMaxTimes(5))
	_ = l.Do(func() (bool, error) {
		executed++
		return false, nil
	})
	assert.Equal(t, 2, executed)
}
