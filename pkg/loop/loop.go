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
	"math"
	"time"
)

// Loop calls a function repeatedly with a pause between calls. After an
// error the pause grows by the decline ratio up to the decline limit.
type Loop struct {
	maxTimes      uint64
	declineRatio  float64
	declineLimit  time.Duration
	interval      time.Duration
	lastSleepTime time.Duration
	ctx           context.Context
}

type Option func(*Loop)

func New(options ...Option) *Loop {
	loop := &Loop{
		interval:     time.Second,
		maxTimes:     math.MaxUint64,
		declineRatio: 1,
	}
	for _, op := range options {
		op(loop)
	}
	loop.lastSleepTime = loop.interval
	return loop
}

func sleepUntilCtxDone(ctx context.Context, d time.Duration) (abort bool) {
	if ctx == nil {
		time.Sleep(d)
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return false
	case <-ctx.Done():
		return true
	}
}

// Do runs f until it asks to stop, the context ends or maxTimes is reached.
// f returns stop=true to end the loop; its error is then returned.
func (l *Loop) Do(f func() (stop bool, err error)) error {
	if l.ctx != nil && l.ctx.Err() != nil {
		return nil
	}

	var err error
	for i := uint64(0); i < l.maxTimes; i++ {
		var stop bool
		stop, err = f()
		if stop {
			return err
		}
		if err != nil {
			l.lastSleepTime = time.Duration(float64(l.lastSleepTime) * l.declineRatio)
			if l.declineLimit > 0 && l.lastSleepTime > l.declineLimit {
				l.lastSleepTime = l.declineLimit
			}
		} else {
			l.lastSleepTime = l.interval
		}
		if i+1 == l.maxTimes {
			break
		}
		if sleepUntilCtxDone(l.ctx, l.lastSleepTime) {
			return nil
		}
	}
	return err
}

func WithMaxTimes(n uint64) Option {
	return func(l *Loop) {
		l.maxTimes = n
	}
}

func WithDeclineRatio(n float64) Option {
	return func(l *Loop) {
		if n < 1 {
			return
		}
		l.declineRatio = n
	}
}

func WithDeclineLimit(t time.Duration) Option {
	return func(l *Loop) {
		if t < 0 {
			return
		}
		l.declineLimit = t
	}
}

func WithInterval(t time.Duration) Option {
	return func(l *Loop) {
		if t < time.Millisecond {
			return
		}
		l.interval = t
	}
}

func WithContext(ctx context.Context) Option {
	return func(loop *Loop) {
		loop.ctx = ctx
	}
}
