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

package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewManager)

// Manager tracks whether the process is draining. Once Shutdown is called
// it never returns to running.
type Manager struct {
	draining atomic.Bool
	once     sync.Once
	done     chan struct{}
}

func NewManager() *Manager {
	return &Manager{done: make(chan struct{})}
}

// IsShuttingDown returns true if the service is shutting down
func (m *Manager) IsShuttingDown() bool {
	return m.draining.Load()
}

// Shutdown triggers graceful shutdown.
// Returns true if shutdown was triggered, false if already shutting down
func (m *Manager) Shutdown() bool {
	triggered := false
	m.once.Do(func() {
		m.draining.Store(true)
		close(m.done)
		triggered = true
	})
	return triggered
}

// Done is closed once Shutdown has been called.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// NotifySignals calls Shutdown when one of sigs arrives and reports the
// signal on the returned channel. stop releases the signal handler.
func (m *Manager) NotifySignals(sigs ...os.Signal) (received <-chan os.Signal, stop func()) {
	ch := make(chan os.Signal, 1)
	out := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	quit := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			out <- sig
			m.Shutdown()
		case <-quit:
		}
	}()
	var stopOnce sync.Once
	return out, func() {
		stopOnce.Do(func() {
			signal.Stop(ch)
			close(quit)
		})
	}
}
