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

package statemachine

import (
	"fmt"
	"slices"
	"sync"
)

// TransitionHook runs after a transition has been validated.
type TransitionHook[T comparable] func(from, to T)

// StateMachine is a transition table over comparable states. It does not own
// a current state; callers pass the state they hold and ask whether a move is
// legal, which lets one table serve many records.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	// from state -> list of valid next states
	validTransitions map[T][]T
	onTransition     []TransitionHook[T]
}

func New[T comparable]() *StateMachine[T] {
	return &StateMachine[T]{
		validTransitions: make(map[T][]T),
	}
}

// Allow registers from -> to for every target.
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, target := range to {
		if !slices.Contains(sm.validTransitions[from], target) {
			sm.validTransitions[from] = append(sm.validTransitions[from], target)
		}
	}
	return sm
}

func (sm *StateMachine[T]) OnTransition(h TransitionHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onTransition = append(sm.onTransition, h)
	return sm
}

func (sm *StateMachine[T]) CanTransition(from, to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.validTransitions[from], to)
}

// ValidNextStates returns a copy of the targets reachable from state.
func (sm *StateMachine[T]) ValidNextStates(from T) []T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.validTransitions[from])
}

// IsTerminal reports whether no transition leaves state.
func (sm *StateMachine[T]) IsTerminal(state T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.validTransitions[state]) == 0
}

// Transition validates from -> to and fires hooks. It returns the target
// state so callers can assign it in one expression.
func (sm *StateMachine[T]) Transition(from, to T) (T, error) {
	sm.mu.RLock()
	ok := slices.Contains(sm.validTransitions[from], to)
	hooks := slices.Clone(sm.onTransition)
	sm.mu.RUnlock()

	if !ok {
		return from, &InvalidTransitionError[T]{From: from, To: to}
	}
	for _, h := range hooks {
		h(from, to)
	}
	return to, nil
}

// InvalidTransitionError is returned for a move the table does not allow.
type InvalidTransitionError[T comparable] struct {
	From T
	To   T
}

func (e *InvalidTransitionError[T]) Error() string {
	return fmt.Sprintf("invalid transition: %v -> %v", e.From, e.To)
}
