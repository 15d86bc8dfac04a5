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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var epoch = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestTrail(t *testing.T, opts ...Option) (*Trail, *observer.ObservedLogs, *testclock.Clock) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	clk := testclock.NewClock(epoch)
	opts = append([]Option{WithClock(clk)}, opts...)
	return New(zap.New(core).Sugar(), opts...), logs, clk
}

func eventsOfType(logs *observer.ObservedLogs, typ EventType) []observer.LoggedEntry {
	var out []observer.LoggedEntry
	for _, e := range logs.FilterMessage(eventMessage).All() {
		if e.ContextMap()["eventType"] == string(typ) {
			out = append(out, e)
		}
	}
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []*Event
	err    error
}

func (n *recordingNotifier) NotifyCritical(_ context.Context, ev *Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

type failingStore struct{ calls int }

func (s *failingStore) Save(context.Context, *Event) error {
	s.calls++
	return errors.New("db down")
}

func TestLog_DefaultsAndLevel(t *testing.T) {
	trail, logs, _ := newTestTrail(t)

	rcpt := trail.Log(context.Background(), EventSpec{Type: EventUserLogin, Operation: "login"})
	require.NoError(t, rcpt.Err)
	require.NotEmpty(t, rcpt.ID)
	assert.True(t, rcpt.OK())

	entries := logs.FilterMessage(eventMessage).All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, zapcore.InfoLevel, e.Level)
	m := e.ContextMap()
	assert.Equal(t, rcpt.ID, m["auditId"])
	assert.Equal(t, "MEDIUM", m["severity"])
	assert.Equal(t, "SUCCESS", m["result"])
}

func TestLog_SeverityLevels(t *testing.T) {
	tests := []struct {
		severity Severity
		level    zapcore.Level
	}{
		{SeverityLow, zapcore.DebugLevel},
		{SeverityMedium, zapcore.InfoLevel},
		{SeverityHigh, zapcore.ErrorLevel},
		{SeverityCritical, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			trail, logs, _ := newTestTrail(t)
			trail.Log(context.Background(), EventSpec{Type: EventAdminAccess, Severity: tt.severity})
			entries := logs.FilterMessage(eventMessage).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
		})
	}
}

func TestLog_UniqueIDs(t *testing.T) {
	trail, _, _ := newTestTrail(t)
	seen := map[string]bool{}
	for range 100 {
		id := trail.Log(context.Background(), EventSpec{Type: EventUserUpdate}).ID
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestLog_CriticalAlert(t *testing.T) {
	notifier := &recordingNotifier{}
	trail, logs, _ := newTestTrail(t, WithNotifier(notifier))

	rcpt := trail.Log(context.Background(), EventSpec{
		Type:     EventRoleChange,
		Severity: SeverityCritical,
		Actor:    &Actor{ID: "admin-1", Role: "ADMIN", Email: "root@skku.edu"},
	})
	require.NoError(t, rcpt.Err)

	events := logs.FilterMessage(eventMessage).All()
	require.Len(t, events, 1)
	assert.Equal(t, zapcore.ErrorLevel, events[0].Level)

	alerts := logs.FilterMessage(alertMessage).All()
	require.Len(t, alerts, 1)
	assert.Equal(t, zapcore.ErrorLevel, alerts[0].Level)
	assert.Equal(t, rcpt.ID, alerts[0].ContextMap()["auditId"])

	require.Len(t, notifier.events, 1)
	assert.Equal(t, rcpt.ID, notifier.events[0].AuditID)
	assert.Equal(t, "ro**@skku.edu", notifier.events[0].Actor.Email)
}

func TestLog_NonCriticalHasNoAlert(t *testing.T) {
	notifier := &recordingNotifier{}
	trail, logs, _ := newTestTrail(t, WithNotifier(notifier))
	trail.Log(context.Background(), EventSpec{Type: EventPermissionDenied, Severity: SeverityHigh})
	assert.Empty(t, logs.FilterMessage(alertMessage).All())
	assert.Empty(t, notifier.events)
}

func TestLog_FailuresAreSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("redis down")}
	store := &failingStore{}
	trail, logs, _ := newTestTrail(t, WithNotifier(notifier), WithStore(store))

	var rcpt Receipt
	assert.NotPanics(t, func() {
		rcpt = trail.Log(context.Background(), EventSpec{
			Type:     EventSystemConfigChange,
			Severity: SeverityCritical,
			Request:  &RequestData{Body: make(chan int)},
		})
	})
	require.Error(t, rcpt.Err)
	assert.NotEmpty(t, rcpt.ID)
	assert.Equal(t, 1, store.calls)

	// the event is still emitted, without the request snapshot
	events := logs.FilterMessage(eventMessage).All()
	require.Len(t, events, 1)
	_, hasRequest := events[0].ContextMap()["request"]
	assert.False(t, hasRequest)

	failures := logs.FilterMessage("audit logging failed").All()
	stages := map[any]bool{}
	for _, f := range failures {
		stages[f.ContextMap()["stage"]] = true
	}
	assert.True(t, stages["sanitize"])
	assert.True(t, stages["notify"])
	assert.True(t, stages["store"])
}

type panickingSink struct{}

func (panickingSink) Debugw(string, ...any) {}
func (panickingSink) Infow(msg string, _ ...any) {
	if msg == eventMessage {
		panic("sink exploded")
	}
}
func (panickingSink) Warnw(string, ...any)  {}
func (panickingSink) Errorw(string, ...any) {}

func TestLog_RecoversFromSinkPanic(t *testing.T) {
	trail := New(panickingSink{}, WithClock(testclock.NewClock(epoch)))
	var rcpt Receipt
	assert.NotPanics(t, func() {
		rcpt = trail.Log(context.Background(), EventSpec{Type: EventUserLogin})
	})
	assert.ErrorContains(t, rcpt.Err, "sink exploded")
}

func TestLog_CorrelationID(t *testing.T) {
	notifier := &recordingNotifier{}
	trail, _, _ := newTestTrail(t, WithNotifier(notifier), WithConfig(Config{Environment: "test"}))

	ctx := WithCorrelationID(context.Background(), "req-42")
	trail.Log(ctx, EventSpec{Type: EventUserLogin, Severity: SeverityCritical})
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "req-42", notifier.events[0].Context.CorrelationID)
	assert.Equal(t, "test", notifier.events[0].Context.Environment)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID,
	}))
	trail.Log(ctx, EventSpec{Type: EventUserLogin, Severity: SeverityCritical})
	require.Len(t, notifier.events, 2)
	assert.Equal(t, traceID.String(), notifier.events[1].Context.CorrelationID)
	assert.Equal(t, traceID.String(), notifier.events[1].Context.TraceID)

	assert.NotEmpty(t, CorrelationID(context.Background()))
}

func TestDetect_HighActivityRate(t *testing.T) {
	trail, logs, clk := newTestTrail(t)
	actor := &Actor{ID: "u1", Role: "SKKU_MEMBER"}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		trail.Log(ctx, EventSpec{Type: EventArtworkUpdate, Actor: actor, SessionID: "s1", ClientIP: "10.0.0.1"})
		clk.Advance(time.Second)
	}
	assert.Empty(t, eventsOfType(logs, EventSuspiciousActivity))

	trail.Log(ctx, EventSpec{Type: EventArtworkUpdate, Actor: actor, SessionID: "s1", ClientIP: "10.0.0.1"})
	found := eventsOfType(logs, EventSuspiciousActivity)
	require.Len(t, found, 1)
	assert.Equal(t, zapcore.ErrorLevel, found[0].Level)
	assert.Equal(t, "HIGH", found[0].ContextMap()["severity"])
	details := found[0].ContextMap()["details"].(map[string]any)
	assert.Equal(t, ReasonHighActivityRate, details["reason"])
	assert.Equal(t, 11, details["activityCount"])
	assert.Equal(t, 10, details["threshold"])
}

func TestDetect_WindowSlides(t *testing.T) {
	trail, logs, clk := newTestTrail(t)
	actor := &Actor{ID: "u1"}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		trail.Log(ctx, EventSpec{Type: EventUserUpdate, Actor: actor, SessionID: "s1", ClientIP: "10.0.0.1"})
	}
	clk.Advance(61 * time.Second)
	trail.Log(ctx, EventSpec{Type: EventUserUpdate, Actor: actor, SessionID: "s1", ClientIP: "10.0.0.1"})
	assert.Empty(t, eventsOfType(logs, EventSuspiciousActivity))
}

func TestDetect_MultipleIPs(t *testing.T) {
	trail, logs, clk := newTestTrail(t)
	actor := &Actor{ID: "u2"}
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		trail.Log(ctx, EventSpec{Type: EventAdminAccess, Actor: actor, SessionID: "s2", ClientIP: fmt.Sprintf("10.0.0.%d", i)})
		clk.Advance(5 * time.Second)
	}
	assert.Empty(t, eventsOfType(logs, EventSuspiciousActivity))

	trail.Log(ctx, EventSpec{Type: EventAdminAccess, Actor: actor, SessionID: "s2", ClientIP: "10.0.0.4"})
	found := eventsOfType(logs, EventSuspiciousActivity)
	require.Len(t, found, 1)
	details := found[0].ContextMap()["details"].(map[string]any)
	assert.Equal(t, ReasonMultipleIPs, details["reason"])
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"}, details["ips"])
	assert.Equal(t, "15s", details["sessionDuration"])
}

func TestDetect_SkippedWithoutSession(t *testing.T) {
	trail, logs, _ := newTestTrail(t)
	for i := 0; i < 20; i++ {
		trail.Log(context.Background(), EventSpec{Type: EventUserLogin, ClientIP: fmt.Sprintf("10.0.1.%d", i)})
	}
	assert.Empty(t, eventsOfType(logs, EventSuspiciousActivity))
	assert.Equal(t, 0, trail.TrackedSessions())
}

func TestDetect_SessionsAreIndependent(t *testing.T) {
	trail, logs, _ := newTestTrail(t)
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		trail.Log(ctx, EventSpec{Type: EventUserUpdate, Actor: &Actor{ID: "a"}, SessionID: "s"})
		trail.Log(ctx, EventSpec{Type: EventUserUpdate, Actor: &Actor{ID: "b"}, SessionID: "s"})
		trail.Log(ctx, EventSpec{Type: EventUserUpdate, SessionID: "s"})
	}
	assert.Empty(t, eventsOfType(logs, EventSuspiciousActivity))
	assert.Equal(t, 3, trail.TrackedSessions())
}

func TestDetect_ConfigurableThreshold(t *testing.T) {
	trail, logs, _ := newTestTrail(t, WithConfig(Config{SuspiciousThreshold: 2}))
	for i := 0; i < 3; i++ {
		trail.Log(context.Background(), EventSpec{Type: EventUserUpdate, Actor: &Actor{ID: "u"}, SessionID: "s"})
	}
	assert.Len(t, eventsOfType(logs, EventSuspiciousActivity), 1)
}

func TestCleanupSessions(t *testing.T) {
	trail, logs, clk := newTestTrail(t)
	ctx := context.Background()

	trail.Log(ctx, EventSpec{Type: EventUserLogin, Actor: &Actor{ID: "old"}, SessionID: "s-old"})
	clk.Advance(23 * time.Hour)
	trail.Log(ctx, EventSpec{Type: EventUserLogin, Actor: &Actor{ID: "new"}, SessionID: "s-new"})
	require.Equal(t, 2, trail.TrackedSessions())

	assert.Equal(t, 0, trail.CleanupSessions())

	clk.Advance(time.Hour + time.Second)
	assert.Equal(t, 1, trail.CleanupSessions())
	assert.Equal(t, 1, trail.TrackedSessions())
	assert.Len(t, logs.FilterMessage("audit session windows reaped").All(), 1)

	// emitted records are untouched
	assert.Len(t, logs.FilterMessage(eventMessage).All(), 2)
}

func TestLog_ConcurrentSessionUpdates(t *testing.T) {
	trail, logs, _ := newTestTrail(t, WithConfig(Config{SuspiciousThreshold: 1000}))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trail.Log(context.Background(), EventSpec{Type: EventUserUpdate, Actor: &Actor{ID: "u"}, SessionID: "s", ClientIP: "1.1.1.1"})
		}()
	}
	wg.Wait()
	assert.Len(t, logs.FilterMessage(eventMessage).All(), 50)
	assert.Equal(t, 50, len(trail.detector.sessions[sessionKey{userID: "u", sessionID: "s"}].activities))
}

func TestEventType_Category(t *testing.T) {
	assert.Equal(t, "user", EventUserLogin.Category())
	assert.Equal(t, "content", EventNoticeDelete.Category())
	assert.Equal(t, "admin", EventBulkOperation.Category())
	assert.Equal(t, "security", EventSuspiciousActivity.Category())
	assert.Equal(t, "unknown", EventType("X").Category())
}
