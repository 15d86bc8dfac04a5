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
	"maps"
	"time"

	"github.com/juju/clock"
	"github.com/skku-artclub/artclub/pkg/id"
	"github.com/skku-artclub/artclub/pkg/log"
	"github.com/skku-artclub/artclub/pkg/metrics"
	"go.opentelemetry.io/otel/trace"
)

const (
	eventMessage = "audit event"
	alertMessage = "critical security alert"
)

// Config holds audit trail settings.
type Config struct {
	Environment         string        `mapstructure:"environment"`
	SuspiciousThreshold int           `mapstructure:"suspiciousThreshold"`
	Window              time.Duration `mapstructure:"window"`
	MaxDistinctIPs      int           `mapstructure:"maxDistinctIps"`
	SessionIdleTimeout  time.Duration `mapstructure:"sessionIdleTimeout"`
	CleanupSpec         string        `mapstructure:"cleanupSpec"`
	AlertChannel        string        `mapstructure:"alertChannel"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Environment:         "development",
		SuspiciousThreshold: 10,
		Window:              60 * time.Second,
		MaxDistinctIPs:      3,
		SessionIdleTimeout:  24 * time.Hour,
		CleanupSpec:         "@every 1h",
		AlertChannel:        "artclub:audit:alerts",
	}
}

// SetDefaults fills zero fields from DefaultConfig.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.Environment == "" {
		c.Environment = d.Environment
	}
	if c.SuspiciousThreshold <= 0 {
		c.SuspiciousThreshold = d.SuspiciousThreshold
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.MaxDistinctIPs <= 0 {
		c.MaxDistinctIPs = d.MaxDistinctIPs
	}
	if c.SessionIdleTimeout <= 0 {
		c.SessionIdleTimeout = d.SessionIdleTimeout
	}
	if c.CleanupSpec == "" {
		c.CleanupSpec = d.CleanupSpec
	}
	if c.AlertChannel == "" {
		c.AlertChannel = d.AlertChannel
	}
}

// Notifier receives a copy of every CRITICAL event.
type Notifier interface {
	NotifyCritical(ctx context.Context, ev *Event) error
}

// Store persists events.
type Store interface {
	Save(ctx context.Context, ev *Event) error
}

// Trail builds, sanitizes and emits audit events. It is safe for
// concurrent use.
type Trail struct {
	sink     log.ILogger
	cfg      Config
	clock    clock.Clock
	newID    func() string
	notifier Notifier
	store    Store
	detector *detector
}

type Option func(*Trail)

func WithConfig(cfg Config) Option {
	return func(t *Trail) {
		cfg.SetDefaults()
		t.cfg = cfg
	}
}

func WithClock(clk clock.Clock) Option {
	return func(t *Trail) {
		if clk != nil {
			t.clock = clk
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(t *Trail) {
		t.notifier = n
	}
}

func WithStore(s Store) Option {
	return func(t *Trail) {
		t.store = s
	}
}

// WithIDGenerator replaces the uuid audit id generator.
func WithIDGenerator(fn func() string) Option {
	return func(t *Trail) {
		if fn != nil {
			t.newID = fn
		}
	}
}

// New returns a Trail writing to sink. A nil sink falls back to the global
// logger.
func New(sink log.ILogger, opts ...Option) *Trail {
	if sink == nil {
		sink = log.Global()
	}
	t := &Trail{
		sink:  sink,
		cfg:   DefaultConfig(),
		clock: clock.WallClock,
		newID: id.GetUUID,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.detector = newDetector(t.cfg)
	return t
}

// Config returns the effective configuration.
func (t *Trail) Config() Config {
	return t.cfg
}

// Log records one audit event and returns its id. It never panics; any
// internal failure is logged and reported in Receipt.Err.
func (t *Trail) Log(ctx context.Context, spec EventSpec) (rcpt Receipt) {
	if ctx == nil {
		ctx = context.Background()
	}
	rcpt.ID = t.newID()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("audit: panic while logging: %v", r)
			t.fail("panic", rcpt.ID, err)
			rcpt.Err = errors.Join(rcpt.Err, err)
		}
	}()

	ev, buildErr := t.build(ctx, rcpt.ID, spec)
	var errs []error
	if buildErr != nil {
		t.fail("sanitize", rcpt.ID, buildErr)
		errs = append(errs, buildErr)
	}

	t.emit(ev)
	metrics.RecordAuditEvent(string(ev.Type), string(ev.Severity))

	if ev.Severity == SeverityCritical {
		if err := t.alert(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}

	if t.store != nil {
		if err := t.store.Save(ctx, ev.clone()); err != nil {
			err = fmt.Errorf("audit: persist event: %w", err)
			t.fail("store", rcpt.ID, err)
			errs = append(errs, err)
		}
	}

	if !spec.synthetic && spec.SessionID != "" {
		t.detect(ctx, spec, ev)
	}

	rcpt.Err = errors.Join(errs...)
	return rcpt
}

// CleanupSessions drops abuse-detection state idle for longer than the
// configured timeout and returns how many windows were removed.
func (t *Trail) CleanupSessions() int {
	removed := t.detector.cleanup(t.clock.Now())
	remaining := t.detector.size()
	metrics.UpdateTrackedSessions(remaining)
	if removed > 0 {
		t.sink.Infow("audit session windows reaped", "removed", removed, "remaining", remaining)
	}
	return removed
}

// TrackedSessions returns the number of live session windows.
func (t *Trail) TrackedSessions() int {
	return t.detector.size()
}

func (t *Trail) build(ctx context.Context, auditID string, spec EventSpec) (*Event, error) {
	severity := spec.Severity
	if severity == "" {
		severity = SeverityMedium
	}
	result := spec.Result
	if result == "" {
		result = ResultSuccess
	}

	ev := &Event{
		AuditID:   auditID,
		Timestamp: t.clock.Now().UTC(),
		Type:      spec.Type,
		Severity:  severity,
		Result:    result,
		Actor:     SanitizeActor(spec.Actor),
		Action: Action{
			Operation:  spec.Operation,
			Resource:   spec.Resource,
			ResourceID: spec.ResourceID,
			Endpoint:   spec.Endpoint,
			Method:     spec.Method,
			ClientIP:   spec.ClientIP,
			SessionID:  spec.SessionID,
			UserAgent:  spec.UserAgent,
		},
		Details:  maps.Clone(spec.Details),
		Metadata: spec.Metadata,
		Context: EventContext{
			Environment:   t.cfg.Environment,
			CorrelationID: CorrelationID(ctx),
		},
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ev.Context.TraceID = sc.TraceID().String()
	}

	var errs []error
	req, err := SanitizeRequest(spec.Request)
	if err != nil {
		errs = append(errs, err)
	} else {
		ev.Request = req
	}
	if spec.Response != nil {
		resp, err := Redact(spec.Response)
		if err != nil {
			errs = append(errs, fmt.Errorf("sanitize response: %w", err))
		} else {
			ev.Response = resp
		}
	}
	return ev, errors.Join(errs...)
}

func (t *Trail) emit(ev *Event) {
	fields := []any{
		"auditId", ev.AuditID,
		"timestamp", ev.Timestamp,
		"eventType", string(ev.Type),
		"severity", string(ev.Severity),
		"result", string(ev.Result),
		"user", ev.Actor,
		"action", ev.Action,
		"context", ev.Context,
	}
	if ev.Request != nil {
		fields = append(fields, "request", ev.Request)
	}
	if ev.Response != nil {
		fields = append(fields, "response", ev.Response)
	}
	if len(ev.Details) > 0 {
		fields = append(fields, "details", ev.Details)
	}
	if ev.Metadata.Duration > 0 || ev.Metadata.AffectedRecords > 0 || len(ev.Metadata.Extra) > 0 {
		fields = append(fields, "metadata", ev.Metadata)
	}

	switch ev.Severity {
	case SeverityLow:
		t.sink.Debugw(eventMessage, fields...)
	case SeverityHigh, SeverityCritical:
		t.sink.Errorw(eventMessage, fields...)
	default:
		t.sink.Infow(eventMessage, fields...)
	}
}

func (t *Trail) alert(ctx context.Context, ev *Event) error {
	t.sink.Errorw(alertMessage,
		"auditId", ev.AuditID,
		"eventType", string(ev.Type),
		"user", ev.Actor,
		"action", ev.Action,
		"details", ev.Details,
		"timestamp", ev.Timestamp,
	)
	if t.notifier == nil {
		return nil
	}
	if err := t.notifier.NotifyCritical(ctx, ev.clone()); err != nil {
		err = fmt.Errorf("audit: notify critical: %w", err)
		t.fail("notify", ev.AuditID, err)
		return err
	}
	return nil
}

func (t *Trail) detect(ctx context.Context, spec EventSpec, trigger *Event) {
	userID := ""
	if spec.Actor != nil {
		userID = spec.Actor.ID
	}
	findings := t.detector.observe(userID, spec.SessionID, spec.ClientIP, trigger.Timestamp)
	metrics.UpdateTrackedSessions(t.detector.size())

	for _, f := range findings {
		metrics.RecordSuspiciousActivity(f.reason)
		details := maps.Clone(f.details)
		details["triggerAuditId"] = trigger.AuditID
		details["triggerEventType"] = trigger.Type
		t.Log(ctx, EventSpec{
			Type:      EventSuspiciousActivity,
			Severity:  SeverityHigh,
			Actor:     spec.Actor,
			Operation: "detect_suspicious_activity",
			Endpoint:  spec.Endpoint,
			Method:    spec.Method,
			ClientIP:  spec.ClientIP,
			SessionID: spec.SessionID,
			UserAgent: spec.UserAgent,
			Details:   details,
			synthetic: true,
		})
	}
}

func (t *Trail) fail(stage, auditID string, err error) {
	metrics.RecordAuditFailure(stage)
	t.sink.Errorw("audit logging failed", "stage", stage, "auditId", auditID, "error", err)
}

func (e *Event) clone() *Event {
	c := *e
	if e.Actor != nil {
		a := *e.Actor
		c.Actor = &a
	}
	c.Details = maps.Clone(e.Details)
	c.Request = maps.Clone(e.Request)
	return &c
}
