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

import "time"

// EventType classifies an audit event.
type EventType string

const (
	// user
	EventUserLogin       EventType = "USER_LOGIN"
	EventUserLogout      EventType = "USER_LOGOUT"
	EventUserLoginFailed EventType = "USER_LOGIN_FAILED"
	EventUserRegister    EventType = "USER_REGISTER"
	EventUserUpdate      EventType = "USER_UPDATE"
	EventUserDelete      EventType = "USER_DELETE"
	EventPasswordChange  EventType = "PASSWORD_CHANGE"
	EventPasswordReset   EventType = "PASSWORD_RESET"

	// content
	EventArtworkCreate    EventType = "ARTWORK_CREATE"
	EventArtworkUpdate    EventType = "ARTWORK_UPDATE"
	EventArtworkDelete    EventType = "ARTWORK_DELETE"
	EventExhibitionCreate EventType = "EXHIBITION_CREATE"
	EventExhibitionUpdate EventType = "EXHIBITION_UPDATE"
	EventExhibitionDelete EventType = "EXHIBITION_DELETE"
	EventNoticeCreate     EventType = "NOTICE_CREATE"
	EventNoticeUpdate     EventType = "NOTICE_UPDATE"
	EventNoticeDelete     EventType = "NOTICE_DELETE"

	// admin
	EventAdminAccess        EventType = "ADMIN_ACCESS"
	EventRoleChange         EventType = "ROLE_CHANGE"
	EventBulkOperation      EventType = "BULK_OPERATION"
	EventSystemConfigChange EventType = "SYSTEM_CONFIG_CHANGE"

	// security
	EventPermissionDenied   EventType = "PERMISSION_DENIED"
	EventPermissionGranted  EventType = "PERMISSION_GRANTED"
	EventUnauthorizedAccess EventType = "UNAUTHORIZED_ACCESS"
	EventResourceNotFound   EventType = "RESOURCE_NOT_FOUND"
	EventSuspiciousActivity EventType = "SUSPICIOUS_ACTIVITY"
	EventRateLimitExceeded  EventType = "RATE_LIMIT_EXCEEDED"
)

// Category returns user, content, admin, security or unknown.
func (t EventType) Category() string {
	switch t {
	case EventUserLogin, EventUserLogout, EventUserLoginFailed, EventUserRegister,
		EventUserUpdate, EventUserDelete, EventPasswordChange, EventPasswordReset:
		return "user"
	case EventArtworkCreate, EventArtworkUpdate, EventArtworkDelete,
		EventExhibitionCreate, EventExhibitionUpdate, EventExhibitionDelete,
		EventNoticeCreate, EventNoticeUpdate, EventNoticeDelete:
		return "content"
	case EventAdminAccess, EventRoleChange, EventBulkOperation, EventSystemConfigChange:
		return "admin"
	case EventPermissionDenied, EventPermissionGranted, EventUnauthorizedAccess,
		EventResourceNotFound, EventSuspiciousActivity, EventRateLimitExceeded:
		return "security"
	default:
		return "unknown"
	}
}

// Severity is the importance of an event.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Result is the outcome of the audited action.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailure Result = "FAILURE"
	ResultPartial Result = "PARTIAL"
	ResultBlocked Result = "BLOCKED"
)

// Actor is the caller-supplied user record. Only a sanitized snapshot of it
// ends up in an Event.
type Actor struct {
	ID          string
	Username    string
	Email       string
	Role        string
	Active      bool
	LastLoginAt *time.Time
}

// ActorSnapshot is the sanitized actor stored on an event.
type ActorSnapshot struct {
	ID          string     `json:"id"`
	Username    string     `json:"username,omitempty"`
	Email       string     `json:"email,omitempty"`
	Role        string     `json:"role"`
	Active      bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Action describes what was attempted and from where.
type Action struct {
	Operation  string `json:"operation"`
	Resource   string `json:"resource,omitempty"`
	ResourceID string `json:"resourceId,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
	Method     string `json:"method,omitempty"`
	ClientIP   string `json:"ip,omitempty"`
	SessionID  string `json:"sessionId,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
}

// RequestData is a raw request to be sanitized before it is recorded.
type RequestData struct {
	Body    any
	Query   map[string]any
	Headers map[string]any
}

// Metadata carries measurements attached to an event.
type Metadata struct {
	Duration        time.Duration  `json:"duration,omitempty"`
	AffectedRecords int            `json:"affectedRecords,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// EventContext is the environment an event was produced in.
type EventContext struct {
	Environment   string `json:"environment"`
	CorrelationID string `json:"correlationId"`
	TraceID       string `json:"traceId,omitempty"`
}

// Event is an immutable audit record. Trail hands out copies only.
type Event struct {
	AuditID   string         `json:"auditId"`
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"eventType"`
	Severity  Severity       `json:"severity"`
	Result    Result         `json:"result"`
	Actor     *ActorSnapshot `json:"user"`
	Action    Action         `json:"action"`
	Request   map[string]any `json:"request,omitempty"`
	Response  any            `json:"response,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Metadata  Metadata       `json:"metadata"`
	Context   EventContext   `json:"context"`
}

// EventSpec is what callers hand to Trail.Log.
type EventSpec struct {
	Type     EventType
	Severity Severity // defaults to MEDIUM
	Result   Result   // defaults to SUCCESS

	Actor      *Actor
	Operation  string
	Resource   string
	ResourceID string

	Endpoint  string
	Method    string
	ClientIP  string
	SessionID string
	UserAgent string

	Details  map[string]any
	Request  *RequestData
	Response any
	Metadata Metadata

	// synthetic marks events produced by abuse detection itself.
	synthetic bool
}

// Receipt is the result of Trail.Log. Err has already been logged and may
// be ignored by the caller.
type Receipt struct {
	ID  string
	Err error
}

// OK reports whether the event was recorded without internal failure.
func (r Receipt) OK() bool { return r.Err == nil }
