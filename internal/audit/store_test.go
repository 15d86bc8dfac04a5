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

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func sampleEvent() *Event {
	return &Event{
		AuditID:   "0b9c5e1e-7d7a-4a57-9d2a-8a7c3f0f1c11",
		Timestamp: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		Type:      EventPermissionDenied,
		Severity:  SeverityHigh,
		Result:    ResultBlocked,
		Actor:     &ActorSnapshot{ID: "u1", Role: "SKKU_MEMBER"},
		Action:    Action{Operation: "delete", ClientIP: "10.0.0.1", SessionID: "s1"},
		Details:   map[string]any{"required": "artwork:delete"},
		Context:   EventContext{Environment: "test", CorrelationID: "c1"},
	}
}

func TestGormStore_Save(t *testing.T) {
	store, mock := newMockStore(t)
	ev := sampleEvent()

	mock.ExpectExec("INSERT INTO `t_audit_event`").
		WithArgs(ev.AuditID, ev.Timestamp, "PERMISSION_DENIED", "HIGH", "BLOCKED", "u1", "s1", "10.0.0.1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SaveError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO `t_audit_event`").WillReturnError(errors.New("disk full"))

	err := store.Save(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "disk full")
}

func TestGormStore_List(t *testing.T) {
	store, mock := newMockStore(t)
	ev := sampleEvent()
	payload, err := sonic.MarshalString(ev)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"audit_id", "timestamp", "event_type", "severity", "result", "user_id", "session_id", "client_ip", "payload"}).
		AddRow(ev.AuditID, ev.Timestamp, "PERMISSION_DENIED", "HIGH", "BLOCKED", "u1", "s1", "10.0.0.1", payload)
	mock.ExpectQuery("SELECT \\* FROM `t_audit_event` WHERE event_type = \\? AND user_id = \\? ORDER BY timestamp DESC LIMIT").
		WillReturnRows(rows)

	got, err := store.List(context.Background(), Filter{EventType: EventPermissionDenied, UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ev.AuditID, got[0].AuditID)
	assert.Equal(t, EventPermissionDenied, got[0].Type)
	assert.Equal(t, "u1", got[0].Actor.ID)
	assert.Equal(t, "artwork:delete", got[0].Details["required"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListBadPayload(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"audit_id", "payload"}).AddRow("a1", "{not json")
	mock.ExpectQuery("SELECT \\* FROM `t_audit_event`").WillReturnRows(rows)

	_, err := store.List(context.Background(), Filter{})
	assert.ErrorContains(t, err, "decode audit event a1")
}
