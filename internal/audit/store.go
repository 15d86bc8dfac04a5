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
	"gorm.io/gorm"
)

// Record is the persisted form of an Event.
type Record struct {
	AuditID   string    `gorm:"column:audit_id;primaryKey;size:36" json:"auditId"`
	Timestamp time.Time `gorm:"column:timestamp;index" json:"timestamp"`
	EventType string    `gorm:"column:event_type;size:64;index" json:"eventType"`
	Severity  string    `gorm:"column:severity;size:16" json:"severity"`
	Result    string    `gorm:"column:result;size:16" json:"result"`
	UserID    string    `gorm:"column:user_id;size:64;index" json:"userId"`
	SessionID string    `gorm:"column:session_id;size:128" json:"sessionId"`
	ClientIP  string    `gorm:"column:client_ip;size:64" json:"clientIp"`
	Payload   string    `gorm:"column:payload;type:text" json:"-"`
}

func (Record) TableName() string {
	return "t_audit_event"
}

// Filter narrows GormStore.List. Zero fields match everything.
type Filter struct {
	EventType EventType
	Severity  Severity
	UserID    string
	Since     time.Time
	Limit     int
}

// GormStore persists events to the t_audit_event table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates the audit table.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&Record{})
}

func (s *GormStore) Save(ctx context.Context, ev *Event) error {
	payload, err := sonic.MarshalString(ev)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	rec := &Record{
		AuditID:   ev.AuditID,
		Timestamp: ev.Timestamp,
		EventType: string(ev.Type),
		Severity:  string(ev.Severity),
		Result:    string(ev.Result),
		SessionID: ev.Action.SessionID,
		ClientIP:  ev.Action.ClientIP,
		Payload:   payload,
	}
	if ev.Actor != nil {
		rec.UserID = ev.Actor.ID
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

// List returns matching events, newest first.
func (s *GormStore) List(ctx context.Context, f Filter) ([]*Event, error) {
	q := s.db.WithContext(ctx).Model(&Record{})
	if f.EventType != "" {
		q = q.Where("event_type = ?", string(f.EventType))
	}
	if f.Severity != "" {
		q = q.Where("severity = ?", string(f.Severity))
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if !f.Since.IsZero() {
		q = q.Where("timestamp >= ?", f.Since)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var recs []Record
	if err := q.Order("timestamp DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}

	out := make([]*Event, 0, len(recs))
	for _, r := range recs {
		ev := &Event{}
		if err := sonic.UnmarshalString(r.Payload, ev); err != nil {
			return nil, fmt.Errorf("decode audit event %s: %w", r.AuditID, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
