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
	"slices"
	"sync"
	"time"
)

const (
	ReasonHighActivityRate = "high_activity_rate"
	ReasonMultipleIPs      = "multiple_ips"

	anonymousUser = "anonymous"
)

type sessionKey struct {
	userID    string
	sessionID string
}

type activity struct {
	at time.Time
	ip string
}

// sessionWindow is the sliding activity record of one (user, session).
type sessionWindow struct {
	activities    []activity
	firstActivity time.Time
	lastActivity  time.Time
}

// finding is one abuse pattern observed on a session.
type finding struct {
	reason  string
	details map[string]any
}

// detector tracks per-session activity and reports rate and IP anomalies.
type detector struct {
	mu       sync.Mutex
	sessions map[sessionKey]*sessionWindow

	window    time.Duration
	threshold int
	maxIPs    int
	idle      time.Duration
}

func newDetector(cfg Config) *detector {
	return &detector{
		sessions:  make(map[sessionKey]*sessionWindow),
		window:    cfg.Window,
		threshold: cfg.SuspiciousThreshold,
		maxIPs:    cfg.MaxDistinctIPs,
		idle:      cfg.SessionIdleTimeout,
	}
}

// observe records one activity and returns the patterns it completes.
func (d *detector) observe(userID, sessionID, ip string, now time.Time) []finding {
	if userID == "" {
		userID = anonymousUser
	}
	key := sessionKey{userID: userID, sessionID: sessionID}

	d.mu.Lock()
	defer d.mu.Unlock()

	w, ok := d.sessions[key]
	if !ok {
		w = &sessionWindow{firstActivity: now}
		d.sessions[key] = w
	}
	w.lastActivity = now
	w.activities = append(w.activities, activity{at: now, ip: ip})

	cutoff := now.Add(-d.window)
	w.activities = slices.DeleteFunc(w.activities, func(a activity) bool {
		return a.at.Before(cutoff)
	})

	var found []finding
	if count := len(w.activities); count > d.threshold {
		found = append(found, finding{
			reason: ReasonHighActivityRate,
			details: map[string]any{
				"reason":        ReasonHighActivityRate,
				"activityCount": count,
				"threshold":     d.threshold,
				"windowSeconds": int(d.window / time.Second),
			},
		})
	}

	ips := distinctIPs(w.activities)
	if len(ips) > d.maxIPs {
		found = append(found, finding{
			reason: ReasonMultipleIPs,
			details: map[string]any{
				"reason":          ReasonMultipleIPs,
				"ips":             ips,
				"ipCount":         len(ips),
				"sessionDuration": now.Sub(w.firstActivity).String(),
			},
		})
	}
	return found
}

func distinctIPs(activities []activity) []string {
	seen := make(map[string]struct{}, len(activities))
	var ips []string
	for _, a := range activities {
		if a.ip == "" {
			continue
		}
		if _, ok := seen[a.ip]; ok {
			continue
		}
		seen[a.ip] = struct{}{}
		ips = append(ips, a.ip)
	}
	slices.Sort(ips)
	return ips
}

// cleanup drops sessions idle for longer than the idle timeout.
func (d *detector) cleanup(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for key, w := range d.sessions {
		if now.Sub(w.lastActivity) > d.idle {
			delete(d.sessions, key)
			removed++
		}
	}
	return removed
}

func (d *detector) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}
