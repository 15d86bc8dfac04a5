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
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Redacted replaces the value of every sensitive field.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"authorization": {},
	"cookie":        {},
}

func isSensitiveKey(k string) bool {
	_, ok := sensitiveKeys[strings.ToLower(k)]
	return ok
}

// MaskEmail keeps the first two characters of the local part and replaces
// each remaining one with '*'. Local parts of two characters or fewer are
// returned unchanged.
func MaskEmail(email string) string {
	local, domain, hasAt := strings.Cut(email, "@")
	runes := []rune(local)
	if len(runes) <= 2 {
		return email
	}
	masked := string(runes[:2]) + strings.Repeat("*", len(runes)-2)
	if !hasAt {
		return masked
	}
	return masked + "@" + domain
}

// SanitizeActor strips a to the fields allowed in an audit record.
func SanitizeActor(a *Actor) *ActorSnapshot {
	if a == nil {
		return nil
	}
	return &ActorSnapshot{
		ID:          a.ID,
		Username:    a.Username,
		Email:       MaskEmail(a.Email),
		Role:        a.Role,
		Active:      a.Active,
		LastLoginAt: a.LastLoginAt,
	}
}

// SanitizeRequest returns a redacted copy of r as a plain map with body,
// query and headers keys. The input is never modified.
func SanitizeRequest(r *RequestData) (map[string]any, error) {
	if r == nil {
		return nil, nil
	}
	out := make(map[string]any, 3)
	if r.Body != nil {
		body, err := Redact(r.Body)
		if err != nil {
			return nil, fmt.Errorf("sanitize body: %w", err)
		}
		out["body"] = body
	}
	if r.Query != nil {
		q, err := Redact(r.Query)
		if err != nil {
			return nil, fmt.Errorf("sanitize query: %w", err)
		}
		out["query"] = q
	}
	if r.Headers != nil {
		h, err := Redact(r.Headers)
		if err != nil {
			return nil, fmt.Errorf("sanitize headers: %w", err)
		}
		out["headers"] = h
	}
	return out, nil
}

// Redact walks v and replaces the values of sensitive keys with Redacted,
// at any depth. Values that are not plain maps, slices or scalars are first
// converted through their JSON form.
func Redact(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return t, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isSensitiveKey(k) {
				out[k] = Redacted
				continue
			}
			r, err := Redact(val)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isSensitiveKey(k) {
				out[k] = Redacted
				continue
			}
			out[k] = val
		}
		return out, nil
	case map[string][]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isSensitiveKey(k) {
				out[k] = Redacted
				continue
			}
			out[k] = append([]string(nil), val...)
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			r, err := Redact(val)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case []string:
		return append([]string(nil), t...), nil
	default:
		raw, err := sonic.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %T: %w", v, err)
		}
		var generic any
		if err := sonic.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("decode %T: %w", v, err)
		}
		return Redact(generic)
	}
}
