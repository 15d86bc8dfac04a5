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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ab@x.com", "ab@x.com"},
		{"a@x.com", "a@x.com"},
		{"abc@x.com", "ab*@x.com"},
		{"abcdef@x.com", "ab****@x.com"},
		{"", ""},
		{"noatsign", "no******"},
		{"한글이름@x.kr", "한글**@x.kr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskEmail(tt.in))
		})
	}
}

func TestSanitizeActor(t *testing.T) {
	assert.Nil(t, SanitizeActor(nil))

	last := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	snap := SanitizeActor(&Actor{
		ID:          "u1",
		Username:    "painter",
		Email:       "painter@skku.edu",
		Role:        "SKKU_MEMBER",
		Active:      true,
		LastLoginAt: &last,
	})
	assert.Equal(t, &ActorSnapshot{
		ID:          "u1",
		Username:    "painter",
		Email:       "pa*****@skku.edu",
		Role:        "SKKU_MEMBER",
		Active:      true,
		LastLoginAt: &last,
	}, snap)
}

func TestSanitizeRequest_RedactsBody(t *testing.T) {
	body := map[string]any{"password": "secret", "other": "visible"}
	out, err := SanitizeRequest(&RequestData{Body: body})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"password": Redacted, "other": "visible"}, out["body"])
	assert.Equal(t, "secret", body["password"], "input must not be modified")
}

func TestSanitizeRequest_NestedAndCaseInsensitive(t *testing.T) {
	out, err := SanitizeRequest(&RequestData{
		Body: map[string]any{
			"user": map[string]any{
				"Password": "p",
				"profile":  []any{map[string]any{"TOKEN": "t", "bio": "hi"}},
			},
		},
		Query:   map[string]any{"token": "abc", "page": "2"},
		Headers: map[string]any{"Authorization": "Bearer x", "Cookie": "sid=1", "Accept": "text/html"},
	})
	require.NoError(t, err)

	body := out["body"].(map[string]any)
	user := body["user"].(map[string]any)
	assert.Equal(t, Redacted, user["Password"])
	item := user["profile"].([]any)[0].(map[string]any)
	assert.Equal(t, Redacted, item["TOKEN"])
	assert.Equal(t, "hi", item["bio"])

	assert.Equal(t, map[string]any{"token": Redacted, "page": "2"}, out["query"])
	assert.Equal(t, map[string]any{"Authorization": Redacted, "Cookie": Redacted, "Accept": "text/html"}, out["headers"])
}

func TestRedact_Struct(t *testing.T) {
	type login struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	out, err := Redact(login{Username: "kim", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"username": "kim", "password": Redacted}, out)
}

func TestRedact_StringMaps(t *testing.T) {
	out, err := Redact(map[string][]string{"Cookie": {"a"}, "X-Id": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Cookie": Redacted, "X-Id": []string{"1"}}, out)

	out, err = Redact(map[string]string{"token": "t", "k": "v"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"token": Redacted, "k": "v"}, out)
}

func TestSanitizeRequest_Unencodable(t *testing.T) {
	_, err := SanitizeRequest(&RequestData{Body: make(chan int)})
	assert.Error(t, err)

	out, err := SanitizeRequest(nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}
