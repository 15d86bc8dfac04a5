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

package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenUUID(t *testing.T) {
	assert.Len(t, GetUUID(), 36)
	assert.NotEqual(t, GetUUID(), GetUUID())
}

func TestGetUUIDWithoutDashes(t *testing.T) {
	u := GetUUIDWithoutDashes()
	assert.Len(t, u, 32)
	assert.NotContains(t, u, "-")
}

func TestPrefixedUlid(t *testing.T) {
	a := PrefixedUlid("job")
	b := PrefixedUlid("job")
	assert.True(t, strings.HasPrefix(a, "job_"))
	assert.Len(t, a, len("job_")+26)
	assert.Equal(t, strings.ToLower(a), a)
	assert.NotEqual(t, a, b)
}
