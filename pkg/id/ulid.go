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
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// GetUild returns a lexically sortable ULID for the current time.
func GetUild() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// PrefixedUlid returns prefix + "_" + a lowercase ULID, e.g. job_01j9....
func PrefixedUlid(prefix string) string {
	return prefix + "_" + strings.ToLower(GetUild())
}
