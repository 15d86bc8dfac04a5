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

package rbac

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("rbac: authentication required")
	ErrPermissionDenied = errors.New("rbac: permission denied")
	ErrResourceNotFound = errors.New("rbac: resource not found")
)

// DeniedError is returned when an authenticated actor lacks the required
// permissions. It matches ErrPermissionDenied with errors.Is.
type DeniedError struct {
	Required   []Permission
	RequireAll bool
}

func (e *DeniedError) Error() string {
	mode := "any of"
	if e.RequireAll {
		mode = "all of"
	}
	return fmt.Sprintf("%s: requires %s [%s]", ErrPermissionDenied, mode, strings.Join(permissionNames(e.Required), ", "))
}

func (e *DeniedError) Unwrap() error {
	return ErrPermissionDenied
}
