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
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionGuard_Unauthenticated(t *testing.T) {
	e, a, _ := newTestEngine(t)
	g := e.PermissionGuard([]Permission{AdminAccess}, false)

	err := g(context.Background(), &Request{Path: "/admin", ClientIP: "10.0.0.1"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	require.Len(t, a.specs, 1)
	assert.Equal(t, audit.EventUnauthorizedAccess, a.specs[0].Type)
	assert.Equal(t, audit.SeverityMedium, a.specs[0].Severity)
	assert.Equal(t, audit.ResultFailure, a.specs[0].Result)
	assert.Nil(t, a.specs[0].Actor)
	assert.Equal(t, "/admin", a.specs[0].Endpoint)

	assert.ErrorIs(t, g(context.Background(), nil), ErrUnauthenticated)
	assert.Len(t, a.specs, 2)
}

func TestPermissionGuard_Denied(t *testing.T) {
	e, a, _ := newTestEngine(t)
	g := e.PermissionGuard([]Permission{ArtworkDelete}, false)

	before := testutil.ToFloat64(metrics.AuthzDecisionsTotal.WithLabelValues("permission", "denied"))
	err := g(context.Background(), &Request{Actor: &Actor{ID: "u1", Role: RoleSkkuMember}})

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, []Permission{ArtworkDelete}, denied.Required)
	assert.Contains(t, err.Error(), "artwork:delete")

	require.Len(t, a.specs, 1)
	assert.Equal(t, audit.EventPermissionDenied, a.specs[0].Type)
	assert.Equal(t, audit.SeverityHigh, a.specs[0].Severity)
	assert.Equal(t, audit.ResultBlocked, a.specs[0].Result)
	assert.Equal(t, "u1", a.specs[0].Actor.ID)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AuthzDecisionsTotal.WithLabelValues("permission", "denied")))
}

func TestPermissionGuard_Granted(t *testing.T) {
	e, a, _ := newTestEngine(t)
	g := e.PermissionGuard([]Permission{JobCreate, JobRead}, true)

	assert.NoError(t, g(context.Background(), &Request{Actor: &Actor{ID: "m", Role: RoleAdminUserManager}}))
	require.Len(t, a.specs, 1)
	assert.Equal(t, audit.EventPermissionGranted, a.specs[0].Type)
	assert.Equal(t, audit.SeverityLow, a.specs[0].Severity)
	assert.Equal(t, audit.ResultSuccess, a.specs[0].Result)

	err := g(context.Background(), &Request{Actor: &Actor{ID: "r", Role: RoleAdminReadOnly}})
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.True(t, denied.RequireAll)
	assert.Len(t, a.specs, 2)
}

func TestPermissionGuard_RequiredListIsCopied(t *testing.T) {
	e, _, _ := newTestEngine(t)
	perms := []Permission{ArtworkDelete}
	g := e.PermissionGuard(perms, false)
	perms[0] = ArtworkRead
	assert.Error(t, g(context.Background(), &Request{Actor: &Actor{Role: RoleSkkuMember}}))
}

func artworkLookup(artworks map[string]*Resource) ResourceLookup {
	return func(_ context.Context, req *Request) (*Resource, error) {
		return artworks[req.Path], nil
	}
}

func TestOwnershipGuard(t *testing.T) {
	e, a, _ := newTestEngine(t)
	lookup := artworkLookup(map[string]*Resource{
		"/artworks/1": {ID: "1", UserID: "u1"},
		"/artworks/2": {ID: "2", CreatedBy: "u2"},
	})
	check := e.OwnershipGuard(ArtworkUpdate, lookup)
	member := &Actor{ID: "u1", Role: RoleSkkuMember}
	ctx := context.Background()

	res, err := check(ctx, &Request{Actor: member, Path: "/artworks/1"})
	require.NoError(t, err)
	assert.Equal(t, "1", res.ID)

	res, err = check(ctx, &Request{Actor: member, Path: "/artworks/2"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.NotErrorIs(t, err, ErrResourceNotFound)

	_, err = check(ctx, &Request{Actor: member, Path: "/artworks/404"})
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, err = check(ctx, &Request{Path: "/artworks/1"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.Len(t, a.specs, 4)
	assert.Equal(t, audit.EventPermissionGranted, a.specs[0].Type)
	assert.Equal(t, "1", a.specs[0].ResourceID)
	assert.Equal(t, audit.EventPermissionDenied, a.specs[1].Type)
	assert.Equal(t, audit.EventResourceNotFound, a.specs[2].Type)
	assert.Equal(t, audit.SeverityLow, a.specs[2].Severity)
	assert.Equal(t, audit.ResultFailure, a.specs[2].Result)
	assert.Equal(t, audit.EventUnauthorizedAccess, a.specs[3].Type)
}

func TestOwnershipGuard_LookupError(t *testing.T) {
	e, a, _ := newTestEngine(t)
	boom := errors.New("db down")
	check := e.OwnershipGuard(ArtworkDelete, func(context.Context, *Request) (*Resource, error) {
		return nil, boom
	})
	_, err := check(context.Background(), &Request{Actor: &Actor{ID: "a", Role: RoleAdmin}})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, a.specs)
}

// A member asking to delete someone else's artwork is denied by role, and
// may update only their own.
func TestScenario_MemberArtworkAccess(t *testing.T) {
	e, _, _ := newTestEngine(t)
	member := &Actor{ID: "u1", Role: RoleSkkuMember}
	lookup := artworkLookup(map[string]*Resource{
		"/artworks/mine":   {ID: "mine", UserID: "u1"},
		"/artworks/theirs": {ID: "theirs", UserID: "u9"},
	})
	ctx := context.Background()

	err := e.PermissionGuard([]Permission{ArtworkDelete}, false)(ctx, &Request{Actor: member, Path: "/artworks/theirs"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = e.OwnershipGuard(ArtworkDelete, lookup)(ctx, &Request{Actor: member, Path: "/artworks/theirs"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	update := e.OwnershipGuard(ArtworkUpdate, lookup)
	_, err = update(ctx, &Request{Actor: member, Path: "/artworks/mine"})
	assert.NoError(t, err)
	_, err = update(ctx, &Request{Actor: member, Path: "/artworks/theirs"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestEngine_WithoutAuditor(t *testing.T) {
	e := NewEngine(nil, nil)
	assert.NoError(t, e.PermissionGuard([]Permission{ArtworkRead}, false)(context.Background(), &Request{Actor: &Actor{Role: RoleExternalMember}}))
}
