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

package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/skku-artclub/artclub/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockRepos(t *testing.T) (*Repositories, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true}), database.GormConfig(database.Database{}))
	require.NoError(t, err)
	return NewRepositories(database.NewGormDB(db)), mock
}

func TestDeleteUsers_ReportsMissing(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectQuery("SELECT `user_id` FROM `t_user` WHERE user_id IN \\(\\?,\\?,\\?\\)").
		WithArgs("u1", "u2", "u3").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1").AddRow("u3"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `t_user` WHERE user_id IN \\(\\?,\\?\\)").
		WithArgs("u1", "u3").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	missing, err := repos.User.DeleteUsers(context.Background(), []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.ErrorIs(t, missing["u2"], ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUsers_NoneFound(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectQuery("SELECT `user_id` FROM `t_user`").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	missing, err := repos.User.DeleteUsers(context.Background(), []string{"ghost"})
	require.NoError(t, err)
	assert.Len(t, missing, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUsers_LookupError(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectQuery("SELECT `user_id` FROM `t_user`").WillReturnError(errors.New("conn refused"))

	_, err := repos.User.DeleteUsers(context.Background(), []string{"u1"})
	assert.ErrorContains(t, err, "conn refused")
}

func TestUpdateUserRoles(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectQuery("SELECT `user_id` FROM `t_user`").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `t_user` SET `role`=\\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	missing, err := repos.User.UpdateUserRoles(context.Background(), []string{"u1"}, "ADMIN_READ_ONLY")
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectQuery("SELECT \\* FROM `t_user` WHERE user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "email", "role", "is_active"}).
			AddRow(1, "u1", "painter", "painter@skku.edu", "SKKU_MEMBER", true))

	u, err := repos.User.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "painter", u.Username)
	assert.True(t, u.IsActive)

	mock.ExpectQuery("SELECT \\* FROM `t_user`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repos.User.GetUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetArtwork(t *testing.T) {
	repos, mock := newMockRepos(t)
	mock.ExpectQuery("SELECT \\* FROM `t_artwork` WHERE artwork_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "artwork_id", "user_id", "title"}).
			AddRow(7, "art-1", "u1", "Still Life"))

	a, err := repos.Artwork.GetArtwork(context.Background(), "art-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", a.UserId)
}

func TestSetFeatured(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectQuery("SELECT `artwork_id` FROM `t_artwork`").
		WillReturnRows(sqlmock.NewRows([]string{"artwork_id"}).AddRow("a1"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `t_artwork` SET `is_featured`=NOT is_featured").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	_, err := repos.Artwork.SetFeatured(context.Background(), []string{"a1"}, nil)
	require.NoError(t, err)

	on := true
	mock.ExpectQuery("SELECT `artwork_id` FROM `t_artwork`").
		WillReturnRows(sqlmock.NewRows([]string{"artwork_id"}).AddRow("a1"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `t_artwork` SET `is_featured`=\\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	_, err = repos.Artwork.SetFeatured(context.Background(), []string{"a1"}, &on)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExhibitionsAndNotices(t *testing.T) {
	repos, mock := newMockRepos(t)

	mock.ExpectQuery("SELECT `exhibition_id` FROM `t_exhibition`").
		WillReturnRows(sqlmock.NewRows([]string{"exhibition_id"}).AddRow("e1"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `t_exhibition`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	missing, err := repos.Exhibition.DeleteExhibitions(context.Background(), []string{"e1"})
	require.NoError(t, err)
	assert.Empty(t, missing)

	mock.ExpectQuery("SELECT `notice_id` FROM `t_notice`").
		WillReturnRows(sqlmock.NewRows([]string{"notice_id"}).AddRow("n1"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `t_notice`").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()
	_, err = repos.Notice.DeleteNotices(context.Background(), []string{"n1"})
	assert.ErrorContains(t, err, "lock wait timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvideRepositories_NoDatabase(t *testing.T) {
	assert.Nil(t, ProvideRepositories(nil))
}
