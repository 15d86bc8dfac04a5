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

package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDatabase_SetDefaults(t *testing.T) {
	c := Database{Host: "db", DBName: "artclub", User: "u", Password: "p"}
	c.SetDefaults()
	assert.Equal(t, "mysql", c.Type)
	assert.Equal(t, "3306", c.Port)
	assert.Equal(t, 20, c.MaxOpenConns)
	assert.True(t, c.Enabled())
	assert.Equal(t, "u:p@tcp(db:3306)/artclub?charset=utf8mb4&parseTime=True&loc=Local", c.DSN())

	assert.False(t, (&Database{}).Enabled())
}

func TestNewDatabase_UnsupportedType(t *testing.T) {
	_, err := NewDatabase(Database{Type: "postgres", Host: "x", DBName: "y"})
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestProvideGorm_Disabled(t *testing.T) {
	db, err := ProvideGorm(Database{})
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.Nil(t, ProvideIDatabase(nil))
}

func TestGormLoggerAdapter_Trace(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	gc := GormConfig(Database{OutPut: true, SlowSQL: 1})
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true}), gc)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	var n int
	require.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())

	adapter := NewGormLoggerAdapter(logger.Config{SlowThreshold: time.Millisecond}, logger.Warn)
	silent := adapter.LogMode(logger.Silent)
	assert.Equal(t, logger.Warn, adapter.Level)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
}
