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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[app]
name = "artclub"
environment = "production"

[http]
port = 9000
[http.auth]
secretKey = "s3cret"
accessExpire = "30m"

[audit]
suspiciousThreshold = 20
window = "2m"

[queue]
maxConcurrent = 5
retryDelay = "10s"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	l, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	cfg := l.Config()

	assert.Equal(t, 9000, cfg.Http.Port)
	assert.Equal(t, "s3cret", cfg.Http.Auth.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.Http.Auth.AccessExpire)
	assert.Equal(t, 20, cfg.Audit.SuspiciousThreshold)
	assert.Equal(t, 2*time.Minute, cfg.Audit.Window)
	assert.Equal(t, "production", cfg.Audit.Environment)
	assert.Equal(t, 5, cfg.Queue.MaxConcurrent)
	assert.Equal(t, 10*time.Second, cfg.Queue.RetryDelay)
	assert.NoError(t, cfg.Validate())

	// defaults
	assert.Equal(t, 100, cfg.Queue.HistoryLimit)
	assert.Equal(t, 3, cfg.Audit.MaxDistinctIPs)
	assert.Equal(t, "/api/v1", cfg.Http.ApiPrefix)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, "artclub:", cfg.Redis.KeyPrefix)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ARTCLUB_HTTP_PORT", "7001")
	l, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, 7001, l.Config().Http.Port)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate_RequiresSecret(t *testing.T) {
	var cfg AppConfig
	cfg.SetDefaults()
	assert.Error(t, cfg.Validate())
}

func TestWatch_Reloads(t *testing.T) {
	path := writeConfig(t, sample)
	l, err := Load(path)
	require.NoError(t, err)

	var port atomic.Int64
	l.OnChange(func(cfg AppConfig) { port.Store(int64(cfg.Http.Port)) })
	l.Watch()

	updated := strings.Replace(sample, "port = 9000", "port = 9100", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	assert.Eventually(t, func() bool { return port.Load() == 9100 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 9100, l.Config().Http.Port)
}
