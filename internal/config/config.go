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
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/skku-artclub/artclub/pkg/cache"
	"github.com/skku-artclub/artclub/pkg/database"
	"github.com/skku-artclub/artclub/pkg/http"
	"github.com/skku-artclub/artclub/pkg/log"
	"github.com/skku-artclub/artclub/pkg/metrics"
	"github.com/skku-artclub/artclub/pkg/pprof"
	"github.com/skku-artclub/artclub/pkg/trace"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ARTCLUB_HTTP_PORT.
const EnvPrefix = "ARTCLUB"

type App struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	AutoMigrate bool   `mapstructure:"autoMigrate"`
}

type AppConfig struct {
	App      App                   `mapstructure:"app"`
	Log      log.Conf              `mapstructure:"log"`
	Http     http.Http             `mapstructure:"http"`
	Database database.Database     `mapstructure:"database"`
	Redis    cache.Redis           `mapstructure:"redis"`
	Audit    audit.Config          `mapstructure:"audit"`
	Queue    jobqueue.Config       `mapstructure:"queue"`
	Metrics  metrics.MetricsConfig `mapstructure:"metrics"`
	Pprof    pprof.PprofConfig     `mapstructure:"pprof"`
	Trace    trace.Conf            `mapstructure:"trace"`
}

func (c *AppConfig) SetDefaults() {
	if c.App.Name == "" {
		c.App.Name = "artclub"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Log.Output == "" {
		def := log.SetDefaults()
		def.Level = firstNonEmpty(c.Log.Level, def.Level)
		def.Format = firstNonEmpty(c.Log.Format, def.Format)
		c.Log = *def
	}
	if c.Audit.Environment == "" {
		c.Audit.Environment = c.App.Environment
	}
	c.Http.SetDefaults()
	c.Database.SetDefaults()
	c.Redis.SetDefaults()
	c.Audit.SetDefaults()
	c.Queue.SetDefaults()
	c.Metrics.SetDefaults()
	c.Pprof.SetDefaults()
	if c.Trace.ServiceName == "" {
		c.Trace.ServiceName = c.App.Name
	}
	c.Trace.SetDefaults()
}

// Validate rejects configurations the server cannot start with.
func (c *AppConfig) Validate() error {
	if c.Http.Auth.SecretKey == "" {
		return fmt.Errorf("http.auth.secretKey is required")
	}
	return c.Log.Validate()
}

func firstNonEmpty(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// Loader reads the configuration file and keeps it current while the file
// changes.
type Loader struct {
	v         *viper.Viper
	mu        sync.RWMutex
	cfg       AppConfig
	listeners []func(AppConfig)
}

// Load reads path (toml, yaml or json by extension) with ARTCLUB_ env
// overrides and fills defaults.
func Load(path string) (*Loader, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	l := &Loader{v: v}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	return l, nil
}

func (l *Loader) decode() (AppConfig, error) {
	var cfg AppConfig
	if err := l.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	cfg.SetDefaults()
	return cfg, nil
}

// Config returns the current configuration.
func (l *Loader) Config() AppConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// OnChange registers fn to receive the configuration after each reload.
func (l *Loader) OnChange(fn func(AppConfig)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Watch starts watching the file. A reload that fails to decode keeps the
// previous configuration.
func (l *Loader) Watch() {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration file changed", "path", e.Name, "op", e.Op.String())
		cfg, err := l.decode()
		if err != nil {
			log.Errorw("reload configuration failed", "path", e.Name, "error", err)
			return
		}
		l.mu.Lock()
		l.cfg = cfg
		listeners := append([]func(AppConfig){}, l.listeners...)
		l.mu.Unlock()
		for _, fn := range listeners {
			fn(cfg)
		}
	})
	l.v.WatchConfig()
}
