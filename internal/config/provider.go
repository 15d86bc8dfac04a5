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
	"github.com/google/wire"
	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/skku-artclub/artclub/pkg/cache"
	"github.com/skku-artclub/artclub/pkg/database"
	"github.com/skku-artclub/artclub/pkg/http"
	"github.com/skku-artclub/artclub/pkg/log"
	"github.com/skku-artclub/artclub/pkg/metrics"
	"github.com/skku-artclub/artclub/pkg/pprof"
	"github.com/skku-artclub/artclub/pkg/trace"
)

var ProviderSet = wire.NewSet(
	ProvideAppConfig,
	ProvideLogConf,
	ProvideHttpConf,
	ProvideDatabaseConf,
	ProvideRedisConf,
	ProvideAuditConf,
	ProvideQueueConf,
	ProvideMetricsConf,
	ProvidePprofConf,
	ProvideTraceConf,
)

func ProvideAppConfig(l *Loader) AppConfig {
	return l.Config()
}

func ProvideLogConf(cfg AppConfig) *log.Conf {
	return &cfg.Log
}

func ProvideHttpConf(cfg AppConfig) *http.Http {
	return &cfg.Http
}

func ProvideDatabaseConf(cfg AppConfig) database.Database {
	return cfg.Database
}

func ProvideRedisConf(cfg AppConfig) cache.Redis {
	return cfg.Redis
}

func ProvideAuditConf(cfg AppConfig) audit.Config {
	return cfg.Audit
}

func ProvideQueueConf(cfg AppConfig) jobqueue.Config {
	return cfg.Queue
}

func ProvideMetricsConf(cfg AppConfig) metrics.MetricsConfig {
	return cfg.Metrics
}

func ProvidePprofConf(cfg AppConfig) pprof.PprofConfig {
	return cfg.Pprof
}

func ProvideTraceConf(cfg AppConfig) trace.Conf {
	return cfg.Trace
}
