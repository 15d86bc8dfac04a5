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

package bootstrap

import (
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
	"github.com/skku-artclub/artclub/internal/admin"
	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/skku-artclub/artclub/internal/rbac"
	"github.com/skku-artclub/artclub/internal/repo"
	"github.com/skku-artclub/artclub/internal/router"
	"github.com/skku-artclub/artclub/pkg/cache"
	"github.com/skku-artclub/artclub/pkg/log"
	"github.com/skku-artclub/artclub/pkg/metrics"
	"github.com/skku-artclub/artclub/pkg/shutdown"
	"gorm.io/gorm"
)

const sessionCleanupJob = "audit_session_cleanup"

var ProviderSet = wire.NewSet(
	ProvideTrail,
	ProvideEngine,
	ProvideRegistry,
	ProvideQueue,
	ProvideCron,
	ProvideRouterDeps,
	NewApp,
)

// ProvideTrail builds the audit trail. Events are persisted when a database
// is configured and critical alerts are published when redis is.
func ProvideTrail(conf audit.Config, logger *log.Logger, db *gorm.DB, redisClient *redis.Client) *audit.Trail {
	opts := []audit.Option{audit.WithConfig(conf)}
	if db != nil {
		opts = append(opts, audit.WithStore(audit.NewGormStore(db)))
	}
	if redisClient != nil {
		conf.SetDefaults()
		opts = append(opts, audit.WithNotifier(audit.NewRedisNotifier(redisClient, conf.AlertChannel)))
	}
	return audit.New(logger.Log.Named("audit"), opts...)
}

func ProvideEngine(trail *audit.Trail, logger *log.Logger) *rbac.Engine {
	return rbac.NewEngine(trail, logger.Log.Named("rbac"))
}

// ProvideRegistry registers the bulk handlers backed by the repositories.
// Without a database no job type is runnable.
func ProvideRegistry(repos *repo.Repositories) *jobqueue.Registry {
	reg := jobqueue.NewRegistry()
	if repos == nil {
		return reg
	}
	return admin.Register(reg, admin.Services{
		Users:       repos.User,
		Artworks:    repos.Artwork,
		Exhibitions: repos.Exhibition,
		Notices:     repos.Notice,
	})
}

func ProvideQueue(conf jobqueue.Config, registry *jobqueue.Registry, trail *audit.Trail, logger *log.Logger) *jobqueue.Queue {
	return jobqueue.New(conf, registry, trail, jobqueue.WithLogger(logger.Log.Named("jobqueue")))
}

// ProvideCron schedules the periodic audit session cleanup.
func ProvideCron(conf audit.Config, trail *audit.Trail) (*cron.Cron, error) {
	conf.SetDefaults()
	c := cron.New()
	err := c.AddFunc(conf.CleanupSpec, func() {
		start := time.Now()
		removed := trail.CleanupSessions()
		metrics.RecordCronJobRun(sessionCleanupJob, time.Since(start), removed)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ProvideRouterDeps collects the optional router collaborators. Absent
// backends stay nil interfaces so the router skips their routes.
func ProvideRouterDeps(db *gorm.DB, repos *repo.Repositories, redisClient *redis.Client, sessions *cache.TokenStore, metricsServer *metrics.Server, drain *shutdown.Manager) router.Deps {
	var deps router.Deps
	if drain != nil {
		deps.Drain = drain
	}
	if redisClient != nil && sessions != nil {
		deps.Sessions = sessions
	}
	if repos != nil {
		deps.Users = repos.User
		deps.Artworks = repos.Artwork
	}
	if db != nil {
		deps.Events = audit.NewGormStore(db)
	}
	if metricsServer != nil {
		deps.Metrics = metricsServer.Handler()
	}
	return deps
}
