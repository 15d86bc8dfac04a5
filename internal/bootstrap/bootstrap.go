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
	"context"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/internal/config"
	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/skku-artclub/artclub/internal/repo"
	"github.com/skku-artclub/artclub/pkg/database"
	"github.com/skku-artclub/artclub/pkg/log"
	"github.com/skku-artclub/artclub/pkg/metrics"
	"github.com/skku-artclub/artclub/pkg/pprof"
	"github.com/skku-artclub/artclub/pkg/shutdown"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	HttpApp *fiber.App
	Queue   *jobqueue.Queue
	Trail   *audit.Trail
	Cron    *cron.Cron
	Metrics *metrics.Server
	Pprof   *pprof.Server
	Drain   *shutdown.Manager
	Tracer  *sdktrace.TracerProvider
	AppConf config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(loader *config.Loader) (*App, func(), error)

func NewApp(
	httpApp *fiber.App,
	queue *jobqueue.Queue,
	trail *audit.Trail,
	scheduler *cron.Cron,
	metricsServer *metrics.Server,
	pprofServer *pprof.Server,
	drain *shutdown.Manager,
	tracer *sdktrace.TracerProvider,
	appConf config.AppConfig,
	db database.IDatabase,
	redisClient *redis.Client,
) (*App, func(), error) {
	if appConf.App.AutoMigrate && db != nil {
		if err := repo.AutoMigrate(db); err != nil {
			return nil, nil, err
		}
		if err := audit.NewGormStore(db.Database()).AutoMigrate(); err != nil {
			return nil, nil, err
		}
		log.Info("database schema migrated")
	}

	cleanup := func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Errorw("failed to close redis", "error", err)
			}
		}
		if db != nil {
			if sqlDB, err := db.Database().DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	}

	app := &App{
		HttpApp: httpApp,
		Queue:   queue,
		Trail:   trail,
		Cron:    scheduler,
		Metrics: metricsServer,
		Pprof:   pprofServer,
		Drain:   drain,
		Tracer:  tracer,
		AppConf: appConf,
	}
	return app, cleanup, nil
}

// Bootstrap loads the configuration, builds the App through initApp and
// starts watching the configuration file.
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	loader, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	appConf := loader.Config()
	if err := appConf.Validate(); err != nil {
		return nil, nil, err
	}

	app, cleanup, err := initApp(loader)
	if err != nil {
		return nil, nil, err
	}

	// listeners, stores and secrets are bound at startup
	loader.OnChange(func(config.AppConfig) {
		log.Warnw("configuration reloaded, restart to apply it", "file", configFile)
	})
	loader.Watch()

	return app, cleanup, nil
}

// Run starts the queue, the scheduler and the listeners, then waits until
// the drain manager fires (an exit signal or an explicit Shutdown) and
// stops everything in reverse order.
func Run(app *App, cleanup func()) {
	appConf := app.AppConf
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.Queue.Start(ctx)
	if app.Cron != nil {
		app.Cron.Start()
	}

	if app.Metrics != nil {
		if err := app.Metrics.RegisterCollector(metrics.NewQueueCollector(app.Queue)); err != nil {
			log.Errorw("failed to register queue collector", "error", err)
		}
		if err := app.Metrics.Start(); err != nil {
			log.Errorw("failed to start metrics server", "error", err)
		}
	}

	if app.Pprof != nil {
		if err := app.Pprof.Start(); err != nil {
			log.Errorw("failed to start pprof server", "error", err)
		}
	}

	// set signal listener (graceful shutdown)
	received, stopSignals := app.Drain.NotifySignals(syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stopSignals()

	// start HTTP server (async)
	go func() {
		addr := appConf.Http.Addr()
		log.Infow("HTTP listener started", "address", addr)
		if err := app.HttpApp.Listen(addr); err != nil {
			log.Errorw("HTTP listener failed", "address", addr, "error", err)
		}
	}()

	<-app.Drain.Done()
	select {
	case sig := <-received:
		log.Infow("shutting down gracefully", "signal", sig.String())
	default:
		log.Info("shutting down gracefully")
	}

	timeout := time.Duration(appConf.Http.ShutdownTimeout) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	if app.Cron != nil {
		app.Cron.Stop()
	}
	app.Queue.Stop()
	if app.Metrics != nil {
		if err := app.Metrics.Stop(shutdownCtx); err != nil {
			log.Errorw("metrics server shutdown error", "error", err)
		}
	}
	if app.Pprof != nil {
		_ = app.Pprof.Stop(shutdownCtx)
	}

	cleanup()

	log.Info("Server shutdown complete")
	_ = log.Sync()
}
