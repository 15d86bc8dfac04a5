//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/skku-artclub/artclub/internal/bootstrap"
	"github.com/skku-artclub/artclub/internal/config"
	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/skku-artclub/artclub/internal/repo"
	"github.com/skku-artclub/artclub/internal/router"
	"github.com/skku-artclub/artclub/pkg/cache"
	"github.com/skku-artclub/artclub/pkg/database"
	"github.com/skku-artclub/artclub/pkg/log"
	"github.com/skku-artclub/artclub/pkg/metrics"
	"github.com/skku-artclub/artclub/pkg/pprof"
	"github.com/skku-artclub/artclub/pkg/shutdown"
	"github.com/skku-artclub/artclub/pkg/trace"
)

func initApp(loader *config.Loader) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		log.ProviderSet,
		database.ProviderSet,
		cache.ProviderSet,
		repo.ProviderSet,
		metrics.ProviderSet,
		pprof.ProviderSet,
		shutdown.ProviderSet,
		trace.ProviderSet,
		bootstrap.ProviderSet,
		router.ProviderSet,
		wire.Bind(new(router.JobQueue), new(*jobqueue.Queue)),
	))
}
