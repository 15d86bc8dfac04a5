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

package router

import (
	"context"
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/skku-artclub/artclub/internal/audit"
	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/skku-artclub/artclub/internal/model"
	"github.com/skku-artclub/artclub/internal/rbac"
	"github.com/skku-artclub/artclub/pkg/http"
	"github.com/skku-artclub/artclub/pkg/http/middleware"
	"github.com/skku-artclub/artclub/pkg/metrics"
	"github.com/skku-artclub/artclub/pkg/version"
)

type UserLookup interface {
	GetUser(ctx context.Context, userId string) (*model.User, error)
}

type ArtworkStore interface {
	GetArtwork(ctx context.Context, artworkId string) (*model.Artwork, error)
	DeleteArtworks(ctx context.Context, artworkIds []string) (map[string]error, error)
}

type EventLister interface {
	List(ctx context.Context, f audit.Filter) ([]*audit.Event, error)
}

type JobQueue interface {
	CreateJob(ctx context.Context, spec jobqueue.Spec, opts ...jobqueue.Option) (string, error)
	JobStatus(jobID string) (*jobqueue.Job, bool)
	AllJobs(f jobqueue.Filter) []*jobqueue.Job
	CancelJob(ctx context.Context, jobID string, actor *audit.Actor) bool
	Stats() metrics.QueueStats
}

// Deps are the optional collaborators. A nil field disables the routes
// that need it; Sessions and Users only narrow authentication.
// DrainState reports whether the process has started shutting down.
type DrainState interface {
	IsShuttingDown() bool
}

type Deps struct {
	Sessions middleware.SessionChecker
	Users    UserLookup
	Artworks ArtworkStore
	Events   EventLister
	Metrics  nethttp.Handler
	Drain    DrainState
}

type Router struct {
	Http     *http.Http
	Engine   *rbac.Engine
	Queue    JobQueue
	Registry *jobqueue.Registry
	Deps     Deps

	jobGuards map[jobqueue.JobType]rbac.Guard
}

func NewRouter(httpConf *http.Http, engine *rbac.Engine, queue JobQueue, registry *jobqueue.Registry, deps Deps) *Router {
	rt := &Router{
		Http:     httpConf,
		Engine:   engine,
		Queue:    queue,
		Registry: registry,
		Deps:     deps,
	}
	rt.buildJobGuards()
	return rt
}

func (rt *Router) Router() *fiber.App {
	app := http.NewFiber(rt.Http, "artclub")

	app.Use(
		middleware.ExceptionMiddleware,
		middleware.CorsMiddleware(),
		middleware.RequestMiddleware(),
		middleware.RealIPMiddleware(),
		middleware.TraceMiddleware(),
		http.AccessLogFormat(rt.Http),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		if rt.Deps.Drain != nil && rt.Deps.Drain.IsShuttingDown() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
		}
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return http.WithRepJSON(c, version.GetVersion())
	})

	if rt.Http.ExposeMetrics && rt.Deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(rt.Deps.Metrics))
	}

	api := app.Group(rt.Http.ApiPrefix,
		middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey, rt.Deps.Sessions),
		rt.actorMiddleware(),
	)
	rt.routerGroup(api)

	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.NotFound.Code, "request path not found", c.Path())
	})

	return app
}

func (rt *Router) routerGroup(r fiber.Router) {
	r.Get("/me/permissions", rt.authenticated(), rt.myPermissions)

	admin := r.Group("/admin", rt.requireAny(rbac.AdminAccess))
	{
		admin.Get("/permissions", rt.listPermissions)

		jobs := admin.Group("/jobs")
		jobs.Post("/", rt.createJob)
		jobs.Get("/", rt.requireAll(rbac.JobRead), rt.listJobs)
		jobs.Get("/stats", rt.requireAll(rbac.JobRead), rt.jobStats)
		jobs.Get("/:jobId", rt.requireAll(rbac.JobRead), rt.getJob)
		jobs.Delete("/:jobId", rt.requireAll(rbac.JobCancel), rt.cancelJob)

		if rt.Deps.Events != nil {
			admin.Get("/audit", rt.requireAll(rbac.AuditRead), rt.listAuditEvents)
		}
	}

	if rt.Deps.Artworks != nil {
		artworks := r.Group("/artworks")
		artworks.Get("/:artworkId", rt.owned(rbac.ArtworkRead, rt.artworkLookup), rt.getArtwork)
		artworks.Delete("/:artworkId", rt.owned(rbac.ArtworkDelete, rt.artworkLookup), rt.deleteArtwork)
	}
}
