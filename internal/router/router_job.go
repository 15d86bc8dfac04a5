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
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skku-artclub/artclub/internal/admin"
	"github.com/skku-artclub/artclub/internal/jobqueue"
	"github.com/skku-artclub/artclub/internal/rbac"
	"github.com/skku-artclub/artclub/pkg/http"
	"github.com/skku-artclub/artclub/pkg/log"
)

type jobOptionsReq struct {
	BatchSize     int            `json:"batchSize"`
	RetryAttempts *int           `json:"retryAttempts"`
	RetryDelay    string         `json:"retryDelay"`
	Flags         map[string]any `json:"flags"`
}

type createJobReq struct {
	Type        string        `json:"type"`
	Targets     []string      `json:"targets"`
	Priority    int           `json:"priority"`
	Description string        `json:"description"`
	Options     jobOptionsReq `json:"options"`
}

type createJobResp struct {
	JobId string `json:"jobId"`
}

// buildJobGuards prepares one guard per registered job type, requiring
// job:create plus the permission the type acts under.
func (rt *Router) buildJobGuards() {
	rt.jobGuards = make(map[jobqueue.JobType]rbac.Guard)
	if rt.Registry == nil {
		return
	}
	for _, t := range rt.Registry.Types() {
		perms := []rbac.Permission{rbac.JobCreate}
		if p, ok := admin.RequiredPermission(t); ok {
			perms = append(perms, p)
		}
		rt.jobGuards[t] = rt.Engine.PermissionGuard(perms, true)
	}
}

func (rt *Router) createJob(c *fiber.Ctx) error {
	var req createJobReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest.Code, "invalid request body", c.Path())
	}

	jt := jobqueue.JobType(strings.ToUpper(strings.TrimSpace(req.Type)))
	guard, ok := rt.jobGuards[jt]
	if !ok {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest.Code, "unsupported job type: "+req.Type, c.Path())
	}
	if err := guard(c.UserContext(), guardRequest(c)); err != nil {
		return guardError(c, err)
	}

	if err := admin.ValidateFlags(jt, req.Options.Flags); err != nil {
		code := http.BadRequest.Code
		if errors.Is(err, admin.ErrInvalidRole) {
			code = http.InvalidRole.Code
		}
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, code, err.Error(), c.Path())
	}

	opts := []jobqueue.Option{jobqueue.WithBatchSize(req.Options.BatchSize)}
	if req.Options.RetryAttempts != nil {
		opts = append(opts, jobqueue.WithRetryAttempts(*req.Options.RetryAttempts))
	}
	if req.Options.RetryDelay != "" {
		d, err := time.ParseDuration(req.Options.RetryDelay)
		if err != nil || d < 0 {
			return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest.Code, "invalid retryDelay", c.Path())
		}
		opts = append(opts, jobqueue.WithRetryDelay(d))
	}
	for k, v := range req.Options.Flags {
		opts = append(opts, jobqueue.WithFlag(k, v))
	}

	jobId, err := rt.Queue.CreateJob(c.UserContext(), jobqueue.Spec{
		Type:        jt,
		Targets:     req.Targets,
		Priority:    req.Priority,
		Description: req.Description,
		Actor:       actorOf(c).AuditActor(),
	}, opts...)
	if errors.Is(err, jobqueue.ErrInvalidJob) {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest.Code, err.Error(), c.Path())
	}
	if err != nil {
		log.WithContext(c.UserContext()).Errorw("create job failed", "jobType", string(jt), "error", err)
		return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg, c.Path())
	}

	c.Status(fiber.StatusAccepted)
	return http.WithRepJSON(c, createJobResp{JobId: jobId})
}

func (rt *Router) listJobs(c *fiber.Ctx) error {
	jobs := rt.Queue.AllJobs(jobqueue.Filter{
		Status: jobqueue.Status(strings.ToUpper(c.Query("status"))),
		Type:   jobqueue.JobType(strings.ToUpper(c.Query("type"))),
		UserID: c.Query("userId"),
	})
	return http.WithRepJSON(c, jobs)
}

func (rt *Router) jobStats(c *fiber.Ctx) error {
	return http.WithRepJSON(c, rt.Queue.Stats())
}

func (rt *Router) getJob(c *fiber.Ctx) error {
	job, ok := rt.Queue.JobStatus(c.Params("jobId"))
	if !ok {
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.JobNotFound.Code, http.JobNotFound.Msg, c.Path())
	}
	return http.WithRepJSON(c, job)
}

func (rt *Router) cancelJob(c *fiber.Ctx) error {
	jobId := c.Params("jobId")
	if _, ok := rt.Queue.JobStatus(jobId); !ok {
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.JobNotFound.Code, http.JobNotFound.Msg, c.Path())
	}
	if !rt.Queue.CancelJob(c.UserContext(), jobId, actorOf(c).AuditActor()) {
		return http.WithRepErrStatus(c, fiber.StatusConflict, http.BadRequest.Code, "job has already finished", c.Path())
	}
	return http.WithRepNotDetail(c)
}
