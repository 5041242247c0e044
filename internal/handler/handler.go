package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/forum-service/internal/service"
	"github.com/rs/zerolog"
)

// Services bundles the use cases the HTTP surface exposes.
// A nil member leaves its routes mounted but unusable, which is fine for probe-only tests.
type Services struct {
	Users    service.UserService
	Nodes    service.NodeService
	Topics   service.TopicService
	Replies  service.ReplyService
	Activity service.ActivityService
}

type options struct {
	baseURL string
}

// Option tunes Register.
type Option func(*options)

// WithBaseURL fixes the public origin used for absolute links such as the Atom feed.
// Without it the origin is taken from the request.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// Register mounts middleware and all public routes on the given engine.
func Register(r *gin.Engine, repo Pinger, svc Services, logger zerolog.Logger, opts ...Option) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	l := logger.With().Str("module", "handler").Logger()
	metrics := NewMetrics()

	r.Use(RequestID(), AccessLog(l), metrics.Middleware())

	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)
	r.GET("/metrics", metrics.Handler())

	// Docs endpoints (root-level)
	RegisterDocs(r)
	NewFeedHandler(svc.Topics, o.baseURL).Register(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewUserHandler(svc.Users).Register(api)
		NewNodeHandler(svc.Nodes).Register(api)
		NewTopicHandler(svc.Topics, svc.Replies).Register(api)
		NewActivityHandler(svc.Activity).Register(api)
	}
}
