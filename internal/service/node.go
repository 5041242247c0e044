package service

import (
	"context"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/rs/zerolog"
)

const (
	defaultHotNodes = 10
	maxHotNodes     = 50
)

type nodeService struct {
	d   Deps
	log zerolog.Logger
}

func NewNodeService(d Deps, logger zerolog.Logger) NodeService {
	l := logger.With().Str("module", "service").Str("component", "node").Logger()
	return &nodeService{d: d, log: l}
}

func (s *nodeService) CreatePlane(ctx context.Context, name string) (model.Plane, error) {
	name, ferrs := checkText("name", name, 1, 200)
	if err := newInvalidInput(ferrs); err != nil {
		return model.Plane{}, err
	}
	out, err := s.d.Planes.Create(ctx, model.Plane{Name: name})
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("create plane failed")
		return model.Plane{}, err
	}
	s.log.Info().Int64("plane_id", out.ID).Msg("plane created")
	return out, nil
}

func (s *nodeService) ListPlanes(ctx context.Context) ([]model.Plane, error) {
	return s.d.Planes.ListWithNodes(ctx)
}

func (s *nodeService) CreateNode(ctx context.Context, in CreateNodeInput) (model.Node, error) {
	start := time.Now()
	name, ferrs := checkText("name", in.Name, 1, 200)
	nodeSlug := strings.TrimSpace(in.Slug)
	if nodeSlug == "" {
		nodeSlug = slug.Make(name)
	}
	if name != "" && !slug.IsSlug(nodeSlug) {
		ferrs = append(ferrs, FieldError{Field: "slug", Message: "must be lowercase letters, digits and dashes"})
	}
	if in.LimitReputation < 0 {
		ferrs = append(ferrs, FieldError{Field: "limit_reputation", Message: "must be >= 0"})
	}
	if in.PlaneID != nil {
		ferrs = append(ferrs, requireID("plane_id", *in.PlaneID)...)
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Str("name", in.Name).Interface("field_errors", ferrs).Msg("node validation failed")
		return model.Node{}, err
	}

	if in.PlaneID != nil {
		if _, err := s.d.Planes.GetByID(ctx, *in.PlaneID); err != nil {
			return model.Node{}, err
		}
	}
	out, err := s.d.Nodes.Create(ctx, model.Node{
		PlaneID:         in.PlaneID,
		Name:            name,
		Slug:            nodeSlug,
		Thumb:           strings.TrimSpace(in.Thumb),
		Introduction:    strings.TrimSpace(in.Introduction),
		LimitReputation: in.LimitReputation,
	})
	if err != nil {
		s.log.Error().Err(err).Str("slug", nodeSlug).Msg("create node failed")
		return model.Node{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("node_id", out.ID).Str("slug", out.Slug).Msg("node created")
	return out, nil
}

func (s *nodeService) GetNode(ctx context.Context, nodeSlug string) (model.Node, error) {
	nodeSlug = strings.TrimSpace(nodeSlug)
	if nodeSlug == "" {
		return model.Node{}, newInvalidInput([]FieldError{{Field: "slug", Message: "must not be empty"}})
	}
	return s.d.Nodes.GetBySlug(ctx, nodeSlug)
}

// ListHotNodes clamps limit to [1, 50], with 10 when unset.
func (s *nodeService) ListHotNodes(ctx context.Context, limit int) ([]model.HotNode, error) {
	switch {
	case limit <= 0:
		limit = defaultHotNodes
	case limit > maxHotNodes:
		limit = maxHotNodes
	}
	out, err := s.d.Nodes.ListHot(ctx, limit)
	if err != nil {
		s.log.Error().Err(err).Int("limit", limit).Msg("list hot nodes failed")
		return nil, err
	}
	return out, nil
}
