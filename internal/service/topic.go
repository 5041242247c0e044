package service

import (
	"context"
	"strings"
	"time"

	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/rs/zerolog"
)

type topicService struct {
	d     Deps
	pages pager
	log   zerolog.Logger
}

func NewTopicService(d Deps, logger zerolog.Logger) TopicService {
	l := logger.With().Str("module", "service").Str("component", "topic").Logger()
	return &topicService{d: d, pages: newPager(d.MaxPageSize), log: l}
}

// CreateTopic posts a thread. The author's reputation must reach the node's floor;
// the insert and the node's topic_count move together.
func (s *topicService) CreateTopic(ctx context.Context, in CreateTopicInput) (model.Topic, error) {
	start := time.Now()
	var ferrs []FieldError
	ferrs = append(ferrs, requireID("author_id", in.AuthorID)...)
	ferrs = append(ferrs, requireID("node_id", in.NodeID)...)
	title, fe := checkText("title", in.Title, 1, maxTitleLen)
	ferrs = append(ferrs, fe...)
	content, fe := checkText("content", in.Content, 0, maxContentLen)
	ferrs = append(ferrs, fe...)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("topic validation failed")
		return model.Topic{}, err
	}

	author, err := s.d.Users.GetByID(ctx, in.AuthorID)
	if err != nil {
		return model.Topic{}, err
	}
	node, err := s.d.Nodes.GetByID(ctx, in.NodeID)
	if err != nil {
		return model.Topic{}, err
	}
	if author.Reputation < node.LimitReputation {
		s.log.Info().Int64("user_id", author.ID).Int("reputation", author.Reputation).
			Int("limit_reputation", node.LimitReputation).Str("node", node.Slug).Msg("topic rejected by reputation floor")
		return model.Topic{}, ErrForbidden
	}

	var out model.Topic
	err = s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.d.Topics.Create(ctx, model.Topic{
			NodeID: node.ID, AuthorID: author.ID, Title: title, Content: content,
		})
		if err != nil {
			return err
		}
		if err := s.d.Nodes.IncrementTopicCount(ctx, node.ID); err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int64("node_id", in.NodeID).Int64("author_id", in.AuthorID).Msg("create topic failed")
		return model.Topic{}, err
	}
	out.ContentHTML = s.render(out.Content)
	s.log.Info().Dur("took", time.Since(start)).Int64("topic_id", out.ID).Msg("topic created")
	return out, nil
}

func (s *topicService) GetTopic(ctx context.Context, id int64) (model.Topic, error) {
	if err := newInvalidInput(requireID("id", id)); err != nil {
		return model.Topic{}, err
	}
	if err := s.d.Topics.IncrementHits(ctx, id); err != nil {
		return model.Topic{}, err
	}
	t, err := s.d.Topics.GetByID(ctx, id)
	if err != nil {
		return model.Topic{}, err
	}
	t.ContentHTML = s.render(t.Content)
	return t, nil
}

func (s *topicService) ListTopics(ctx context.Context, page repository.Page) (repository.PageResult[model.Topic], error) {
	p, err := s.pages.normalize(page, TopicPageSize)
	if err != nil {
		return repository.PageResult[model.Topic]{}, err
	}
	res, err := s.d.Topics.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("page", p.Number).Int("size", p.Size).Msg("list topics failed")
		return repository.PageResult[model.Topic]{}, err
	}
	return res, nil
}

// ListTopicsByNode reports an unknown slug as ErrNotFound rather than an empty board.
func (s *topicService) ListTopicsByNode(ctx context.Context, slug string, page repository.Page) (repository.PageResult[model.Topic], error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return repository.PageResult[model.Topic]{}, newInvalidInput([]FieldError{{Field: "slug", Message: "must not be empty"}})
	}
	if _, err := s.d.Nodes.GetBySlug(ctx, slug); err != nil {
		return repository.PageResult[model.Topic]{}, err
	}
	p, err := s.pages.normalize(page, TopicPageSize)
	if err != nil {
		return repository.PageResult[model.Topic]{}, err
	}
	res, err := s.d.Topics.ListByNodeSlug(ctx, slug, p)
	if err != nil {
		s.log.Error().Err(err).Str("node", slug).Int("page", p.Number).Int("size", p.Size).Msg("list node topics failed")
		return repository.PageResult[model.Topic]{}, err
	}
	return res, nil
}

func (s *topicService) render(md string) string {
	if s.d.Renderer == nil || md == "" {
		return ""
	}
	return s.d.Renderer.Render(md)
}
