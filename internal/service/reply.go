package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/rs/zerolog"
)

// excerptLen bounds the reply text copied into a notification.
const excerptLen = 140

type replyService struct {
	d     Deps
	pages pager
	log   zerolog.Logger
}

func NewReplyService(d Deps, logger zerolog.Logger) ReplyService {
	l := logger.With().Str("module", "service").Str("component", "reply").Logger()
	return &replyService{d: d, pages: newPager(d.MaxPageSize), log: l}
}

// CreateReply stores the reply, refreshes the topic's cached aggregates and
// notifies the topic author, all in one transaction.
func (s *replyService) CreateReply(ctx context.Context, in CreateReplyInput) (model.Reply, error) {
	start := time.Now()
	var ferrs []FieldError
	ferrs = append(ferrs, requireID("author_id", in.AuthorID)...)
	ferrs = append(ferrs, requireID("topic_id", in.TopicID)...)
	content, fe := checkText("content", in.Content, 1, maxContentLen)
	ferrs = append(ferrs, fe...)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("reply validation failed")
		return model.Reply{}, err
	}

	if _, err := s.d.Users.GetByID(ctx, in.AuthorID); err != nil {
		return model.Reply{}, err
	}

	var out model.Reply
	err := s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		topic, err := s.d.Topics.GetByID(ctx, in.TopicID)
		if err != nil {
			return err
		}
		created, err := s.d.Replies.Create(ctx, model.Reply{TopicID: topic.ID, AuthorID: in.AuthorID, Content: content})
		if err != nil {
			return err
		}
		if err := s.d.Topics.RecordReply(ctx, topic.ID, in.AuthorID, created.Created); err != nil {
			return err
		}
		if topic.AuthorID != in.AuthorID {
			replier := in.AuthorID
			if _, err := s.d.Notifications.Create(ctx, model.Notification{
				InvolvedUserID:  topic.AuthorID,
				TriggerUserID:   &replier,
				InvolvedType:    model.InvolvedReply,
				InvolvedTopicID: &created.TopicID,
				InvolvedReplyID: &created.ID,
				Content:         excerpt(content),
				Status:          model.NotificationUnread,
				OccurrenceTime:  created.Created,
			}); err != nil {
				return err
			}
		}
		out = created
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int64("topic_id", in.TopicID).Int64("author_id", in.AuthorID).Msg("create reply failed")
		return model.Reply{}, err
	}
	if s.d.Renderer != nil {
		out.ContentHTML = s.d.Renderer.Render(out.Content)
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("reply_id", out.ID).Int64("topic_id", out.TopicID).Msg("reply created")
	return out, nil
}

func (s *replyService) ListReplies(ctx context.Context, topicID int64, page repository.Page) (repository.PageResult[model.Reply], error) {
	if err := newInvalidInput(requireID("topic_id", topicID)); err != nil {
		return repository.PageResult[model.Reply]{}, err
	}
	if _, err := s.d.Topics.GetByID(ctx, topicID); err != nil {
		return repository.PageResult[model.Reply]{}, err
	}
	p, err := s.pages.normalize(page, ReplyPageSize)
	if err != nil {
		return repository.PageResult[model.Reply]{}, err
	}
	res, err := s.d.Replies.ListByTopic(ctx, topicID, p)
	if err != nil {
		s.log.Error().Err(err).Int64("topic_id", topicID).Int("page", p.Number).Int("size", p.Size).Msg("list replies failed")
		return repository.PageResult[model.Reply]{}, err
	}
	if s.d.Renderer != nil {
		for i := range res.Items {
			res.Items[i].ContentHTML = s.d.Renderer.Render(res.Items[i].Content)
		}
	}
	return res, nil
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	r := []rune(s)
	return string(r[:excerptLen]) + "…"
}
