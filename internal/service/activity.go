package service

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/rs/zerolog"
)

type activityService struct {
	d   Deps
	log zerolog.Logger
}

func NewActivityService(d Deps, logger zerolog.Logger) ActivityService {
	l := logger.With().Str("module", "service").Str("component", "activity").Logger()
	return &activityService{d: d, log: l}
}

// target is the resolved topic or reply an activity points at.
type target struct {
	topicID  int64
	replyID  *int64
	authorID int64
}

func (t target) topicRef() *int64 {
	id := t.topicID
	return &id
}

func (s *activityService) resolve(ctx context.Context, kind model.InvolvedType, id int64) (target, error) {
	if kind == model.InvolvedReply {
		r, err := s.d.Replies.GetByID(ctx, id)
		if err != nil {
			return target{}, err
		}
		rid := r.ID
		return target{topicID: r.TopicID, replyID: &rid, authorID: r.AuthorID}, nil
	}
	t, err := s.d.Topics.GetByID(ctx, id)
	if err != nil {
		return target{}, err
	}
	return target{topicID: t.ID, authorID: t.AuthorID}, nil
}

// AddFavorite bookmarks a topic or reply once per user; a repeat is ErrAlreadyExists.
func (s *activityService) AddFavorite(ctx context.Context, userID int64, kind model.InvolvedType, targetID int64) (model.Favorite, error) {
	var ferrs []FieldError
	ferrs = append(ferrs, requireID("user_id", userID)...)
	ferrs = append(ferrs, checkKind(kind)...)
	ferrs = append(ferrs, requireID("target_id", targetID)...)
	if err := newInvalidInput(ferrs); err != nil {
		return model.Favorite{}, err
	}
	if _, err := s.d.Users.GetByID(ctx, userID); err != nil {
		return model.Favorite{}, err
	}
	var out model.Favorite
	err := s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		tg, err := s.resolve(ctx, kind, targetID)
		if err != nil {
			return err
		}
		exists, err := s.d.Favorites.Exists(ctx, userID, kind, targetID)
		if err != nil {
			return err
		}
		if exists {
			return repository.ErrAlreadyExists
		}
		// the unique index settles a concurrent insert that passed the check above
		out, err = s.d.Favorites.Create(ctx, model.Favorite{
			OwnerUserID:     userID,
			InvolvedType:    kind,
			InvolvedTopicID: tg.topicRef(),
			InvolvedReplyID: tg.replyID,
		})
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrAlreadyExists) && !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Int64("user_id", userID).Int64("target_id", targetID).Msg("add favorite failed")
		}
		return model.Favorite{}, err
	}
	s.log.Info().Int64("favorite_id", out.ID).Int64("user_id", userID).Msg("favorite added")
	return out, nil
}

// CastVote records one vote per voter per target, moves the target's counters
// and notifies the author. Voting on your own content is ErrForbidden.
func (s *activityService) CastVote(ctx context.Context, in CastVoteInput) (model.Vote, error) {
	start := time.Now()
	var ferrs []FieldError
	ferrs = append(ferrs, requireID("voter_id", in.VoterID)...)
	ferrs = append(ferrs, checkKind(in.Kind)...)
	ferrs = append(ferrs, requireID("target_id", in.TargetID)...)
	if in.Status != model.VoteUp && in.Status != model.VoteDown {
		ferrs = append(ferrs, FieldError{Field: "status", Message: "must be 1 (up) or -1 (down)"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Vote{}, err
	}
	if _, err := s.d.Users.GetByID(ctx, in.VoterID); err != nil {
		return model.Vote{}, err
	}

	var out model.Vote
	err := s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		tg, err := s.resolve(ctx, in.Kind, in.TargetID)
		if err != nil {
			return err
		}
		if tg.authorID == in.VoterID {
			return ErrForbidden
		}
		if _, err := s.d.Votes.Find(ctx, in.VoterID, in.Kind, in.TargetID); err == nil {
			return repository.ErrAlreadyExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		author := tg.authorID
		created, err := s.d.Votes.Create(ctx, model.Vote{
			InvolvedUserID:  in.VoterID,
			TriggerUserID:   &author,
			InvolvedType:    in.Kind,
			InvolvedTopicID: tg.topicRef(),
			InvolvedReplyID: tg.replyID,
			Status:          in.Status,
		})
		if err != nil {
			return err
		}
		up, down := 0, 0
		if in.Status == model.VoteUp {
			up = 1
		} else {
			down = 1
		}
		if in.Kind == model.InvolvedReply {
			err = s.d.Replies.ApplyVote(ctx, in.TargetID, up, down)
		} else {
			err = s.d.Topics.ApplyVote(ctx, in.TargetID, up, down)
		}
		if err != nil {
			return err
		}
		voter := in.VoterID
		content := "voted up"
		if in.Status == model.VoteDown {
			content = "voted down"
		}
		if _, err := s.d.Notifications.Create(ctx, model.Notification{
			InvolvedUserID:  author,
			TriggerUserID:   &voter,
			InvolvedType:    in.Kind,
			InvolvedTopicID: tg.topicRef(),
			InvolvedReplyID: tg.replyID,
			Content:         content,
			Status:          model.NotificationUnread,
			OccurrenceTime:  created.OccurrenceTime,
		}); err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrForbidden) && !errors.Is(err, repository.ErrAlreadyExists) {
			s.log.Error().Err(err).Int64("voter_id", in.VoterID).Int64("target_id", in.TargetID).Msg("cast vote failed")
		}
		return model.Vote{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("vote_id", out.ID).Int("status", out.Status).Msg("vote cast")
	return out, nil
}

// RecordTransaction applies Reward to the user's balance and keeps the resulting
// balance on the ledger row.
func (s *activityService) RecordTransaction(ctx context.Context, in RecordTransactionInput) (model.Transaction, error) {
	var ferrs []FieldError
	ferrs = append(ferrs, requireID("user_id", in.UserID)...)
	if in.Type < model.TransactionReward || in.Type > model.TransactionReplied {
		ferrs = append(ferrs, FieldError{Field: "type", Message: "must be between 1 and 5"})
	}
	if in.Reward == 0 {
		ferrs = append(ferrs, FieldError{Field: "reward", Message: "must not be 0"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Transaction{}, err
	}

	var out model.Transaction
	err := s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		balance, err := s.d.Users.AdjustBalance(ctx, in.UserID, in.Reward)
		if err != nil {
			return err
		}
		out, err = s.d.Transactions.Create(ctx, model.Transaction{
			UserID:          in.UserID,
			Type:            in.Type,
			Reward:          in.Reward,
			CurrentBalance:  balance,
			InvolvedUserID:  in.InvolvedUserID,
			InvolvedTopicID: in.InvolvedTopicID,
			InvolvedReplyID: in.InvolvedReplyID,
		})
		return err
	})
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", in.UserID).Int("reward", in.Reward).Msg("record transaction failed")
		return model.Transaction{}, err
	}
	s.log.Info().Int64("transaction_id", out.ID).Int64("user_id", in.UserID).Int("balance", out.CurrentBalance).Msg("transaction recorded")
	return out, nil
}
