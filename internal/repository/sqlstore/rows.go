package sqlstore

import (
	"database/sql"
	"time"

	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

// now is the store's clock: UTC at the precision Postgres keeps.
func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// stamp fills a zero timestamp and normalizes the rest so both dialects sort alike.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t.UTC().Truncate(time.Microsecond)
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: stamp(*p), Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time.UTC()
	return &v
}

// userRefFrom builds a reference from left-joined user columns; a NULL id means no user.
func userRefFrom(id sql.NullInt64, username, nickname, avatar sql.NullString) *model.UserRef {
	if !id.Valid {
		return nil
	}
	return &model.UserRef{ID: id.Int64, Username: username.String, Nickname: nickname.String, Avatar: avatar.String}
}

func topicRefFrom(id sql.NullInt64, title sql.NullString, nodeID sql.NullInt64) *model.TopicRef {
	if !id.Valid {
		return nil
	}
	return &model.TopicRef{ID: id.Int64, Title: title.String, NodeID: nodeID.Int64}
}

// targetColumn maps a discriminator to the column that holds its id.
func targetColumn(kind model.InvolvedType) string {
	if kind == model.InvolvedReply {
		return "involved_reply"
	}
	return "involved_topic"
}

// requireAffected turns an UPDATE that matched nothing into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return repository.MapError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
