package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

const notificationSelect = `SELECT
	nt.id AS id, nt.involved_user AS involved_user, nt.trigger_user AS trigger_user,
	nt.involved_type AS involved_type, nt.involved_topic AS involved_topic,
	nt.involved_reply AS involved_reply, nt.content AS content, nt.status AS status,
	nt.occurrence_time AS occurrence_time,
	iu.username AS involved_username, iu.nickname AS involved_nickname, iu.avatar AS involved_avatar,
	tu.username AS trigger_username, tu.nickname AS trigger_nickname, tu.avatar AS trigger_avatar,
	t.title AS topic_title, t.node_id AS topic_node_id
FROM notifications nt
JOIN users iu ON iu.id = nt.involved_user
LEFT JOIN users tu ON tu.id = nt.trigger_user
LEFT JOIN topics t ON t.id = nt.involved_topic`

type notificationRow struct {
	ID               int64          `db:"id"`
	InvolvedUser     int64          `db:"involved_user"`
	TriggerUser      sql.NullInt64  `db:"trigger_user"`
	InvolvedType     int            `db:"involved_type"`
	InvolvedTopic    sql.NullInt64  `db:"involved_topic"`
	InvolvedReply    sql.NullInt64  `db:"involved_reply"`
	Content          string         `db:"content"`
	Status           int            `db:"status"`
	OccurrenceTime   time.Time      `db:"occurrence_time"`
	InvolvedUsername string         `db:"involved_username"`
	InvolvedNickname string         `db:"involved_nickname"`
	InvolvedAvatar   string         `db:"involved_avatar"`
	TriggerUsername  sql.NullString `db:"trigger_username"`
	TriggerNickname  sql.NullString `db:"trigger_nickname"`
	TriggerAvatar    sql.NullString `db:"trigger_avatar"`
	TopicTitle       sql.NullString `db:"topic_title"`
	TopicNodeID      sql.NullInt64  `db:"topic_node_id"`
}

func (r notificationRow) model() model.Notification {
	return model.Notification{
		ID: r.ID, InvolvedUserID: r.InvolvedUser, TriggerUserID: int64Ptr(r.TriggerUser),
		InvolvedType: model.InvolvedType(r.InvolvedType), InvolvedTopicID: int64Ptr(r.InvolvedTopic),
		InvolvedReplyID: int64Ptr(r.InvolvedReply), Content: r.Content, Status: r.Status,
		OccurrenceTime: r.OccurrenceTime.UTC(),
		TriggerUser:    userRefFrom(r.TriggerUser, r.TriggerUsername, r.TriggerNickname, r.TriggerAvatar),
		InvolvedUser: &model.UserRef{
			ID: r.InvolvedUser, Username: r.InvolvedUsername, Nickname: r.InvolvedNickname, Avatar: r.InvolvedAvatar,
		},
		InvolvedTopic: topicRefFrom(r.InvolvedTopic, r.TopicTitle, r.TopicNodeID),
	}
}

type notificationRepository struct{ db *sqlx.DB }

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Notification{}, err
	}
	exec := getQ(ctx, r.db)
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(
		`INSERT INTO notifications (involved_user, trigger_user, involved_type, involved_topic,
			involved_reply, content, status, occurrence_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		n.InvolvedUserID, nullInt64(n.TriggerUserID), int(n.InvolvedType), nullInt64(n.InvolvedTopicID),
		nullInt64(n.InvolvedReplyID), n.Content, n.Status, stamp(n.OccurrenceTime),
	)
	if err != nil {
		return model.Notification{}, repository.MapError(err)
	}
	var row notificationRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(notificationSelect+` WHERE nt.id = ?`), id); err != nil {
		return model.Notification{}, repository.MapError(err)
	}
	return row.model(), nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, userID int64, p repository.Page) (repository.PageResult[model.Notification], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.PageResult[model.Notification]{}, err
	}
	return listPage(ctx, getQ(ctx, r.db), p,
		`SELECT COUNT(*) FROM notifications WHERE involved_user = ?`,
		notificationSelect+`
		WHERE nt.involved_user = ?
		ORDER BY nt.id DESC`,
		[]any{userID}, notificationRow.model)
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if err := ensureDB(r.db); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(
		`UPDATE notifications SET status = ? WHERE involved_user = ? AND status = ?`),
		model.NotificationRead, userID, model.NotificationUnread,
	)
	if err != nil {
		return 0, repository.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, repository.MapError(err)
	}
	return n, nil
}

var _ repository.NotificationRepository = (*notificationRepository)(nil)
