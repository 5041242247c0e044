package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/maxviazov/forum-service/internal/service"
)

type forum struct {
	ctx      context.Context
	d        service.Deps
	users    service.UserService
	nodes    service.NodeService
	topics   service.TopicService
	replies  service.ReplyService
	activity service.ActivityService
}

func newForum(t *testing.T) *forum {
	t.Helper()
	d := newStoreDeps(t)
	return &forum{
		ctx:      context.Background(),
		d:        d,
		users:    service.NewUserService(d, discard),
		nodes:    service.NewNodeService(d, discard),
		topics:   service.NewTopicService(d, discard),
		replies:  service.NewReplyService(d, discard),
		activity: service.NewActivityService(d, discard),
	}
}

func (f *forum) user(t *testing.T, name string) model.User {
	t.Helper()
	u, err := f.users.RegisterUser(f.ctx, service.RegisterUserInput{Username: name, Password: "password-" + name})
	require.NoError(t, err)
	return u
}

func (f *forum) node(t *testing.T, name string, floor int) model.Node {
	t.Helper()
	n, err := f.nodes.CreateNode(f.ctx, service.CreateNodeInput{Name: name, LimitReputation: floor})
	require.NoError(t, err)
	return n
}

func (f *forum) topic(t *testing.T, author, node int64) model.Topic {
	t.Helper()
	tp, err := f.topics.CreateTopic(f.ctx, service.CreateTopicInput{AuthorID: author, NodeID: node, Title: "Hello", Content: "first *post*"})
	require.NoError(t, err)
	return tp
}

func TestNodeService_CreateNode_DerivesSlug(t *testing.T) {
	f := newForum(t)
	plane, err := f.nodes.CreatePlane(f.ctx, "Programming")
	require.NoError(t, err)

	n, err := f.nodes.CreateNode(f.ctx, service.CreateNodeInput{PlaneID: &plane.ID, Name: "Go Programming"})
	require.NoError(t, err)
	assert.Equal(t, "go-programming", n.Slug)

	got, err := f.nodes.GetNode(f.ctx, "go-programming")
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	planes, err := f.nodes.ListPlanes(f.ctx)
	require.NoError(t, err)
	require.Len(t, planes, 1)
	require.Len(t, planes[0].Nodes, 1)

	_, err = f.nodes.CreateNode(f.ctx, service.CreateNodeInput{Name: "Other", Slug: "Not A Slug"})
	assert.True(t, hasField(err, "slug"), "got %v", err)

	missing := int64(999)
	_, err = f.nodes.CreateNode(f.ctx, service.CreateNodeInput{PlaneID: &missing, Name: "Orphan"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTopicService_CreateTopic_ReputationFloor(t *testing.T) {
	f := newForum(t)
	u := f.user(t, "newbie")
	locked := f.node(t, "Veterans", 10)

	_, err := f.topics.CreateTopic(f.ctx, service.CreateTopicInput{AuthorID: u.ID, NodeID: locked.ID, Title: "hi"})
	assert.ErrorIs(t, err, service.ErrForbidden)

	n, err := f.nodes.GetNode(f.ctx, locked.Slug)
	require.NoError(t, err)
	assert.Zero(t, n.TopicCount, "rejected topic must not bump the counter")
}

func TestTopicService_CreateTopic_BumpsNodeAndRenders(t *testing.T) {
	f := newForum(t)
	u := f.user(t, "author")
	n := f.node(t, "General", 0)

	tp := f.topic(t, u.ID, n.ID)
	assert.Equal(t, "<p>first *post*</p>", tp.ContentHTML)
	assert.Equal(t, "general", tp.Node.Slug)

	got, err := f.nodes.GetNode(f.ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TopicCount)
}

func TestTopicService_CreateTopic_Validation(t *testing.T) {
	svc := service.NewTopicService(service.Deps{}, discard)
	_, err := svc.CreateTopic(context.Background(), service.CreateTopicInput{Title: "   "})
	require.True(t, serviceErrIsInvalid(err))
	for _, field := range []string{"author_id", "node_id", "title"} {
		assert.True(t, hasField(err, field), "missing field error %s", field)
	}
}

func TestTopicService_GetTopic_CountsHits(t *testing.T) {
	f := newForum(t)
	u := f.user(t, "author")
	tp := f.topic(t, u.ID, f.node(t, "General", 0).ID)

	first, err := f.topics.GetTopic(f.ctx, tp.ID)
	require.NoError(t, err)
	second, err := f.topics.GetTopic(f.ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Hits)
	assert.Equal(t, 2, second.Hits)
	assert.NotEmpty(t, second.ContentHTML)

	_, err = f.topics.GetTopic(f.ctx, 12345)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTopicService_ListTopicsByNode(t *testing.T) {
	f := newForum(t)
	u := f.user(t, "author")
	n := f.node(t, "General", 0)
	f.topic(t, u.ID, n.ID)
	f.topic(t, u.ID, n.ID)

	res, err := f.topics.ListTopicsByNode(f.ctx, "general", repository.Page{Number: 1})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, service.TopicPageSize, res.Page.Size)

	_, err = f.topics.ListTopicsByNode(f.ctx, "missing", repository.Page{Number: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, err := f.topics.ListTopics(f.ctx, repository.Page{Number: 1, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.PageCount)
	assert.True(t, all.Page.HasNext)
}

func TestTopicService_ListTopics_PagingInput(t *testing.T) {
	f := newForum(t)
	u := f.user(t, "author")
	n := f.node(t, "General", 0)
	for i := 0; i < 3; i++ {
		f.topic(t, u.ID, n.ID)
	}

	_, err := f.topics.ListTopics(f.ctx, repository.Page{Number: 1, Size: -5})
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)

	for _, number := range []int{0, -4, 9} {
		res, err := f.topics.ListTopics(f.ctx, repository.Page{Number: number, Size: 2})
		require.NoError(t, err, "page %d", number)
		assert.Empty(t, res.Items, "page %d", number)
		assert.True(t, res.Page.Empty(), "page %d", number)
		assert.Equal(t, 1, res.Page.Page, "page %d", number)
		assert.Equal(t, 2, res.Page.PageCount, "page %d", number)
	}

	second, err := f.topics.ListTopics(f.ctx, repository.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.Len(t, second.Items, 1)
	assert.True(t, second.Page.HasPrevious)
}

func TestReplyService_CreateReply_SyncsTopicAndNotifies(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	replier := f.user(t, "replier")
	tp := f.topic(t, author.ID, f.node(t, "General", 0).ID)

	rp, err := f.replies.CreateReply(f.ctx, service.CreateReplyInput{AuthorID: replier.ID, TopicID: tp.ID, Content: "nice"})
	require.NoError(t, err)
	assert.Equal(t, "<p>nice</p>", rp.ContentHTML)

	got, err := f.d.Topics.GetByID(f.ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReplyCount)
	require.NotNil(t, got.LastRepliedBy)
	assert.Equal(t, replier.ID, got.LastRepliedBy.ID)
	require.NotNil(t, got.LastRepliedTime)
	assert.True(t, got.LastRepliedTime.Equal(rp.Created))
	assert.True(t, got.LastTouched.Equal(rp.Created))

	notes, err := f.users.ListUserNotifications(f.ctx, author.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	require.Len(t, notes.Items, 1)
	assert.Equal(t, "nice", notes.Items[0].Content)
	assert.Equal(t, model.InvolvedReply, notes.Items[0].InvolvedType)
	require.NotNil(t, notes.Items[0].InvolvedReplyID)
	assert.Equal(t, rp.ID, *notes.Items[0].InvolvedReplyID)

	_, err = f.replies.CreateReply(f.ctx, service.CreateReplyInput{AuthorID: author.ID, TopicID: tp.ID, Content: "thanks"})
	require.NoError(t, err)
	notes, err = f.users.ListUserNotifications(f.ctx, author.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	assert.Len(t, notes.Items, 1, "replying to your own topic does not notify")

	replied, err := f.users.ListUserRepliedTopics(f.ctx, replier.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	require.Len(t, replied.Items, 1)
	assert.Equal(t, tp.ID, replied.Items[0].ID)

	list, err := f.replies.ListReplies(f.ctx, tp.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, rp.ID, list.Items[0].ID)
	assert.Equal(t, "<p>nice</p>", list.Items[0].ContentHTML)

	marked, err := f.users.MarkNotificationsRead(f.ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)
}

func TestReplyService_CreateReply_UnknownTopicRollsBack(t *testing.T) {
	f := newForum(t)
	u := f.user(t, "replier")
	_, err := f.replies.CreateReply(f.ctx, service.CreateReplyInput{AuthorID: u.ID, TopicID: 77, Content: "lost"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	mine, err := f.users.ListUserReplies(f.ctx, u.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	assert.Empty(t, mine.Items)
}

func TestNodeService_ListHotNodes(t *testing.T) {
	f := newForum(t)
	u := f.user(t, "author")
	other := f.user(t, "other")
	busy := f.node(t, "Busy", 0)
	f.node(t, "Quiet", 0)
	tp := f.topic(t, u.ID, busy.ID)
	for i := 0; i < 3; i++ {
		_, err := f.replies.CreateReply(f.ctx, service.CreateReplyInput{AuthorID: other.ID, TopicID: tp.ID, Content: "+1"})
		require.NoError(t, err)
	}

	hot, err := f.nodes.ListHotNodes(f.ctx, 0)
	require.NoError(t, err)
	require.Len(t, hot, 1)
	assert.Equal(t, busy.ID, hot[0].ID)
	assert.Equal(t, 3, hot[0].ReplyTotal)
}

func TestActivityService_CastVote(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	voter := f.user(t, "voter")
	tp := f.topic(t, author.ID, f.node(t, "General", 0).ID)

	v, err := f.activity.CastVote(f.ctx, service.CastVoteInput{VoterID: voter.ID, Kind: model.InvolvedTopic, TargetID: tp.ID, Status: model.VoteUp})
	require.NoError(t, err)
	assert.Equal(t, model.VoteUp, v.Status)
	require.NotNil(t, v.TriggerUserID)
	assert.Equal(t, author.ID, *v.TriggerUserID)

	_, err = f.activity.CastVote(f.ctx, service.CastVoteInput{VoterID: voter.ID, Kind: model.InvolvedTopic, TargetID: tp.ID, Status: model.VoteDown})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	_, err = f.activity.CastVote(f.ctx, service.CastVoteInput{VoterID: author.ID, Kind: model.InvolvedTopic, TargetID: tp.ID, Status: model.VoteUp})
	assert.ErrorIs(t, err, service.ErrForbidden)

	got, err := f.d.Topics.GetByID(f.ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpVote)
	assert.Equal(t, 0, got.DownVote)

	notes, err := f.users.ListUserNotifications(f.ctx, author.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	require.Len(t, notes.Items, 1)
	assert.Equal(t, "voted up", notes.Items[0].Content)
}

func TestActivityService_CastVote_OnReply(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	replier := f.user(t, "replier")
	tp := f.topic(t, author.ID, f.node(t, "General", 0).ID)
	rp, err := f.replies.CreateReply(f.ctx, service.CreateReplyInput{AuthorID: replier.ID, TopicID: tp.ID, Content: "hmm"})
	require.NoError(t, err)

	v, err := f.activity.CastVote(f.ctx, service.CastVoteInput{VoterID: author.ID, Kind: model.InvolvedReply, TargetID: rp.ID, Status: model.VoteDown})
	require.NoError(t, err)
	require.NotNil(t, v.InvolvedReplyID)
	assert.Equal(t, rp.ID, *v.InvolvedReplyID)

	got, err := f.d.Replies.GetByID(f.ctx, rp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.DownVote)
}

func TestActivityService_CastVote_Validation(t *testing.T) {
	svc := service.NewActivityService(service.Deps{}, discard)
	_, err := svc.CastVote(context.Background(), service.CastVoteInput{VoterID: 1, Kind: 7, TargetID: 1, Status: 3})
	require.True(t, serviceErrIsInvalid(err))
	assert.True(t, hasField(err, "involved_type"))
	assert.True(t, hasField(err, "status"))
}

func TestActivityService_AddFavorite(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	fan := f.user(t, "fan")
	tp := f.topic(t, author.ID, f.node(t, "General", 0).ID)

	fav, err := f.activity.AddFavorite(f.ctx, fan.ID, model.InvolvedTopic, tp.ID)
	require.NoError(t, err)
	require.NotNil(t, fav.InvolvedTopicID)
	assert.Equal(t, tp.ID, *fav.InvolvedTopicID)

	_, err = f.activity.AddFavorite(f.ctx, fan.ID, model.InvolvedTopic, tp.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	_, err = f.activity.AddFavorite(f.ctx, fan.ID, model.InvolvedReply, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	favs, err := f.users.ListUserFavorites(f.ctx, fan.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	require.Len(t, favs.Items, 1)
	require.NotNil(t, favs.Items[0].Topic)
	assert.Equal(t, "Hello", favs.Items[0].Topic.Title)
}

func TestActivityService_RecordTransaction(t *testing.T) {
	f := newForum(t)
	u := f.user(t, "earner")

	first, err := f.activity.RecordTransaction(f.ctx, service.RecordTransactionInput{UserID: u.ID, Type: model.TransactionReward, Reward: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, first.CurrentBalance)

	second, err := f.activity.RecordTransaction(f.ctx, service.RecordTransactionInput{UserID: u.ID, Type: model.TransactionSpend, Reward: -5})
	require.NoError(t, err)
	assert.Equal(t, 15, second.CurrentBalance)

	got, err := f.users.GetUser(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Balance)

	ledger, err := f.users.ListUserTransactions(f.ctx, u.ID, repository.Page{Number: 1})
	require.NoError(t, err)
	require.Len(t, ledger.Items, 2)
	assert.Equal(t, second.ID, ledger.Items[0].ID)

	_, err = f.activity.RecordTransaction(f.ctx, service.RecordTransactionInput{UserID: 999, Type: model.TransactionReward, Reward: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.activity.RecordTransaction(f.ctx, service.RecordTransactionInput{UserID: u.ID, Type: 9})
	require.True(t, serviceErrIsInvalid(err))
	assert.True(t, hasField(err, "type"))
	assert.True(t, hasField(err, "reward"))
}
