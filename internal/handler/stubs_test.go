package handler_test

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/forum-service/internal/handler"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/maxviazov/forum-service/internal/service"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

// fakeInvalid replicates aggregated validation error semantics.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

// stubUserService records the last listing call and returns canned values.
type stubUserService struct {
	user     model.User
	err      error
	gotInput service.RegisterUserInput
	gotID    int64
	gotPage  repository.Page
	topics   repository.PageResult[model.Topic]
	marked   int64
}

func (s *stubUserService) RegisterUser(ctx context.Context, in service.RegisterUserInput) (model.User, error) {
	s.gotInput = in
	return s.user, s.err
}
func (s *stubUserService) GetUser(ctx context.Context, id int64) (model.User, error) {
	s.gotID = id
	return s.user, s.err
}
func (s *stubUserService) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.user, s.err
}
func (s *stubUserService) ListUserTopics(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Topic], error) {
	s.gotID, s.gotPage = userID, page
	return s.topics, s.err
}
func (s *stubUserService) ListUserRepliedTopics(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Topic], error) {
	s.gotID, s.gotPage = userID, page
	return s.topics, s.err
}
func (s *stubUserService) ListUserReplies(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Reply], error) {
	return repository.PageResult[model.Reply]{Items: []model.Reply{}}, s.err
}
func (s *stubUserService) ListUserFavorites(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Favorite], error) {
	return repository.PageResult[model.Favorite]{Items: []model.Favorite{}}, s.err
}
func (s *stubUserService) ListUserNotifications(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Notification], error) {
	return repository.PageResult[model.Notification]{Items: []model.Notification{}}, s.err
}
func (s *stubUserService) MarkNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	s.gotID = userID
	return s.marked, s.err
}
func (s *stubUserService) ListUserTransactions(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Transaction], error) {
	return repository.PageResult[model.Transaction]{Items: []model.Transaction{}}, s.err
}
func (s *stubUserService) ListUserVotes(ctx context.Context, userID int64, page repository.Page) (repository.PageResult[model.Vote], error) {
	return repository.PageResult[model.Vote]{Items: []model.Vote{}}, s.err
}

type stubNodeService struct {
	node     model.Node
	planes   []model.Plane
	hot      []model.HotNode
	err      error
	gotInput service.CreateNodeInput
	gotLimit int
	gotSlug  string
}

func (s *stubNodeService) CreatePlane(ctx context.Context, name string) (model.Plane, error) {
	return model.Plane{ID: 1, Name: name}, s.err
}
func (s *stubNodeService) ListPlanes(ctx context.Context) ([]model.Plane, error) {
	return s.planes, s.err
}
func (s *stubNodeService) CreateNode(ctx context.Context, in service.CreateNodeInput) (model.Node, error) {
	s.gotInput = in
	return s.node, s.err
}
func (s *stubNodeService) GetNode(ctx context.Context, slug string) (model.Node, error) {
	s.gotSlug = slug
	return s.node, s.err
}
func (s *stubNodeService) ListHotNodes(ctx context.Context, limit int) ([]model.HotNode, error) {
	s.gotLimit = limit
	return s.hot, s.err
}

type stubTopicService struct {
	topic    model.Topic
	list     repository.PageResult[model.Topic]
	err      error
	gotInput service.CreateTopicInput
	gotSlug  string
	gotPage  repository.Page
}

func (s *stubTopicService) CreateTopic(ctx context.Context, in service.CreateTopicInput) (model.Topic, error) {
	s.gotInput = in
	return s.topic, s.err
}
func (s *stubTopicService) GetTopic(ctx context.Context, id int64) (model.Topic, error) {
	return s.topic, s.err
}
func (s *stubTopicService) ListTopics(ctx context.Context, page repository.Page) (repository.PageResult[model.Topic], error) {
	s.gotPage = page
	return s.list, s.err
}
func (s *stubTopicService) ListTopicsByNode(ctx context.Context, slug string, page repository.Page) (repository.PageResult[model.Topic], error) {
	s.gotSlug, s.gotPage = slug, page
	return s.list, s.err
}

type stubReplyService struct {
	reply    model.Reply
	err      error
	gotInput service.CreateReplyInput
}

func (s *stubReplyService) CreateReply(ctx context.Context, in service.CreateReplyInput) (model.Reply, error) {
	s.gotInput = in
	return s.reply, s.err
}
func (s *stubReplyService) ListReplies(ctx context.Context, topicID int64, page repository.Page) (repository.PageResult[model.Reply], error) {
	return repository.PageResult[model.Reply]{Items: []model.Reply{}}, s.err
}

type stubActivityService struct {
	err     error
	gotVote service.CastVoteInput
	gotTx   service.RecordTransactionInput
	gotFav  [3]int64
}

func (s *stubActivityService) AddFavorite(ctx context.Context, userID int64, kind model.InvolvedType, targetID int64) (model.Favorite, error) {
	s.gotFav = [3]int64{userID, int64(kind), targetID}
	return model.Favorite{ID: 1, OwnerUserID: userID, InvolvedType: kind}, s.err
}
func (s *stubActivityService) CastVote(ctx context.Context, in service.CastVoteInput) (model.Vote, error) {
	s.gotVote = in
	return model.Vote{ID: 1, InvolvedUserID: in.VoterID, Status: in.Status}, s.err
}
func (s *stubActivityService) RecordTransaction(ctx context.Context, in service.RecordTransactionInput) (model.Transaction, error) {
	s.gotTx = in
	return model.Transaction{ID: 1, UserID: in.UserID, Reward: in.Reward, CurrentBalance: in.Reward}, s.err
}

func newRouter(p handler.Pinger, svc handler.Services) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, p, svc, zerolog.Nop())
	return r
}
