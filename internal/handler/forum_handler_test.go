package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/forum-service/internal/handler"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/maxviazov/forum-service/internal/service"
)

func do(t *testing.T, svc handler.Services, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	newRouter(stubPinger{}, svc).ServeHTTP(w, httptest.NewRequest(method, handler.APIV1Prefix+path, &buf))
	return w
}

func TestUserHandler_Register(t *testing.T) {
	stub := &stubUserService{user: model.User{ID: 1, Username: "alice", PasswordHash: "secret-hash"}}
	w := do(t, handler.Services{Users: stub}, http.MethodPost, "/users",
		map[string]string{"username": "alice", "password": "hunter222"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "alice", stub.gotInput.Username)
	assert.Equal(t, "hunter222", stub.gotInput.Password)
	assert.NotContains(t, w.Body.String(), "secret-hash")
}

func TestUserHandler_Register_Invalid(t *testing.T) {
	stub := &stubUserService{err: &fakeInvalid{fe: []service.FieldError{{Field: "username", Message: "is required"}}}}
	w := do(t, handler.Services{Users: stub}, http.MethodPost, "/users", map[string]string{})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_input")
	assert.Contains(t, w.Body.String(), "username")
}

func TestUserHandler_Register_MalformedJSON(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(stubPinger{}, handler.Services{Users: &stubUserService{}}).ServeHTTP(w,
		httptest.NewRequest(http.MethodPost, handler.APIV1Prefix+"/users", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	stub := &stubUserService{err: repository.ErrNotFound}
	w := do(t, handler.Services{Users: stub}, http.MethodGet, "/users/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int64(42), stub.gotID)
}

func TestUserHandler_ListTopics_PassesPageQuery(t *testing.T) {
	stub := &stubUserService{topics: repository.PageResult[model.Topic]{
		Items: []model.Topic{{ID: 9, Title: "hello"}},
		Page:  repository.PageDescriptor{Total: 1, Page: 1, Size: 5, PageCount: 1, End: 5},
	}}
	w := do(t, handler.Services{Users: stub}, http.MethodGet, "/users/3/topics?page=2&size=5", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(3), stub.gotID)
	assert.Equal(t, repository.Page{Number: 2, Size: 5}, stub.gotPage)

	var got repository.PageResult[model.Topic]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "hello", got.Items[0].Title)
	assert.Equal(t, 1, got.Page.PageCount)
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
	assert.Empty(t, w.Header().Get("Link"))
}

func TestUserHandler_ListTopics_PageQuery(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		wantCode int
		wantPage repository.Page
	}{
		{"absent uses first page and listing default", "", http.StatusOK, repository.Page{Number: 1}},
		{"explicit zero page passes through", "?page=0&size=5", http.StatusOK, repository.Page{Number: 0, Size: 5}},
		{"negative page passes through", "?page=-4", http.StatusOK, repository.Page{Number: -4}},
		{"malformed page", "?page=x", http.StatusBadRequest, repository.Page{}},
		{"empty size", "?size=", http.StatusBadRequest, repository.Page{}},
		{"zero size", "?size=0", http.StatusBadRequest, repository.Page{}},
		{"negative size", "?page=2&size=-5", http.StatusBadRequest, repository.Page{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubUserService{}
			w := do(t, handler.Services{Users: stub}, http.MethodGet, "/users/3/replied-topics"+tc.query, nil)
			require.Equal(t, tc.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tc.wantPage, stub.gotPage)
			if tc.wantCode == http.StatusBadRequest {
				assert.Contains(t, w.Body.String(), `"error":"invalid_argument"`)
			}
		})
	}
}

func TestUserHandler_MarkRead(t *testing.T) {
	stub := &stubUserService{marked: 4}
	w := do(t, handler.Services{Users: stub}, http.MethodPost, "/users/7/notifications/read", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"marked":4}`, w.Body.String())
	assert.Equal(t, int64(7), stub.gotID)
}

func TestNodeHandler_CreateAndHot(t *testing.T) {
	stub := &stubNodeService{node: model.Node{ID: 2, Name: "Go", Slug: "go"}}
	svc := handler.Services{Nodes: stub}

	w := do(t, svc, http.MethodPost, "/nodes", map[string]any{"name": "Go", "limit_reputation": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 5, stub.gotInput.LimitReputation)

	w = do(t, svc, http.MethodGet, "/hot-nodes?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, stub.gotLimit)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestNodeHandler_GetBySlug(t *testing.T) {
	stub := &stubNodeService{node: model.Node{ID: 2, Name: "Go", Slug: "go"}}
	w := do(t, handler.Services{Nodes: stub}, http.MethodGet, "/nodes/go", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "go", stub.gotSlug)
}

func TestTopicHandler_Create_Forbidden(t *testing.T) {
	stub := &stubTopicService{err: service.ErrForbidden}
	w := do(t, handler.Services{Topics: stub}, http.MethodPost, "/topics",
		map[string]any{"author_id": 1, "node_id": 2, "title": "t", "content": "c"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, service.CreateTopicInput{AuthorID: 1, NodeID: 2, Title: "t", Content: "c"}, stub.gotInput)
}

func TestTopicHandler_ListByNode(t *testing.T) {
	stub := &stubTopicService{list: repository.EmptyResult[model.Topic](repository.PageDescriptor{Page: 1, Size: 36})}
	w := do(t, handler.Services{Topics: stub}, http.MethodGet, "/nodes/golang/topics?page=3", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "golang", stub.gotSlug)
	assert.Equal(t, 3, stub.gotPage.Number)
	assert.Contains(t, w.Body.String(), `"items":[]`)
}

func TestTopicHandler_CreateReply_UsesPathTopic(t *testing.T) {
	replies := &stubReplyService{reply: model.Reply{ID: 5, TopicID: 11}}
	w := do(t, handler.Services{Replies: replies}, http.MethodPost, "/topics/11/replies",
		map[string]any{"author_id": 3, "content": "me too"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, service.CreateReplyInput{AuthorID: 3, TopicID: 11, Content: "me too"}, replies.gotInput)
}

func TestActivityHandler_Vote_Duplicate(t *testing.T) {
	stub := &stubActivityService{err: repository.ErrAlreadyExists}
	w := do(t, handler.Services{Activity: stub}, http.MethodPost, "/votes",
		map[string]any{"voter_id": 1, "involved_type": 1, "target_id": 8, "status": -1})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, service.CastVoteInput{VoterID: 1, Kind: model.InvolvedReply, TargetID: 8, Status: model.VoteDown}, stub.gotVote)
}

func TestActivityHandler_FavoriteAndTransaction(t *testing.T) {
	stub := &stubActivityService{}
	svc := handler.Services{Activity: stub}

	w := do(t, svc, http.MethodPost, "/favorites", map[string]any{"user_id": 2, "involved_type": 0, "target_id": 6})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, [3]int64{2, 0, 6}, stub.gotFav)

	w = do(t, svc, http.MethodPost, "/users/2/transactions", map[string]any{"type": 1, "reward": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(2), stub.gotTx.UserID)
	assert.Equal(t, 10, stub.gotTx.Reward)
}

func TestFeed_Atom(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubTopicService{list: repository.PageResult[model.Topic]{
		Items: []model.Topic{{ID: 4, Title: "Release notes", Content: "new build", Created: at, LastTouched: at,
			Author: &model.UserRef{ID: 1, Username: "alice"}}},
	}}
	w := httptest.NewRecorder()
	newRouter(stubPinger{}, handler.Services{Topics: stub}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feed.atom", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/atom+xml")
	assert.Contains(t, w.Body.String(), "Release notes")
	assert.Contains(t, w.Body.String(), "/api/v1/topics/4")
	assert.Equal(t, repository.Page{Number: 1, Size: 20}, stub.gotPage)
}

func TestFeed_Atom_UsesConfiguredBaseURL(t *testing.T) {
	stub := &stubTopicService{list: repository.PageResult[model.Topic]{
		Items: []model.Topic{{ID: 7, Title: "Pinned"}},
	}}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, stubPinger{}, handler.Services{Topics: stub}, zerolog.Nop(), handler.WithBaseURL("https://forum.example.com/"))

	req := httptest.NewRequest(http.MethodGet, "/feed.atom", nil)
	req.Host = "attacker.invalid"
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "https://forum.example.com/api/v1/topics/7")
	assert.NotContains(t, w.Body.String(), "attacker.invalid")
}
