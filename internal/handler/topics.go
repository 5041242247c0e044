package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/forum-service/internal/service"
	"github.com/maxviazov/forum-service/pkg/response"
)

// TopicHandler serves topics and the replies nested under them.
type TopicHandler struct {
	topics  service.TopicService
	replies service.ReplyService
}

func NewTopicHandler(topics service.TopicService, replies service.ReplyService) *TopicHandler {
	return &TopicHandler{topics: topics, replies: replies}
}

func (h *TopicHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/topics")
	{
		g.POST("", h.create)
		g.GET("", h.list)
		g.GET("/:id", h.getByID)
		g.GET("/:id/replies", h.listReplies)
		g.POST("/:id/replies", h.createReply)
	}
	r.GET("/nodes/:slug/topics", h.listByNode)
}

type createTopicRequest struct {
	AuthorID int64  `json:"author_id"`
	NodeID   int64  `json:"node_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func (h *TopicHandler) create(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	topic, err := h.topics.CreateTopic(c.Request.Context(), service.CreateTopicInput{
		AuthorID: req.AuthorID,
		NodeID:   req.NodeID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, topic)
}

func (h *TopicHandler) getByID(c *gin.Context) {
	topic, err := h.topics.GetTopic(c.Request.Context(), idParam(c, "id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, topic)
}

func (h *TopicHandler) list(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.topics.ListTopics(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WritePage(c, res)
}

func (h *TopicHandler) listByNode(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.topics.ListTopicsByNode(c.Request.Context(), c.Param("slug"), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WritePage(c, res)
}

type createReplyRequest struct {
	AuthorID int64  `json:"author_id"`
	Content  string `json:"content"`
}

func (h *TopicHandler) createReply(c *gin.Context) {
	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	reply, err := h.replies.CreateReply(c.Request.Context(), service.CreateReplyInput{
		AuthorID: req.AuthorID,
		TopicID:  idParam(c, "id"),
		Content:  req.Content,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, reply)
}

func (h *TopicHandler) listReplies(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := h.replies.ListReplies(c.Request.Context(), idParam(c, "id"), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WritePage(c, res)
}
