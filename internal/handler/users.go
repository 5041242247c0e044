package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/maxviazov/forum-service/internal/service"
	"github.com/maxviazov/forum-service/pkg/response"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/users")
	{
		g.POST("", h.create)
		g.GET("/:id", h.getByID)
		g.GET("/:id/topics", h.topics)
		g.GET("/:id/replied-topics", h.repliedTopics)
		g.GET("/:id/replies", h.replies)
		g.GET("/:id/favorites", h.favorites)
		g.GET("/:id/notifications", h.notifications)
		g.POST("/:id/notifications/read", h.markRead)
		g.GET("/:id/transactions", h.transactions)
		g.GET("/:id/votes", h.votes)
	}
	// username lookups live apart from /users/:id to keep the router free of wildcard conflicts
	r.GET("/profiles/:username", h.getByUsername)
}

type registerUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (h *UserHandler) create(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	user, err := h.svc.RegisterUser(c.Request.Context(), service.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, user)
}

func (h *UserHandler) getByID(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), idParam(c, "id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, user)
}

func (h *UserHandler) getByUsername(c *gin.Context) {
	user, err := h.svc.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, user)
}

// writeList runs one of the per-user listings and writes its page.
func writeList[T any](c *gin.Context, list func(context.Context, int64, repository.Page) (repository.PageResult[T], error)) {
	page, err := pageQuery(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	res, err := list(c.Request.Context(), idParam(c, "id"), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WritePage(c, res)
}

func (h *UserHandler) topics(c *gin.Context)        { writeList(c, h.svc.ListUserTopics) }
func (h *UserHandler) repliedTopics(c *gin.Context) { writeList(c, h.svc.ListUserRepliedTopics) }
func (h *UserHandler) replies(c *gin.Context)       { writeList(c, h.svc.ListUserReplies) }
func (h *UserHandler) favorites(c *gin.Context)     { writeList(c, h.svc.ListUserFavorites) }
func (h *UserHandler) notifications(c *gin.Context) { writeList(c, h.svc.ListUserNotifications) }
func (h *UserHandler) transactions(c *gin.Context)  { writeList(c, h.svc.ListUserTransactions) }
func (h *UserHandler) votes(c *gin.Context)         { writeList(c, h.svc.ListUserVotes) }

func (h *UserHandler) markRead(c *gin.Context) {
	n, err := h.svc.MarkNotificationsRead(c.Request.Context(), idParam(c, "id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"marked": n})
}
