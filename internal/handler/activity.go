package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/service"
	"github.com/maxviazov/forum-service/pkg/response"
)

type ActivityHandler struct {
	svc service.ActivityService
}

func NewActivityHandler(svc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

func (h *ActivityHandler) Register(r *gin.RouterGroup) {
	r.POST("/favorites", h.favorite)
	r.POST("/votes", h.vote)
	r.POST("/users/:id/transactions", h.transaction)
}

// involved_type is 0 for a topic and 1 for a reply.
type favoriteRequest struct {
	UserID       int64              `json:"user_id"`
	InvolvedType model.InvolvedType `json:"involved_type"`
	TargetID     int64              `json:"target_id"`
}

func (h *ActivityHandler) favorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	fav, err := h.svc.AddFavorite(c.Request.Context(), req.UserID, req.InvolvedType, req.TargetID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, fav)
}

type voteRequest struct {
	VoterID      int64              `json:"voter_id"`
	InvolvedType model.InvolvedType `json:"involved_type"`
	TargetID     int64              `json:"target_id"`
	Status       int                `json:"status"`
}

func (h *ActivityHandler) vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	vote, err := h.svc.CastVote(c.Request.Context(), service.CastVoteInput{
		VoterID:  req.VoterID,
		Kind:     req.InvolvedType,
		TargetID: req.TargetID,
		Status:   req.Status,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, vote)
}

type transactionRequest struct {
	Type            int    `json:"type"`
	Reward          int    `json:"reward"`
	InvolvedUserID  *int64 `json:"involved_user_id"`
	InvolvedTopicID *int64 `json:"involved_topic_id"`
	InvolvedReplyID *int64 `json:"involved_reply_id"`
}

func (h *ActivityHandler) transaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	tx, err := h.svc.RecordTransaction(c.Request.Context(), service.RecordTransactionInput{
		UserID:          idParam(c, "id"),
		Type:            req.Type,
		Reward:          req.Reward,
		InvolvedUserID:  req.InvolvedUserID,
		InvolvedTopicID: req.InvolvedTopicID,
		InvolvedReplyID: req.InvolvedReplyID,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, tx)
}
