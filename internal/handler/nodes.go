package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/service"
	"github.com/maxviazov/forum-service/pkg/response"
)

type NodeHandler struct {
	svc service.NodeService
}

func NewNodeHandler(svc service.NodeService) *NodeHandler { return &NodeHandler{svc: svc} }

func (h *NodeHandler) Register(r *gin.RouterGroup) {
	planes := r.Group("/planes")
	{
		planes.POST("", h.createPlane)
		planes.GET("", h.listPlanes)
	}
	nodes := r.Group("/nodes")
	{
		nodes.POST("", h.createNode)
		nodes.GET("/:slug", h.getNode)
	}
	r.GET("/hot-nodes", h.hot)
}

type createPlaneRequest struct {
	Name string `json:"name"`
}

func (h *NodeHandler) createPlane(c *gin.Context) {
	var req createPlaneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	plane, err := h.svc.CreatePlane(c.Request.Context(), req.Name)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, plane)
}

func (h *NodeHandler) listPlanes(c *gin.Context) {
	planes, err := h.svc.ListPlanes(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if planes == nil {
		planes = []model.Plane{}
	}
	response.WriteData(c, http.StatusOK, gin.H{"items": planes})
}

type createNodeRequest struct {
	PlaneID         *int64 `json:"plane_id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Introduction    string `json:"introduction"`
	Thumb           string `json:"thumb"`
	LimitReputation int    `json:"limit_reputation"`
}

func (h *NodeHandler) createNode(c *gin.Context) {
	var req createNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	node, err := h.svc.CreateNode(c.Request.Context(), service.CreateNodeInput{
		PlaneID:         req.PlaneID,
		Name:            req.Name,
		Slug:            req.Slug,
		Introduction:    req.Introduction,
		Thumb:           req.Thumb,
		LimitReputation: req.LimitReputation,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, node)
}

func (h *NodeHandler) getNode(c *gin.Context) {
	node, err := h.svc.GetNode(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, node)
}

func (h *NodeHandler) hot(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	nodes, err := h.svc.ListHotNodes(c.Request.Context(), limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if nodes == nil {
		nodes = []model.HotNode{}
	}
	response.WriteData(c, http.StatusOK, gin.H{"items": nodes})
}
