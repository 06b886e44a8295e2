package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

type TierHandler struct {
	tierService *service.TierService
}

func NewTierHandler(tierService *service.TierService) *TierHandler {
	return &TierHandler{tierService: tierService}
}

// List 订阅档位列表
// GET /api/v1/tiers
func (h *TierHandler) List(c *gin.Context) {
	tiers := h.tierService.List()
	response.SuccessList(c, len(tiers), tiers)
}

// Get GET /api/v1/tiers/:id
func (h *TierHandler) Get(c *gin.Context) {
	tier, err := h.tierService.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, tier)
}

// Create POST /api/v1/admin/tiers
func (h *TierHandler) Create(c *gin.Context) {
	var req dto.TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	tier, err := h.tierService.Create(c.Request.Context(), &req)
	respondSaved(c, tier, err)
}

// Update PUT /api/v1/admin/tiers/:id
func (h *TierHandler) Update(c *gin.Context) {
	var req dto.TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	tier, err := h.tierService.Update(c.Request.Context(), c.Param("id"), &req)
	respondSaved(c, tier, err)
}

// Delete DELETE /api/v1/admin/tiers/:id
func (h *TierHandler) Delete(c *gin.Context) {
	respondSaved(c, nil, h.tierService.Delete(c.Request.Context(), c.Param("id")))
}
