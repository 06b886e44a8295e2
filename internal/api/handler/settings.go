package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get 店铺设置
// GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	response.Success(c, h.settingsService.Get())
}

// Update PUT /api/v1/admin/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), &req)
	respondSaved(c, settings, err)
}
