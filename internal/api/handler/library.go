package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/api/middleware"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

// LibraryHandler 已购内容：我的内容、课程播放器和电子书阅读
type LibraryHandler struct {
	libraryService *service.LibraryService
}

func NewLibraryHandler(libraryService *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

// Library GET /api/v1/library
func (h *LibraryHandler) Library(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	lib, err := h.libraryService.Library(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, lib)
}

// Player 课程播放器，未解锁模块不返回文件
// GET /api/v1/library/courses/:id
func (h *LibraryHandler) Player(c *gin.Context) {
	view, err := h.libraryService.Player(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// Ebook GET /api/v1/library/ebooks/:id
func (h *LibraryHandler) Ebook(c *gin.Context) {
	view, err := h.libraryService.Ebook(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}
