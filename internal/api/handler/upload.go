package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
	}
}

// UploadContent 上传课程文件，返回的地址用于添加文件
// POST /api/v1/admin/products/:id/uploads
func (h *UploadHandler) UploadContent(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传文件")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return
	}
	defer f.Close()

	result, err := h.uploadService.UploadContent(c.Param("id"), file.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}
