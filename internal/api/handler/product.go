package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List 商品列表
// GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	products := h.productService.List()
	response.SuccessList(c, len(products), products)
}

// Get 商品详情，课程附带大纲
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	view, err := h.productService.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// GetForEdit 后台编辑用的完整商品，包含全部模块和文件
// GET /api/v1/admin/products/:id
func (h *ProductHandler) GetForEdit(c *gin.Context) {
	p, err := h.productService.GetForEdit(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, p)
}

// Create 创建商品
// POST /api/v1/admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	p, err := h.productService.Create(c.Request.Context(), &req)
	respondSaved(c, p, err)
}

// Update 更新商品基本信息
// PUT /api/v1/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	p, err := h.productService.Update(c.Request.Context(), c.Param("id"), &req)
	respondSaved(c, p, err)
}

// Delete 删除商品
// DELETE /api/v1/admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	respondSaved(c, nil, h.productService.Delete(c.Request.Context(), c.Param("id")))
}

// AddModule 添加模块，parent_id 为空时添加到顶层
// POST /api/v1/admin/products/:id/modules
func (h *ProductHandler) AddModule(c *gin.Context) {
	var req dto.ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	p, err := h.productService.AddModule(c.Request.Context(), c.Param("id"), &req)
	respondSaved(c, p, err)
}

// UpdateModule 更新模块
// PATCH /api/v1/admin/products/:id/modules/:moduleId
func (h *ProductHandler) UpdateModule(c *gin.Context) {
	var req dto.ModuleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	p, err := h.productService.UpdateModule(c.Request.Context(), c.Param("id"), c.Param("moduleId"), &req)
	respondSaved(c, p, err)
}

// DeleteModule 删除模块及其子模块，root=true 时只允许删除顶层模块
// DELETE /api/v1/admin/products/:id/modules/:moduleId
func (h *ProductHandler) DeleteModule(c *gin.Context) {
	ctx := c.Request.Context()
	productID, moduleID := c.Param("id"), c.Param("moduleId")

	if c.Query("root") == "true" {
		p, err := h.productService.DeleteRootModule(ctx, productID, moduleID)
		respondSaved(c, p, err)
		return
	}
	p, err := h.productService.DeleteModule(ctx, productID, moduleID)
	respondSaved(c, p, err)
}

// AddFile 向模块添加文件
// POST /api/v1/admin/products/:id/modules/:moduleId/files
func (h *ProductHandler) AddFile(c *gin.Context) {
	var req dto.FileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	p, err := h.productService.AddFile(c.Request.Context(), c.Param("id"), c.Param("moduleId"), &req)
	respondSaved(c, p, err)
}

// UpdateFile 更新文件
// PATCH /api/v1/admin/products/:id/modules/:moduleId/files/:fileId
func (h *ProductHandler) UpdateFile(c *gin.Context) {
	var req dto.FileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	p, err := h.productService.UpdateFile(c.Request.Context(), c.Param("id"), c.Param("moduleId"), c.Param("fileId"), &req)
	respondSaved(c, p, err)
}

// DeleteFile 删除文件
// DELETE /api/v1/admin/products/:id/modules/:moduleId/files/:fileId
func (h *ProductHandler) DeleteFile(c *gin.Context) {
	p, err := h.productService.DeleteFile(c.Request.Context(), c.Param("id"), c.Param("moduleId"), c.Param("fileId"))
	respondSaved(c, p, err)
}
