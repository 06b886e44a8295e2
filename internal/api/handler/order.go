package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/api/middleware"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListMine 当前顾客的订单，最新在前
// GET /api/v1/orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	orders := h.orderService.ListMine(userID)
	response.SuccessList(c, len(orders), orders)
}

// Get 订单详情，顾客只能查看自己的订单
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.Get(viewer(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, order)
}

// List 全部订单
// GET /api/v1/admin/orders
func (h *OrderHandler) List(c *gin.Context) {
	orders := h.orderService.List()
	response.SuccessList(c, len(orders), orders)
}

// UpdateStatus 修改订单状态
// PATCH /api/v1/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	respondSaved(c, order, err)
}
