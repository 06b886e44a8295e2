package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

type CouponHandler struct {
	couponService *service.CouponService
}

func NewCouponHandler(couponService *service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// List GET /api/v1/admin/coupons
func (h *CouponHandler) List(c *gin.Context) {
	coupons := h.couponService.List()
	response.SuccessList(c, len(coupons), coupons)
}

// Get GET /api/v1/admin/coupons/:id
func (h *CouponHandler) Get(c *gin.Context) {
	coupon, err := h.couponService.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, coupon)
}

// Create POST /api/v1/admin/coupons
func (h *CouponHandler) Create(c *gin.Context) {
	var req dto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	coupon, err := h.couponService.Create(c.Request.Context(), &req)
	respondSaved(c, coupon, err)
}

// Update PUT /api/v1/admin/coupons/:id
func (h *CouponHandler) Update(c *gin.Context) {
	var req dto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	coupon, err := h.couponService.Update(c.Request.Context(), c.Param("id"), &req)
	respondSaved(c, coupon, err)
}

// Delete DELETE /api/v1/admin/coupons/:id
func (h *CouponHandler) Delete(c *gin.Context) {
	respondSaved(c, nil, h.couponService.Delete(c.Request.Context(), c.Param("id")))
}
