package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/api/middleware"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

// StoreHandler 购物车询价、优惠码校验和下单
type StoreHandler struct {
	checkoutService *service.CheckoutService
	couponService   *service.CouponService
	authService     *service.AuthService
}

func NewStoreHandler(checkoutService *service.CheckoutService, couponService *service.CouponService, authService *service.AuthService) *StoreHandler {
	return &StoreHandler{
		checkoutService: checkoutService,
		couponService:   couponService,
		authService:     authService,
	}
}

// Quote 询价
// POST /api/v1/store/quote
func (h *StoreHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	quote, err := h.checkoutService.Quote(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, quote)
}

// ApplyCoupon 校验优惠码
// POST /api/v1/store/coupons/apply
func (h *StoreHandler) ApplyCoupon(c *gin.Context) {
	var req dto.CouponApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	coupon, validity := h.couponService.Check(req.Code)
	resp := dto.CouponApplyResponse{
		CouponResult: dto.CouponResult{Code: req.Code, Valid: validity.OK, Reason: validity.Reason},
	}
	if validity.OK {
		resp.Code = coupon.Code
		resp.DiscountType = string(coupon.DiscountType)
		resp.Value = coupon.Value
	}
	response.Success(c, resp)
}

// Checkout 付款完成后记录订单
// POST /api/v1/store/checkout
func (h *StoreHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	customer, err := h.authService.GetUserByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.checkoutService.RecordPurchase(c.Request.Context(), customer, &req)
	respondSaved(c, resp, err)
}
