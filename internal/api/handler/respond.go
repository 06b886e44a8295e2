package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/api/middleware"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/repository"
	"github.com/qs3c/course_store_server/internal/service"
)

// PersistWarning 修改已在内存生效但未写入存储
const PersistWarning = "修改已生效，但保存失败，服务重启后可能丢失"

// respondSaved 写操作响应，存储失败时仍返回成功并附带警告
func respondSaved(c *gin.Context, data interface{}, err error) {
	switch {
	case err == nil:
		response.Success(c, data)
	case errors.Is(err, repository.ErrPersist):
		_ = c.Error(err)
		response.SuccessWithWarning(c, data, PersistWarning)
	default:
		respondError(c, err)
	}
}

// respondError 将业务错误映射为统一错误码
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrModuleNotFound),
		errors.Is(err, service.ErrFileNotFound),
		errors.Is(err, service.ErrCouponNotFound),
		errors.Is(err, service.ErrTierNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrDuplicateModule),
		errors.Is(err, service.ErrDuplicateFile),
		errors.Is(err, service.ErrCouponCodeExists),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrUsernameExists):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrNegativePrice),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrNotRootModule),
		errors.Is(err, service.ErrInvalidFileType),
		errors.Is(err, service.ErrInvalidExpiry),
		errors.Is(err, service.ErrInvalidDiscount),
		errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrInvalidOrderStatus),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrModuleNotForSale),
		errors.Is(err, service.ErrUnknownPurchaseKind),
		errors.Is(err, service.ErrNotCourse),
		errors.Is(err, service.ErrNotEbook),
		errors.Is(err, service.ErrInvalidTimezone),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrInvalidFormat),
		errors.Is(err, service.ErrEmptyFile):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrNotPurchased):
		response.LockedError(c, err.Error())
	case errors.Is(err, service.ErrPaymentNotConfirmed):
		response.PaymentRequiredError(c, err.Error())
	case errors.Is(err, service.ErrOrderPermission):
		response.PermissionError(c, err.Error())
	default:
		_ = c.Error(err)
		response.ServerError(c, "")
	}
}

// viewer 当前请求的访问者
func viewer(c *gin.Context) service.Viewer {
	userID, _ := middleware.GetUserID(c)
	return service.Viewer{UserID: userID, Admin: middleware.IsAdmin(c)}
}
