package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/oauth"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 顾客注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUsernameExists):
			response.ParamError(c, err.Error())
		default:
			_ = c.Error(err)
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "注册成功", resp)
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.AuthError(c, err.Error())
			return
		}
		_ = c.Error(err)
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// GithubAuth 获取 GitHub 授权地址
// GET /api/v1/auth/github?return_to=/library
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	resp, err := h.authService.GithubAuthURL(c.Request.Context(), c.Query("return_to"))
	if err != nil {
		if errors.Is(err, service.ErrOAuthDisabled) {
			response.ParamError(c, err.Error())
			return
		}
		_ = c.Error(err)
		response.ServerError(c, "")
		return
	}
	response.Success(c, resp)
}

// GithubCallback GitHub 授权回调
// GET /api/v1/auth/github/callback?code=xxx&state=xxx
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "缺少授权码")
		return
	}

	resp, err := h.authService.GithubCallback(c.Request.Context(), code, c.Query("state"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOAuthDisabled):
			response.ParamError(c, err.Error())
		case errors.Is(err, oauth.ErrInvalidState):
			response.AuthError(c, "登录状态已失效，请重新登录")
		default:
			_ = c.Error(err)
			response.AuthError(c, "GitHub 登录失败")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}
