package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/pkg/jwt"
	"github.com/qs3c/course_store_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuth 可选认证中间件（不强制要求登录）
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" || tokenString == c.GetHeader("Authorization") {
			c.Next()
			return
		}

		if claims, err := jwt.ParseToken(tokenString, jwtSecret); err == nil {
			c.Set(UserIDKey, claims.UserID)
			c.Set(RoleKey, claims.Role)
		}
		c.Next()
	}
}

// AdminOnly 仅允许管理员访问，需在 Auth 之后使用
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			response.PermissionError(c, "仅管理员可操作")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) string {
	return c.GetString(RoleKey)
}

func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == model.RoleAdmin
}
