package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
	"github.com/qs3c/course_store_server/internal/testutil"
)

func setupUserHandler(t *testing.T) (*UserHandler, *testContext, func()) {
	t.Helper()

	ctx, cleanup := setupTestContext(t)
	// 未配置对象存储，头像上传返回错误
	userService := service.NewUserService(ctx.Users, nil)
	return NewUserHandler(userService), ctx, cleanup
}

func TestUserHandler_GetProfile(t *testing.T) {
	handler, ctx, cleanup := setupUserHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB, testutil.WithUsername("profileuser"))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.GET("/profile", handler.GetProfile)

	w := performRequest(router, "GET", "/profile", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, "profileuser", dataMap(t, resp)["username"])
}

func TestUserHandler_GetProfile_Unauthorized(t *testing.T) {
	handler, _, cleanup := setupUserHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/profile", handler.GetProfile)

	resp := parseResponse(t, performRequest(router, "GET", "/profile", nil))
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	handler, ctx, cleanup := setupUserHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB, testutil.WithUsername("before"))
	testutil.TestUser(t, ctx.DB, testutil.WithUsername("taken"))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.PUT("/profile", handler.UpdateProfile)

	resp := parseResponse(t, performRequest(router, "PUT", "/profile", map[string]string{"username": "after"}))
	assert.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, "after", dataMap(t, resp)["username"])

	resp = parseResponse(t, performRequest(router, "PUT", "/profile", map[string]string{"username": "taken"}))
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestUserHandler_UploadAvatar(t *testing.T) {
	handler, ctx, cleanup := setupUserHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.POST("/avatar", handler.UploadAvatar)

	// 缺少文件
	resp := parseResponse(t, performRequest(router, "POST", "/avatar", nil))
	assert.Equal(t, response.CodeParamError, resp.Code)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "me.png")
	part.Write([]byte("png"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/avatar", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeServerError, resp.Code)
	assert.Equal(t, service.ErrStorageUnavailable.Error(), resp.Message)
}
