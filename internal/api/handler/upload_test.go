package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/pkg/logger"
	"github.com/qs3c/course_store_server/internal/pkg/response"
	"github.com/qs3c/course_store_server/internal/service"
)

func uploadRequest(t *testing.T, router http.Handler, filename string, content []byte) response.Response {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", filename)
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/products/course/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return parseResponse(t, w)
}

func TestUploadHandler_UploadContent(t *testing.T) {
	cfg := &config.UploadConfig{
		MaxSize:           1024,
		AllowedExtensions: []string{".pdf", ".mp4"},
	}
	handler := NewUploadHandler(service.NewUploadService(nil, cfg, logger.Discard()))

	router := gin.New()
	router.POST("/admin/products/:id/uploads", handler.UploadContent)

	resp := uploadRequest(t, router, "guide.pdf", []byte("%PDF-1.4"))
	assert.Equal(t, response.CodeSuccess, resp.Code)
	data := dataMap(t, resp)
	assert.Equal(t, "pdf", data["type"])
	assert.Equal(t, service.StorageInline, data["storage"])
	assert.True(t, strings.HasPrefix(data["url"].(string), "data:application/pdf;base64,"))

	resp = uploadRequest(t, router, "archive.zip", []byte("PK"))
	assert.Equal(t, response.CodeParamError, resp.Code)

	resp = uploadRequest(t, router, "huge.mp4", bytes.Repeat([]byte("x"), 2048))
	assert.Equal(t, response.CodeParamError, resp.Code)
	assert.Equal(t, service.ErrFileTooLarge.Error(), resp.Message)

	resp = parseResponse(t, performRequest(router, "POST", "/admin/products/course/uploads", nil))
	assert.Equal(t, response.CodeParamError, resp.Code)
}
