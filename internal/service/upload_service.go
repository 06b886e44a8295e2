package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/coursetree"
	"github.com/qs3c/course_store_server/internal/pkg/oss"
)

var (
	ErrFileTooLarge       = errors.New("文件过大")
	ErrInvalidFormat      = errors.New("不支持的文件格式")
	ErrEmptyFile          = errors.New("文件为空")
	ErrStorageUnavailable = errors.New("对象存储未配置")
)

// 上传结果的存储方式
const (
	StorageOSS    = "oss"
	StorageInline = "inline"
)

// ObjectStorage 对象存储，返回可访问的 URL
type ObjectStorage interface {
	UploadFile(objectKey string, data []byte, contentType string) (string, error)
}

type UploadService struct {
	storage ObjectStorage
	cfg     *config.UploadConfig
	log     *logrus.Entry
}

// NewUploadService storage 为 nil 时上传内容以 data: 内嵌引用返回
func NewUploadService(storage ObjectStorage, cfg *config.UploadConfig, log *logrus.Logger) *UploadService {
	return &UploadService{
		storage: storage,
		cfg:     cfg,
		log:     log.WithField("service", "upload"),
	}
}

// UploadContent 上传课程内容文件（视频、音频、PDF、表格）
func (s *UploadService) UploadContent(productID, filename string, r io.Reader) (*dto.UploadResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !s.allowed(ext) {
		return nil, ErrInvalidFormat
	}
	fileType, ok := fileTypeForExt(ext)
	if !ok {
		return nil, ErrInvalidFormat
	}

	data, err := readLimited(r, s.cfg.MaxSize)
	if err != nil {
		return nil, err
	}

	contentType := oss.ContentType(ext)
	resp := &dto.UploadResponse{
		Type: string(fileType),
		Name: filename,
		Size: int64(len(data)),
	}

	if s.storage == nil {
		resp.URL = DataURI(contentType, data)
		resp.Storage = StorageInline
		return resp, nil
	}

	url, err := s.storage.UploadFile(oss.ContentKey(productID, ext), data, contentType)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"product_id": productID,
		"size":       len(data),
	}).Info("content uploaded")

	resp.URL = url
	resp.Storage = StorageOSS
	return resp, nil
}

func (s *UploadService) allowed(ext string) bool {
	for _, e := range s.cfg.AllowedExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// DataURI 生成 base64 内嵌引用
func DataURI(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

func fileTypeForExt(ext string) (coursetree.FileType, bool) {
	switch ext {
	case ".mp4", ".webm", ".mov":
		return coursetree.FileTypeVideo, true
	case ".mp3", ".wav", ".m4a":
		return coursetree.FileTypeAudio, true
	case ".pdf":
		return coursetree.FileTypePDF, true
	case ".xls", ".xlsx", ".csv":
		return coursetree.FileTypeExcel, true
	}
	return "", false
}

// readLimited 读取全部内容，超过 max 字节返回 ErrFileTooLarge
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}
