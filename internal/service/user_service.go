package service

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/oss"
	"github.com/qs3c/course_store_server/internal/repository"
)

const maxAvatarSize = 2 << 20

type UserService struct {
	userRepo *repository.UserRepository
	storage  ObjectStorage
}

func NewUserService(userRepo *repository.UserRepository, storage ObjectStorage) *UserService {
	return &UserService{
		userRepo: userRepo,
		storage:  storage,
	}
}

// GetProfile 获取用户详情
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return buildUserInfo(user), nil
}

// UpdateProfile 更新用户信息
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 检查用户名是否已被占用
	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		user.Username = *req.Username
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return buildUserInfo(user), nil
}

// UploadAvatar 上传用户头像到对象存储
func (s *UserService) UploadAvatar(userID int64, file io.Reader, filename string) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	case "":
		ext = ".jpg"
	default:
		return "", ErrInvalidFormat
	}

	data, err := readLimited(file, maxAvatarSize)
	if err != nil {
		return "", err
	}

	avatarURL, err := s.storage.UploadFile(oss.AvatarKey(userID, ext), data, oss.ContentType(ext))
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{
		"avatar_url": avatarURL,
	}); err != nil {
		return "", err
	}
	return avatarURL, nil
}
