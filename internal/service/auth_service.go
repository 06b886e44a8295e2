package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/course_store_server/config"
	"github.com/qs3c/course_store_server/internal/model"
	"github.com/qs3c/course_store_server/internal/model/dto"
	"github.com/qs3c/course_store_server/internal/pkg/jwt"
	"github.com/qs3c/course_store_server/internal/pkg/oauth"
	"github.com/qs3c/course_store_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrOAuthDisabled      = errors.New("未配置 GitHub 登录")
)

type AuthService struct {
	userRepo    *repository.UserRepository
	cfg         *config.Config
	githubOAuth *oauth.GithubOAuth
	states      *oauth.StateStore
	log         *logrus.Entry
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, states *oauth.StateStore, log *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		githubOAuth: oauth.NewGithubOAuth(
			cfg.OAuth.Github.ClientID,
			cfg.OAuth.Github.ClientSecret,
			cfg.OAuth.Github.RedirectURI,
		),
		states: states,
		log:    log.WithField("service", "auth"),
	}
}

// WithGithubOAuth 替换 GitHub OAuth 客户端
func (s *AuthService) WithGithubOAuth(g *oauth.GithubOAuth) *AuthService {
	s.githubOAuth = g
	return s
}

// Register 顾客注册
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	passwordStr := string(hashedPassword)

	user := &model.User{
		Username:     req.Username,
		Email:        &email,
		PasswordHash: &passwordStr,
		Role:         model.RoleCustomer,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("customer registered")
	return &dto.RegisterResponse{UserID: user.ID}, nil
}

// Login 邮箱密码登录，顾客和管理员共用
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user, "")
}

// EnsureAdmin 确保配置中的管理员账号存在且角色为 admin
func (s *AuthService) EnsureAdmin() error {
	admin := s.cfg.Admin
	if admin.Email == "" || admin.Password == "" {
		s.log.Warn("admin account not configured, skipping bootstrap")
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(admin.Email))

	user, err := s.userRepo.GetByEmail(email)
	if err == nil {
		if user.Role == model.RoleAdmin {
			return nil
		}
		s.log.WithField("user_id", user.ID).Info("promoting configured account to admin")
		return s.userRepo.UpdateFields(user.ID, map[string]interface{}{"role": model.RoleAdmin})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	passwordStr := string(hashed)
	username := admin.Username
	if username == "" {
		username = "admin"
	}

	user = &model.User{
		Username:     username,
		Email:        &email,
		PasswordHash: &passwordStr,
		Role:         model.RoleAdmin,
	}
	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	s.log.WithField("user_id", user.ID).Info("admin account created")
	return nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GithubAuthURL 生成 state 并返回 GitHub 授权地址
func (s *AuthService) GithubAuthURL(ctx context.Context, returnTo string) (*dto.GithubAuthURLResponse, error) {
	if !s.githubOAuth.Enabled() || s.states == nil {
		return nil, ErrOAuthDisabled
	}

	state, err := s.states.GenerateState(ctx, returnTo)
	if err != nil {
		return nil, err
	}
	return &dto.GithubAuthURLResponse{
		URL:   s.githubOAuth.GetAuthURL(state),
		State: state,
	}, nil
}

// GithubCallback 处理 GitHub OAuth 回调，新用户以顾客身份创建
func (s *AuthService) GithubCallback(ctx context.Context, code, state string) (*dto.LoginResponse, error) {
	if !s.githubOAuth.Enabled() || s.states == nil {
		return nil, ErrOAuthDisabled
	}

	returnTo, err := s.states.ConsumeState(ctx, state)
	if err != nil {
		return nil, err
	}

	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	githubUser, err := s.githubOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}
	githubID := githubUser.IDString()

	user, err := s.userRepo.GetByGithubID(githubID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		user = &model.User{
			Username:  githubUser.Login,
			GithubID:  &githubID,
			AvatarURL: githubUser.AvatarURL,
			Role:      model.RoleCustomer,
		}
		if githubUser.Email != "" {
			email := strings.ToLower(githubUser.Email)
			taken, err := s.userRepo.ExistsByEmail(email)
			if err != nil {
				return nil, err
			}
			if !taken {
				user.Email = &email
			}
		}

		// 确保用户名唯一
		exists, _ := s.userRepo.ExistsByUsername(user.Username)
		if exists {
			user.Username = fmt.Sprintf("%s_%d", githubUser.Login, githubUser.ID)
		}

		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.log.WithField("user_id", user.ID).Info("customer registered via github")
	}

	return s.issueToken(user, returnTo)
}

func (s *AuthService) issueToken(user *model.User, returnTo string) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:    token,
		User:     buildUserInfo(user),
		ReturnTo: returnTo,
	}, nil
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.Email != nil {
		info.Email = *user.Email
	}
	return info
}
