package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	OSS      OSSConfig      `mapstructure:"oss"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Email    EmailConfig    `mapstructure:"email"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Store    StoreSettings  `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Cron     CronConfig     `mapstructure:"cron"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite, mysql
	Path         string `mapstructure:"path"`   // sqlite 文件路径
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// StorageConfig 集合文档的键值存储
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`          // database, redis, memory
	MaxValueBytes int    `mapstructure:"max_value_bytes"` // 单个文档上限，0 不限制
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// AdminConfig 启动时确保存在的后台管理员账号
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	ReceiptQueue string `mapstructure:"receipt_queue"`
	MaxWorkers   int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// StoreSettings 店铺展示设置
type StoreSettings struct {
	Name           string `mapstructure:"name" json:"name"`
	CurrencySymbol string `mapstructure:"currency_symbol" json:"currency_symbol"`
	Timezone       string `mapstructure:"timezone" json:"timezone"`
	SupportEmail   string `mapstructure:"support_email" json:"support_email"`
}

// Location 店铺时区，用于优惠券按自然日过期；无效时区回退到 UTC
func (s StoreSettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

type CronConfig struct {
	CouponSweep string `mapstructure:"coupon_sweep"` // 5 段 cron 表达式
}

type UploadConfig struct {
	MaxSize           int64    `mapstructure:"max_size"` // 最大文件大小（字节）
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// ApplyDefaults 为所有未设置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "storefront.db"
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 50
	}

	if c.Redis.Host == "" {
		c.Redis.Host = "127.0.0.1"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "database"
	}

	if c.JWT.ExpireHours == 0 {
		c.JWT.ExpireHours = 72
	}

	if c.Queue.ReceiptQueue == "" {
		c.Queue.ReceiptQueue = "receipt_queue"
	}
	if c.Queue.MaxWorkers == 0 {
		c.Queue.MaxWorkers = 2
	}

	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	}

	c.Store.ApplyDefaults()

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Cron.CouponSweep == "" {
		c.Cron.CouponSweep = "5 0 * * *"
	}

	if c.Upload.MaxSize == 0 {
		c.Upload.MaxSize = 50 << 20
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = []string{".mp4", ".webm", ".mp3", ".wav", ".pdf", ".xls", ".xlsx", ".csv"}
	}
}

// ApplyDefaults 填充店铺设置默认值
func (s *StoreSettings) ApplyDefaults() {
	if s.Name == "" {
		s.Name = "Digital Store"
	}
	if s.CurrencySymbol == "" {
		s.CurrencySymbol = "₹"
	}
	if s.Timezone == "" {
		s.Timezone = "Asia/Kolkata"
	}
	if s.SupportEmail == "" {
		s.SupportEmail = "support@example.com"
	}
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖，如 SERVER_PORT、JWT_SECRET
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}
