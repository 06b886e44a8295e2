package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/config"
)

// New 按配置创建 logrus 实例，level 无法解析时回退到 info
func New(cfg config.LogConfig) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

// Discard 返回丢弃所有输出的 logger，测试使用
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
