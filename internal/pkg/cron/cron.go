package cron

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CouponSweeper 停用已过期或次数用尽的优惠券
type CouponSweeper interface {
	SweepCoupons(ctx context.Context) (int, error)
}

type Service struct {
	sweeper  CouponSweeper
	schedule string
	location *time.Location
	log      *logrus.Entry
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
}

// NewService schedule 为 5 段 cron 表达式，按店铺时区执行
func NewService(sweeper CouponSweeper, schedule string, loc *time.Location, log *logrus.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		sweeper:  sweeper,
		schedule: schedule,
		location: loc,
		log:      log.WithField("component", "cron"),
	}
}

// Start 启动定时任务
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.cron = cron.New(cron.WithLocation(s.location))
	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		s.log.WithError(err).WithField("schedule", s.schedule).Error("failed to schedule coupon sweep")
		return err
	}

	s.cron.Start()
	s.running = true
	s.log.WithField("schedule", s.schedule).Info("cron service started")
	return nil
}

// Stop 停止定时任务并等待正在执行的任务结束
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("cron service stopped")
}

func (s *Service) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.RunNow(ctx); err != nil {
		s.log.WithError(err).Warn("coupon sweep failed")
	}
}

// RunNow 立即执行一次优惠券清理（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) (int, error) {
	n, err := s.sweeper.SweepCoupons(ctx)
	if n > 0 {
		s.log.WithField("deactivated", n).Info("coupon sweep completed")
	}
	return n, err
}
