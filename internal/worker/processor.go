package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/course_store_server/internal/pkg/queue"
)

// MaxAttempts 收据发送失败后最多重试的次数
const MaxAttempts = 3

// DefaultRetryBackoff 第一次重试前的等待时间，之后每次翻倍
const DefaultRetryBackoff = 30 * time.Second

// ReceiptSender 发送收据邮件
type ReceiptSender interface {
	SendReceipt(job *queue.ReceiptJob) error
}

// JobQueue 收据任务队列
type JobQueue interface {
	Push(ctx context.Context, job *queue.ReceiptJob) error
	Pop(ctx context.Context, timeout time.Duration) (*queue.ReceiptJob, error)
	PushDelayed(ctx context.Context, job *queue.ReceiptJob, at time.Time) error
	PromoteDue(ctx context.Context, now time.Time) (int, error)
}

// Processor 收据任务处理器
type Processor struct {
	queue   JobQueue
	sender  ReceiptSender
	log     *logrus.Entry
	timeout time.Duration
	backoff time.Duration
	promote time.Duration
	now     func() time.Time
}

// NewProcessor 创建收据任务处理器
func NewProcessor(q JobQueue, sender ReceiptSender, log *logrus.Logger) *Processor {
	return &Processor{
		queue:   q,
		sender:  sender,
		log:     log.WithField("component", "receipt_worker"),
		timeout: 5 * time.Second,
		backoff: DefaultRetryBackoff,
		promote: time.Second,
		now:     time.Now,
	}
}

// retryDelay 第 attempts 次失败后的等待时间
func (p *Processor) retryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return p.backoff << (attempts - 1)
}

// Process 发送一封收据，失败时按指数退避延迟重试，直到达到重试上限
func (p *Processor) Process(ctx context.Context, job *queue.ReceiptJob) error {
	entry := p.log.WithFields(logrus.Fields{"order_id": job.OrderID, "attempt": job.Attempts + 1})

	if job.CustomerEmail == "" {
		entry.Debug("receipt skipped, no recipient")
		return nil
	}

	err := p.sender.SendReceipt(job)
	if err == nil {
		entry.Info("receipt sent")
		return nil
	}

	job.Attempts++
	if job.Attempts >= MaxAttempts {
		entry.WithError(err).Error("receipt dropped after max attempts")
		return fmt.Errorf("send receipt %s: %w", job.OrderID, err)
	}

	delay := p.retryDelay(job.Attempts)
	entry.WithError(err).WithField("retry_in", delay).Warn("receipt failed, scheduling retry")
	if qerr := p.queue.PushDelayed(ctx, job, p.now().Add(delay)); qerr != nil {
		return fmt.Errorf("requeue receipt %s: %w", job.OrderID, qerr)
	}
	return err
}

// Run 启动 workers 个协程消费队列，ctx 取消后等待全部退出
func (p *Processor) Run(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.promoteLoop(ctx)
	}()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

// promoteLoop 定期把到期的重试任务放回队列
func (p *Processor) promoteLoop(ctx context.Context) {
	ticker := time.NewTicker(p.promote)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.queue.PromoteDue(ctx, p.now())
			if err != nil {
				if ctx.Err() == nil {
					p.log.WithError(err).Warn("failed to promote delayed receipts")
				}
				continue
			}
			if n > 0 {
				p.log.WithField("count", n).Debug("delayed receipts requeued")
			}
		}
	}
}

func (p *Processor) loop(ctx context.Context, workerID int) {
	entry := p.log.WithField("worker", workerID)
	for {
		select {
		case <-ctx.Done():
			entry.Debug("worker shutting down")
			return
		default:
		}

		job, err := p.queue.Pop(ctx, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			entry.WithError(err).Warn("failed to pop receipt job")
			continue
		}
		if job == nil {
			continue // 超时，继续等待
		}

		if err := p.Process(ctx, job); err != nil {
			entry.WithError(err).Debug("receipt job not completed")
		}
	}
}
