package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// ReceiptLine 收据中的一行商品
type ReceiptLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// ReceiptJob 订单完成后发送收据邮件的任务
type ReceiptJob struct {
	OrderID       string        `json:"order_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	Lines         []ReceiptLine `json:"lines"`
	Subtotal      string        `json:"subtotal"`
	Discount      string        `json:"discount"`
	Total         string        `json:"total"`
	CouponCode    string        `json:"coupon_code,omitempty"`
	Attempts      int           `json:"attempts"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将任务加入队列
func (q *Queue) Push(ctx context.Context, job *ReceiptJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取任务（阻塞），超时返回 nil
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*ReceiptJob, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var job ReceiptJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// delayedKey 等待重试任务的有序集合，score 为可执行时间（毫秒）
func (q *Queue) delayedKey() string {
	return q.queueName + ":delayed"
}

// PushDelayed 任务在 at 之后才会回到队列
func (q *Queue) PushDelayed(ctx context.Context, job *ReceiptJob, at time.Time) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.ZAdd(ctx, q.delayedKey(), &redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: data,
	}).Err()
}

// PromoteDue 把到期的延迟任务移回队列，返回移动数量。
// 多个进程同时调用时只有 ZREM 成功的一方会入队
func (q *Queue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	members, err := q.client.ZRangeByScore(ctx, q.delayedKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read delayed jobs: %w", err)
	}

	moved := 0
	for _, m := range members {
		removed, err := q.client.ZRem(ctx, q.delayedKey(), m).Result()
		if err != nil {
			return moved, fmt.Errorf("failed to claim delayed job: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.queueName, m).Err(); err != nil {
			return moved, fmt.Errorf("failed to promote delayed job: %w", err)
		}
		moved++
	}
	return moved, nil
}

// Delayed 等待重试的任务数
func (q *Queue) Delayed(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.delayedKey()).Result()
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
