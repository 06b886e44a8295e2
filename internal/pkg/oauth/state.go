package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	stateKeyPrefix = "oauth:state:"
	stateTTL       = 10 * time.Minute
)

var ErrInvalidState = errors.New("invalid or expired oauth state")

// StateStore 在 Redis 中保存一次性的 OAuth state，值为登录完成后前端跳转的地址
type StateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

// GenerateState 生成 256 位随机 state 并保存回跳地址
func (s *StateStore) GenerateState(ctx context.Context, returnTo string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}
	state := hex.EncodeToString(buf)

	if err := s.rdb.Set(ctx, stateKeyPrefix+state, returnTo, stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}
	return state, nil
}

// ConsumeState 校验并删除 state，返回保存的回跳地址
func (s *StateStore) ConsumeState(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrInvalidState
	}

	key := stateKeyPrefix + state
	var returnTo string
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrInvalidState
		}
		if err != nil {
			return fmt.Errorf("failed to get state: %w", err)
		}
		returnTo = val

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return "", err
	}
	return returnTo, nil
}
