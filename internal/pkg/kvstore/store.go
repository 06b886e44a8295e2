// Package kvstore is the key-value persistence collaborator. Each key holds
// one whole JSON document; writes replace the document, never patch it.
package kvstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("kvstore: key not found")
	ErrQuotaExceeded = errors.New("kvstore: storage quota exceeded")
)

// Store 键值存储接口
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
