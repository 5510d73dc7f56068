// Package tokenstore は認証トークンの永続化スロットを提供する。
// スロットは単一のトークン文字列だけを保持し、プロセス再起動後も残る。
package tokenstore

import (
	"context"
	"sync"
)

// DefaultSlot はトークンを保存するキー名。
const DefaultSlot = "auth_token"

// TokenStore はトークン永続化のインターフェース。
// トークンが保存されていない場合、Getは空文字列とnilを返す。
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

// MemoryStore はプロセス内メモリにトークンを保持する実装。
// テストおよびTOKEN_STORE=memoryで使用する。
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore はMemoryStoreを生成する。initialが空でなければ保存済みとして扱う。
func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{token: initial}
}

// Get は保存済みトークンを返す。
func (s *MemoryStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Set はトークンを保存する。
func (s *MemoryStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Remove はトークンを削除する。
func (s *MemoryStore) Remove(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// compile-time interface check
var (
	_ TokenStore = (*MemoryStore)(nil)
	_ TokenStore = (*FileStore)(nil)
	_ TokenStore = (*PostgresStore)(nil)
)
