package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore はPostgreSQLのclient_tokensテーブルにトークンを保存する実装。
// 複数端末でトークンを共有したい場合に使用する。
type PostgresStore struct {
	db   *sql.DB
	slot string
}

// NewPostgresStore はPostgresStoreを生成する。slotが空の場合はDefaultSlotを使う。
func NewPostgresStore(db *sql.DB, slot string) *PostgresStore {
	if slot == "" {
		slot = DefaultSlot
	}
	return &PostgresStore{db: db, slot: slot}
}

// Get は保存済みトークンを取得する。行が存在しない場合は空文字列を返す。
func (s *PostgresStore) Get(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM client_tokens WHERE slot = $1`,
		s.slot,
	).Scan(&token)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return token, nil
}

// Set はトークンをアップサートする。
func (s *PostgresStore) Set(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client_tokens (slot, token, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (slot) DO UPDATE SET token = EXCLUDED.token, updated_at = now()`,
		s.slot, token,
	)
	if err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	return nil
}

// Remove はトークンを削除する。
func (s *PostgresStore) Remove(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM client_tokens WHERE slot = $1`,
		s.slot,
	)
	if err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
