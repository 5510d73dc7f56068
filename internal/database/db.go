package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open はPostgreSQLデータベース接続を開く。
// トークン保存先にPostgreSQLを選んだ場合のみ使用する。
// sql.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
func Open(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// CLIプロセスは同時に1つのトークンしか扱わないため接続数を絞る
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	return db, nil
}
