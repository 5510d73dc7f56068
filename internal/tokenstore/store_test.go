package tokenstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/hitoshi/storefront/internal/database"
)

func TestMemoryStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if got != "" {
		t.Errorf("初期トークン = %q, want 空", got)
	}

	if err := s.Set(ctx, "abc123"); err != nil {
		t.Fatalf("Set がエラーを返した: %v", err)
	}
	got, _ = s.Get(ctx)
	if got != "abc123" {
		t.Errorf("トークン = %q, want %q", got, "abc123")
	}

	if err := s.Remove(ctx); err != nil {
		t.Fatalf("Remove がエラーを返した: %v", err)
	}
	got, _ = s.Get(ctx)
	if got != "" {
		t.Errorf("削除後のトークン = %q, want 空", got)
	}
}

func TestMemoryStore_InitialToken(t *testing.T) {
	s := NewMemoryStore("seed")
	got, _ := s.Get(context.Background())
	if got != "seed" {
		t.Errorf("トークン = %q, want %q", got, "seed")
	}
}

func TestFileStore_MissingFile_ReturnsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope", DefaultSlot))

	got, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if got != "" {
		t.Errorf("トークン = %q, want 空", got)
	}
}

func TestFileStore_SetCreatesFileWithPrivateMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront", DefaultSlot)
	s := NewFileStore(path)
	ctx := context.Background()

	if err := s.Set(ctx, "tok-1"); err != nil {
		t.Fatalf("Set がエラーを返した: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("トークンファイルが作成されていない: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("ファイルモード = %o, want 600", perm)
	}

	got, _ := s.Get(ctx)
	if got != "tok-1" {
		t.Errorf("トークン = %q, want %q", got, "tok-1")
	}
}

func TestFileStore_SetOverwrites(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), DefaultSlot))
	ctx := context.Background()

	_ = s.Set(ctx, "old")
	_ = s.Set(ctx, "new")

	got, _ := s.Get(ctx)
	if got != "new" {
		t.Errorf("トークン = %q, want %q", got, "new")
	}
}

func TestFileStore_GetTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultSlot)
	if err := os.WriteFile(path, []byte("tok-2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, _ := NewFileStore(path).Get(context.Background())
	if got != "tok-2" {
		t.Errorf("トークン = %q, want %q", got, "tok-2")
	}
}

func TestFileStore_RemoveMissingFile_NoError(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), DefaultSlot))
	if err := s.Remove(context.Background()); err != nil {
		t.Errorf("存在しないファイルの削除でエラーを返した: %v", err)
	}
}

func TestFileStore_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultSlot)
	s := NewFileStore(path)
	ctx := context.Background()

	_ = s.Set(ctx, "tok")
	if err := s.Remove(ctx); err != nil {
		t.Fatalf("Remove がエラーを返した: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("トークンファイルが削除されていない: %v", err)
	}
}

func TestNewPostgresStore_DefaultSlot(t *testing.T) {
	s := NewPostgresStore(nil, "")
	if s.slot != DefaultSlot {
		t.Errorf("slot = %q, want %q", s.slot, DefaultSlot)
	}
}

// TestPostgresStore_RoundTrip は実DBでのアップサートと削除を検証する。
// TEST_DATABASE_URL のDBに接続できない場合はスキップする。
func TestPostgresStore_RoundTrip(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL が未設定のためスキップ")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("データベースへの接続に失敗: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("テスト用データベースに接続できません（スキップ）: %v", err)
	}
	if err := database.RunMigrations(dbURL); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}

	ctx := context.Background()
	s := NewPostgresStore(db, "test_slot")
	t.Cleanup(func() { _ = s.Remove(ctx) })

	if err := s.Set(ctx, "first"); err != nil {
		t.Fatalf("Set がエラーを返した: %v", err)
	}
	if err := s.Set(ctx, "second"); err != nil {
		t.Fatalf("2回目の Set がエラーを返した: %v", err)
	}
	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if got != "second" {
		t.Errorf("トークン = %q, want %q", got, "second")
	}

	if err := s.Remove(ctx); err != nil {
		t.Fatalf("Remove がエラーを返した: %v", err)
	}
	got, _ = s.Get(ctx)
	if got != "" {
		t.Errorf("削除後のトークン = %q, want 空", got)
	}
}
