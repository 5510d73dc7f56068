// Package security はクライアントの外向き通信と表示テキストの安全性を扱う。
//
// MessageSanitizer はバックエンドが返すメッセージからマークアップを除去する。
// 通知キューに入るテキストはすべてプレーンテキストになる。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MessageSanitizer はサーバー由来テキストのサニタイズ機能のインターフェース。
type MessageSanitizer interface {
	// Sanitize はすべてのタグを除去し、前後の空白を取り除いたプレーンテキストを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// messageSanitizer はbluemondayのStrictPolicyを使うMessageSanitizerの実装。
type messageSanitizer struct {
	policy *bluemonday.Policy
}

// NewMessageSanitizer は新しいMessageSanitizerを生成する。
func NewMessageSanitizer() *messageSanitizer {
	return &messageSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はタグを除去してプレーンテキストを返す。
// StrictPolicyはエンティティをエスケープするため、端末表示用に元に戻す。
func (s *messageSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}
