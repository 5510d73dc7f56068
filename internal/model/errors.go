package model

import (
	"errors"
	"fmt"
)

// ErrorKind はクライアントエラーの分類を表す。
type ErrorKind string

const (
	// KindAuthenticationRequired はトークン未保持のため送信前に拒否したことを示す。
	KindAuthenticationRequired ErrorKind = "authentication_required"
	// KindInvalidToken はバックエンドがトークンを拒否したことを示す。セッションの破棄が必要。
	KindInvalidToken ErrorKind = "invalid_or_expired_token"
	// KindRequestFailed は2xx以外のレスポンスを示す。
	KindRequestFailed ErrorKind = "request_failed"
	// KindNetworkOrParse は通信エラーまたはJSONの不正を示す。
	KindNetworkOrParse ErrorKind = "network_or_parse_failure"
)

// ClientError はAPI境界で扱う統一エラーを表す。
type ClientError struct {
	Kind    ErrorKind
	Message string // ユーザー向けメッセージ
	Status  int    // HTTPステータス（通信エラー時は0）
	Err     error  // 原因
}

// Error はerrorインターフェースを実装する。
func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *ClientError) Unwrap() error {
	return e.Err
}

// Is は同じKindのClientErrorと一致したとみなす。
func (e *ClientError) Is(target error) bool {
	var t *ClientError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// ErrInvalidToken はセッション破棄の判定にerrors.Isで使うセンチネル。
var ErrInvalidToken = &ClientError{Kind: KindInvalidToken}

// MsgNotAuthenticated はトークン未保持時に返すメッセージ。
const MsgNotAuthenticated = "User not authenticated"

// MsgUnexpected はメッセージを特定できないエラーに使う。
const MsgUnexpected = "An unexpected error occurred"

// NewAuthenticationRequiredError はトークン未保持エラーを生成する。
func NewAuthenticationRequiredError() *ClientError {
	return &ClientError{
		Kind:    KindAuthenticationRequired,
		Message: MsgNotAuthenticated,
	}
}

// NewInvalidTokenError はトークン拒否エラーを生成する。
func NewInvalidTokenError(status int, detail string) *ClientError {
	if detail == "" {
		detail = "Invalid token."
	}
	return &ClientError{
		Kind:    KindInvalidToken,
		Message: detail,
		Status:  status,
	}
}

// NewRequestFailedError は2xx以外のレスポンスのエラーを生成する。
// サーバーがメッセージを返さなかった場合はfallbackを使う。
func NewRequestFailedError(status int, serverMessage, fallback string) *ClientError {
	msg := serverMessage
	if msg == "" {
		msg = fallback
	}
	return &ClientError{
		Kind:    KindRequestFailed,
		Message: msg,
		Status:  status,
	}
}

// NewNetworkError は通信またはパース失敗のエラーを生成する。
func NewNetworkError(message string, cause error) *ClientError {
	if message == "" {
		message = MsgUnexpected
	}
	return &ClientError{
		Kind:    KindNetworkOrParse,
		Message: message,
		Err:     cause,
	}
}

// MessageOf はエラーからユーザー向けメッセージを取り出す。
// ClientError以外の場合はMsgUnexpectedを返す。
func MessageOf(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return MsgUnexpected
}

// KindOf はエラーの分類を返す。ClientError以外は通信エラーとして扱う。
func KindOf(err error) ErrorKind {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindNetworkOrParse
}
