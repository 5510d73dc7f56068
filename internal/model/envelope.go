package model

import "encoding/json"

// Envelope はバックエンドの大半のレスポンスが使う {success, message, data} ラッパーを表す。
// Detailはトークン認証失敗時にバックエンドが返すフィールド。
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Detail  string          `json:"detail,omitempty"`
}

// TokenResponse はトークン取得APIが返すエンベロープなしのレスポンスを表す。
type TokenResponse struct {
	Token string `json:"token"`
}

// Result はクライアント関数の統一戻り値を表す。
// 失敗時はSuccessがfalseでMessageに表示用メッセージが入る。
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// Ok は成功結果を生成する。
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail は失敗結果を生成する。
func Fail[T any](message string) Result[T] {
	return Result[T]{Success: false, Message: message}
}
