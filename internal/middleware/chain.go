// Package middleware はバックエンドへの外向きHTTPリクエストに適用する
// http.RoundTripperミドルウェアを提供する。
package middleware

import "net/http"

// Middleware はhttp.RoundTripperをラップする関数。
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc は関数をhttp.RoundTripperとして扱うアダプタ。
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip はhttp.RoundTripperインターフェースを実装する。
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain はbaseにミドルウェアを適用したRoundTripperを返す。
// 先頭のミドルウェアが最も外側になる（リクエスト時に最初に実行される）。
// baseがnilの場合はhttp.DefaultTransportを使う。
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}
