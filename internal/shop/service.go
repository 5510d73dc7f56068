// Package shop はカート・注文・カタログのAPI呼び出しを提供する。
// すべての操作はmodel.Resultを返し、失敗時はエラー通知を1件発行する。
package shop

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hitoshi/storefront/internal/api"
	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/session"
)

// Session はサービスが参照するセッションの操作。
type Session interface {
	Token() string
	Cart() *model.Cart
	InvalidateToken(ctx context.Context, token, reason string) bool
	Apply(ctx context.Context, effects ...session.Effect)
}

// Notifier はユーザー向けの通知を発行する。
type Notifier interface {
	Success(message string) string
	Error(message string) string
}

// Service はカート・注文・カタログ操作のサービス層。
type Service struct {
	client   *api.Client
	session  Session
	notifier Notifier
	logger   *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(client *api.Client, sess Session, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		session:  sess,
		notifier: notifier,
		logger:   logger,
	}
}

// call はリクエストを送信し、失敗を通知とセッション破棄に変換する。
// 成功時は宣言された再取得を実行する。
func call[T any](ctx context.Context, s *Service, r api.Request, effects ...session.Effect) model.Result[T] {
	var data T
	if err := s.client.Do(ctx, r, &data); err != nil {
		return failure[T](ctx, s, err, r.Token)
	}
	if len(effects) > 0 {
		s.session.Apply(ctx, effects...)
	}
	return model.Ok(data)
}

// failure はエラーを失敗結果に変換する。
// tokenが拒否された場合、それが現在のトークンであればセッションを破棄する。
func failure[T any](ctx context.Context, s *Service, err error, token string) model.Result[T] {
	msg := model.MessageOf(err)
	if errors.Is(err, model.ErrInvalidToken) {
		if !s.session.InvalidateToken(ctx, token, session.ReasonInvalidToken) {
			s.logger.Debug("置き換え済みトークンの拒否のためセッションを維持します",
				slog.String("error", err.Error()),
			)
		}
	} else {
		s.logger.Error("API呼び出しに失敗しました",
			slog.String("kind", string(model.KindOf(err))),
			slog.String("error", err.Error()),
		)
	}
	s.notifier.Error(msg)
	return model.Fail[T](msg)
}

// requireToken はトークンを返す。トークンがない場合は送信前に失敗結果を返す。
func requireToken[T any](s *Service, action string) (string, *model.Result[T]) {
	token := s.session.Token()
	if token != "" {
		return token, nil
	}
	err := model.NewAuthenticationRequiredError()
	s.logger.Info("未ログインのため送信しません",
		slog.String("kind", string(model.KindOf(err))),
		slog.String("action", action),
	)
	s.notifier.Error("You must be logged in to " + action)
	res := model.Fail[T](err.Message)
	return "", &res
}
