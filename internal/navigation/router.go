package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// MaxRedirects は1回のPushで追従する転送の上限。
const MaxRedirects = 3

// ErrTooManyRedirects は転送がMaxRedirectsを超えたことを示す。
var ErrTooManyRedirects = errors.New("転送回数が上限を超えました")

// Authenticator はガードが参照する認証状態。
type Authenticator interface {
	IsAuthenticated() bool
}

// Visit は1回のPushの結果。
type Visit struct {
	Requested  string
	Final      string
	Redirected bool
	Decisions  []Decision
}

// Router は現在位置と履歴を保持し、遷移ごとにガードを実行する。
type Router struct {
	guard  *Guard
	logger *slog.Logger

	mu      sync.Mutex
	auth    Authenticator
	current string
	history []string
}

// NewRouter はRouterの新しいインスタンスを生成する。初期位置はトップページ。
func NewRouter(guard *Guard, logger *slog.Logger) *Router {
	return &Router{
		guard:   guard,
		logger:  logger,
		current: LandingPath,
	}
}

// Bind はガードが参照する認証状態を設定する。
// セッションがRouterを遷移先として保持するため、構築後に結び付ける。
func (r *Router) Bind(auth Authenticator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auth = auth
}

// Push はtargetへ遷移する。ガードの判定に従い転送を追従する。
func (r *Router) Push(ctx context.Context, target string) error {
	_, err := r.Visit(ctx, target)
	return err
}

// Visit はtargetへ遷移し、最終的な遷移先を返す。
// ガードがエラーを返した場合、現在位置は変更しない。
func (r *Router) Visit(ctx context.Context, target string) (Visit, error) {
	v := Visit{Requested: target}
	to := target

	for i := 0; i <= MaxRedirects; i++ {
		if err := ctx.Err(); err != nil {
			return v, err
		}

		d, err := r.guard.Decide(to, r.authenticated())
		if err != nil {
			r.logger.Warn("遷移ガードの判定に失敗しました",
				slog.String("to", to),
				slog.String("error", err.Error()),
			)
			return v, err
		}
		v.Decisions = append(v.Decisions, d)

		if d.Action == Proceed {
			v.Final = to
			v.Redirected = to != target
			r.record(to)
			r.logger.Debug("遷移しました",
				slog.String("requested", target),
				slog.String("final", to),
			)
			return v, nil
		}

		r.logger.Info("遷移を転送しました",
			slog.String("from", to),
			slog.String("to", d.Target),
			slog.String("action", d.Action.String()),
		)
		to = d.Target
	}
	return v, fmt.Errorf("%w: %s", ErrTooManyRedirects, target)
}

// Current は現在位置を返す。
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History は遷移履歴を古い順に返す。
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

func (r *Router) authenticated() bool {
	r.mu.Lock()
	auth := r.auth
	r.mu.Unlock()
	return auth != nil && auth.IsAuthenticated()
}

func (r *Router) record(to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, to)
	r.current = to
}
