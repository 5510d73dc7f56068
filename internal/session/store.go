// Package session はクライアントプロセスの認証セッションと、
// それに紐づくユーザー・カート・所有ゲームのキャッシュを管理する。
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hitoshi/storefront/internal/api"
	"github.com/hitoshi/storefront/internal/metrics"
	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/tokenstore"
)

// LandingPath は未認証時の遷移先。
const LandingPath = "/"

// トークン破棄の理由。メトリクスのラベルに使う。
const (
	ReasonLogout       = "logout"
	ReasonInvalidToken = "invalid_token"
)

// Navigator はセッションの状態遷移に伴う画面遷移を行う。
type Navigator interface {
	Push(ctx context.Context, target string) error
}

// Notifier はユーザー向けの通知を発行する。
type Notifier interface {
	Success(message string) string
	Error(message string) string
	Info(message string) string
}

// Session はセッション状態のスナップショット。
// Tokenが空の場合、User・Cart・OwnedGamesは常に空である。
type Session struct {
	Token      string
	User       *model.User
	Cart       *model.Cart
	OwnedGames []model.OwnedGame
	IsLoading  bool
	LastError  string
}

// Store はセッション状態を保持し、バックエンドとの同期操作を提供する。
// 各操作はエラーを返さず、結果はLastErrorと通知で表現される。
// 同時に発行された操作同士の順序は保証しない。
type Store struct {
	client   *api.Client
	tokens   tokenstore.TokenStore
	nav      Navigator
	notifier Notifier
	metrics  metrics.Recorder
	logger   *slog.Logger

	mu       sync.Mutex
	state    Session
	inflight int
}

// Option はStoreの設定を変更する。
type Option func(*Store)

// WithMetrics はセッション破棄を記録するRecorderを設定する。
func WithMetrics(rec metrics.Recorder) Option {
	return func(s *Store) { s.metrics = rec }
}

// NewStore はStoreの新しいインスタンスを生成する。
// トークンの読み込みはInitializeで行う。
func NewStore(
	client *api.Client,
	tokens tokenstore.TokenStore,
	nav Navigator,
	notifier Notifier,
	logger *slog.Logger,
	opts ...Option,
) *Store {
	s := &Store{
		client:   client,
		tokens:   tokens,
		nav:      nav,
		notifier: notifier,
		metrics:  metrics.Nop{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize は永続化されたトークンを読み込み、存在すればユーザー・カート・所有ゲームを順に取得する。
// 画面遷移は行わない。
func (s *Store) Initialize(ctx context.Context) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		s.logger.Warn("永続化トークンの読み込みに失敗しました",
			slog.String("error", err.Error()),
		)
		token = ""
	}

	s.mu.Lock()
	s.state.Token = token
	s.mu.Unlock()

	if token == "" {
		return
	}
	s.refreshAll(ctx)
}

// Login は認証情報でトークンを取得し、セッションを確立する。
// 失敗時は既存のトークンを変更しない。成功した場合にtrueを返す。
func (s *Store) Login(ctx context.Context, username, password string) bool {
	s.begin()
	token, err := s.client.ObtainToken(ctx, username, password)
	s.end()
	if err != nil {
		s.fail(ctx, err, "")
		return false
	}

	s.mu.Lock()
	s.state.Token = token
	s.mu.Unlock()

	if err := s.tokens.Set(ctx, token); err != nil {
		s.logger.Warn("トークンの永続化に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	s.refreshAll(ctx)
	if !s.IsAuthenticated() {
		return false
	}

	s.logger.Info("ログインしました", slog.String("username", username))
	s.navigate(ctx, "/")
	s.notifier.Success("Logged in successfully")
	return true
}

// CreateUser はアカウントを作成し、成功した場合は同じ認証情報でログインする。
func (s *Store) CreateUser(ctx context.Context, nu model.NewUser) bool {
	s.begin()
	err := s.client.Do(ctx, api.Request{
		Method:   http.MethodPost,
		Path:     api.PathUserCreate,
		Body:     nu,
		Fallback: "Registration failed",
	}, nil)
	s.end()
	if err != nil {
		s.fail(ctx, err, "")
		return false
	}

	s.logger.Info("アカウントを作成しました", slog.String("username", nu.Username))
	return s.Login(ctx, nu.Username, nu.Password)
}

// FetchUser はユーザー情報を再取得する。トークンがない場合は送信せずにクリアする。
func (s *Store) FetchUser(ctx context.Context) {
	var user model.User
	s.refresh(ctx, api.PathUser, "Failed to fetch user data", &user,
		func(st *Session) { st.User = nil },
		func(st *Session) { st.User = &user },
	)
}

// FetchUserCart はカートを再取得し、キャッシュを置き換える。
func (s *Store) FetchUserCart(ctx context.Context) {
	var cart model.Cart
	s.refresh(ctx, api.PathCartView, "Failed to fetch user cart", &cart,
		func(st *Session) { st.Cart = nil },
		func(st *Session) { st.Cart = &cart },
	)
}

// FetchOwnedGames は所有ゲーム一覧を再取得する。
func (s *Store) FetchOwnedGames(ctx context.Context) {
	var owned []model.OwnedGame
	s.refresh(ctx, api.PathOwnedGames, "Failed to fetch owned games", &owned,
		func(st *Session) { st.OwnedGames = nil },
		func(st *Session) {
			if owned == nil {
				owned = []model.OwnedGame{}
			}
			st.OwnedGames = owned
		},
	)
}

// Logout はネットワークを使わずにセッションを破棄する。
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.clearLocked()
	s.state.LastError = ""
	s.inflight = 0
	s.state.IsLoading = false
	s.mu.Unlock()

	s.removePersisted(ctx)
	s.metrics.RecordTeardown(ReasonLogout)
	s.logger.Info("ログアウトしました")
	s.navigate(ctx, LandingPath)
	s.notifier.Info("You have been logged out")
}

// Invalidate はバックエンドがトークンを拒否した場合にセッションを破棄し、
// 未認証のランディングページへ遷移する。
func (s *Store) Invalidate(ctx context.Context, reason string) {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	s.teardown(ctx, reason)
}

// InvalidateToken はtokenが現在のトークンである場合のみセッションを破棄する。
// 拒否されたトークンが既に置き換わっている場合は何もせずfalseを返す。
func (s *Store) InvalidateToken(ctx context.Context, token, reason string) bool {
	s.mu.Lock()
	if token == "" || s.state.Token != token {
		s.mu.Unlock()
		return false
	}
	s.clearLocked()
	s.mu.Unlock()

	s.teardown(ctx, reason)
	return true
}

func (s *Store) teardown(ctx context.Context, reason string) {
	s.removePersisted(ctx)
	s.metrics.RecordTeardown(reason)
	s.logger.Warn("セッションを破棄しました", slog.String("reason", reason))
	s.navigate(ctx, LandingPath)
}

// Token は現在のトークンを返す。
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// IsAuthenticated はトークンを保持しているかを返す。
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// LastError は直近の操作の失敗メッセージを返す。
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastError
}

// Cart は現在のカートのコピーを返す。カート未取得の場合はnil。
func (s *Store) Cart() *model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cart.Clone()
}

// Snapshot はセッション状態のディープコピーを返す。
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	if s.state.User != nil {
		u := *s.state.User
		u.CartItems = append([]model.BasicCartItem(nil), s.state.User.CartItems...)
		snap.User = &u
	}
	snap.Cart = s.state.Cart.Clone()
	if s.state.OwnedGames != nil {
		snap.OwnedGames = append([]model.OwnedGame{}, s.state.OwnedGames...)
	}
	return snap
}

// refreshAll はユーザー・カート・所有ゲームを順に取得する。
// 途中でセッションが破棄された場合、残りはトークンなしとして短絡する。
func (s *Store) refreshAll(ctx context.Context) {
	s.FetchUser(ctx)
	s.FetchUserCart(ctx)
	s.FetchOwnedGames(ctx)
}

// refresh はトークン付きGETで1つのフィールドを更新する。
// 応答までにトークンが変わった場合は結果を捨てる。
func (s *Store) refresh(ctx context.Context, path, fallback string, out any, clear, apply func(*Session)) {
	s.mu.Lock()
	token := s.state.Token
	if token == "" {
		clear(&s.state)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.begin()
	err := s.client.Do(ctx, api.Request{
		Method:   http.MethodGet,
		Path:     path,
		Token:    token,
		Fallback: fallback,
	}, out)
	s.end()
	if err != nil {
		s.fail(ctx, err, token)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token != token {
		s.logger.Debug("トークンが変更されたため取得結果を破棄しました", slog.String("path", path))
		return
	}
	apply(&s.state)
}

// fail はエラーをLastErrorに記録し、エラー通知を1件発行する。
// tokenで送ったリクエストが拒否された場合はセッションを破棄する。
// その間に別のトークンへ置き換わっていた場合は結果を捨てる。
func (s *Store) fail(ctx context.Context, err error, token string) {
	msg := model.MessageOf(err)
	if errors.Is(err, model.ErrInvalidToken) {
		if !s.InvalidateToken(ctx, token, ReasonInvalidToken) {
			s.logger.Debug("置き換え済みトークンの拒否を破棄しました",
				slog.String("error", err.Error()),
			)
			return
		}
	} else {
		s.logger.Error("セッション操作に失敗しました",
			slog.String("kind", string(model.KindOf(err))),
			slog.String("error", err.Error()),
		)
	}

	s.mu.Lock()
	s.state.LastError = msg
	s.mu.Unlock()
	s.notifier.Error(msg)
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.state.IsLoading = true
	s.state.LastError = ""
}

func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight > 0 {
		s.inflight--
	}
	s.state.IsLoading = s.inflight > 0
}

// clearLocked はトークンと認証済みデータを同時にクリアする。呼び出し側でmuを保持すること。
func (s *Store) clearLocked() {
	s.state.Token = ""
	s.state.User = nil
	s.state.Cart = nil
	s.state.OwnedGames = nil
}

func (s *Store) removePersisted(ctx context.Context) {
	if err := s.tokens.Remove(ctx); err != nil {
		s.logger.Warn("永続化トークンの削除に失敗しました",
			slog.String("error", err.Error()),
		)
	}
}

func (s *Store) navigate(ctx context.Context, target string) {
	if s.nav == nil {
		return
	}
	if err := s.nav.Push(ctx, target); err != nil {
		s.logger.Warn("画面遷移に失敗しました",
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
	}
}
