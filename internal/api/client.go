// Package api はストアフロントのRESTバックエンドと通信するクライアントを提供する。
// レスポンスは {success, message, data} エンベロープに正規化され、
// 失敗は model.ClientError の4分類のいずれかで返される。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/storefront/internal/model"
)

const (
	// maxResponseSize はレスポンスボディの読み取り上限。
	maxResponseSize = 10 << 20
	// DefaultTimeout はリクエスト単位の既定の期限。
	DefaultTimeout = 10 * time.Second
)

// Adapter はレスポンスボディをエンベロープに変換する関数。
// エンベロープ形式でないエンドポイントの差異をここで吸収する。
type Adapter func(status int, body []byte) (model.Envelope, error)

// Request は1回のAPI呼び出しを表す。
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Token が空でない場合のみAuthorizationヘッダーを付与する。
	Token string
	Body  any
	// Fallback はサーバーがメッセージを返さなかった場合の失敗メッセージ。
	Fallback string
	// Adapter が nil の場合は標準エンベロープとしてデコードする。
	Adapter Adapter
}

// Client はRESTバックエンドのクライアント。
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
}

// NewClient はClientの新しいインスタンスを生成する。
// timeoutが0以下の場合はDefaultTimeoutを使う。
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		timeout:    timeout,
	}
}

// BaseURL はバックエンドのベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do はリクエストを送信し、成功時はdataをoutにデコードする。
// outがnilの場合はdataを読み捨てる。
// 戻り値のエラーは常に *model.ClientError である。
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return model.NewNetworkError(r.Fallback, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.NewNetworkError("The request timed out", err)
		}
		return model.NewNetworkError(r.Fallback, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("path", r.Path),
			slog.String("error", err.Error()),
		)
		return model.NewNetworkError(r.Fallback, fmt.Errorf("read response body: %w", err))
	}

	adapt := r.Adapter
	if adapt == nil {
		adapt = decodeEnvelope
	}
	env, decodeErr := adapt(resp.StatusCode, body)

	if cerr := classify(r, resp.StatusCode, env, decodeErr); cerr != nil {
		return cerr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		c.logger.Error("レスポンスdataのパースに失敗しました",
			slog.String("path", r.Path),
			slog.String("error", err.Error()),
		)
		return model.NewNetworkError(r.Fallback, fmt.Errorf("decode data: %w", err))
	}
	return nil
}

// newRequest はhttp.Requestを組み立てる。
func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.Token != "" {
		req.Header.Set("Authorization", "Token "+r.Token)
	}
	return req, nil
}

// classify はステータスとエンベロープからエラー分類を決定する。成功時はnilを返す。
func classify(r Request, status int, env model.Envelope, decodeErr error) *model.ClientError {
	if r.Token != "" && (status == http.StatusUnauthorized || isInvalidTokenDetail(env.Detail)) {
		return model.NewInvalidTokenError(status, env.Detail)
	}

	if status < 200 || status > 299 {
		msg := env.Message
		if msg == "" {
			msg = env.Detail
		}
		return model.NewRequestFailedError(status, msg, r.Fallback)
	}

	if decodeErr != nil {
		return model.NewNetworkError(r.Fallback, decodeErr)
	}

	if env.Success != nil && !*env.Success {
		return model.NewRequestFailedError(status, env.Message, r.Fallback)
	}
	return nil
}

// isInvalidTokenDetail はバックエンドのdetailがトークン拒否を示すかを判定する。
func isInvalidTokenDetail(detail string) bool {
	d := strings.ToLower(detail)
	return strings.Contains(d, "invalid token") || strings.Contains(d, "token has expired")
}

// decodeEnvelope は標準エンベロープをデコードする。空ボディは空エンベロープとして扱う。
func decodeEnvelope(_ int, body []byte) (model.Envelope, error) {
	var env model.Envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return model.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
