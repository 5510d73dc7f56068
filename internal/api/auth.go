package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hitoshi/storefront/internal/model"
)

// tokenAuthBody はトークン取得APIのレスポンス。
// 成功時は {token}、失敗時はフィールドごとのエラー配列を返す。
type tokenAuthBody struct {
	Token          string   `json:"token"`
	Message        string   `json:"message"`
	Detail         string   `json:"detail"`
	NonFieldErrors []string `json:"non_field_errors"`
}

// TokenAuthAdapter はエンベロープなしのトークン取得レスポンスを標準エンベロープに変換する。
func TokenAuthAdapter(status int, body []byte) (model.Envelope, error) {
	var raw tokenAuthBody
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return model.Envelope{}, fmt.Errorf("decode token response: %w", err)
		}
	}

	env := model.Envelope{Message: raw.Message, Detail: raw.Detail}
	if env.Message == "" && len(raw.NonFieldErrors) > 0 {
		env.Message = raw.NonFieldErrors[0]
	}

	if status >= 200 && status <= 299 {
		ok := raw.Token != ""
		env.Success = &ok
		if !ok && env.Message == "" {
			env.Message = "Login failed"
		}
		if ok {
			data, err := json.Marshal(model.TokenResponse{Token: raw.Token})
			if err != nil {
				return model.Envelope{}, err
			}
			env.Data = data
		}
	}
	return env, nil
}

// ObtainToken は認証情報でトークンを取得する。
func (c *Client) ObtainToken(ctx context.Context, username, password string) (string, error) {
	var tr model.TokenResponse
	err := c.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     PathTokenAuth,
		Body:     model.Credentials{Username: username, Password: password},
		Fallback: "Login failed",
		Adapter:  TokenAuthAdapter,
	}, &tr)
	if err != nil {
		return "", err
	}
	return tr.Token, nil
}
