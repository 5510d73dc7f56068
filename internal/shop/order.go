package shop

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/storefront/internal/api"
	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/session"
)

type createOrderBody struct {
	FormData model.CheckoutForm `json:"form_data"`
	GameIDs  []int              `json:"game_ids"`
}

type orderDetailsBody struct {
	OrderID string `json:"order_id"`
}

// CreateOrder はセッションの現在のカートに含まれるゲームで注文を作成する。
// 購入対象は呼び出し側の入力ではなくカートのスナップショットから決定する。
func (s *Service) CreateOrder(ctx context.Context, form model.CheckoutForm) model.Result[*model.OrderResponse] {
	token, fail := requireToken[*model.OrderResponse](s, "create an order")
	if fail != nil {
		return *fail
	}

	body := createOrderBody{
		FormData: form,
		GameIDs:  s.session.Cart().GameIDs(),
	}
	res := call[*model.OrderResponse](ctx, s, api.Request{
		Method:   http.MethodPost,
		Path:     api.PathOrderCreate,
		Token:    token,
		Body:     body,
		Fallback: "Failed to create order",
	}, session.EffectRefreshCart, session.EffectRefreshUser)
	if res.Success {
		s.logger.Info("注文を作成しました", slog.Int("game_count", len(body.GameIDs)))
		s.notifier.Success("Order created successfully")
	}
	return res
}

// FetchOrderDetails は注文の詳細を取得する。
// 成功時は購入により所有ゲームが増えている可能性があるため所有ゲームを再取得する。
func (s *Service) FetchOrderDetails(ctx context.Context, orderID string) model.Result[*model.OrderResponse] {
	token, fail := requireToken[*model.OrderResponse](s, "fetch order details")
	if fail != nil {
		return *fail
	}

	return call[*model.OrderResponse](ctx, s, api.Request{
		Method:   http.MethodPost,
		Path:     api.PathOrder,
		Token:    token,
		Body:     orderDetailsBody{OrderID: orderID},
		Fallback: "Failed to fetch order details",
	}, session.EffectRefreshOwnedGames)
}

// FetchUserOrders はユーザーの注文履歴を取得する。
func (s *Service) FetchUserOrders(ctx context.Context) model.Result[[]model.OrderResponse] {
	token, fail := requireToken[[]model.OrderResponse](s, "fetch user orders")
	if fail != nil {
		return *fail
	}

	res := call[[]model.OrderResponse](ctx, s, api.Request{
		Method:   http.MethodGet,
		Path:     api.PathOrder,
		Token:    token,
		Fallback: "Failed to fetch user orders",
	})
	if res.Success && res.Data == nil {
		res.Data = []model.OrderResponse{}
	}
	return res
}
