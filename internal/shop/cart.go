package shop

import (
	"context"
	"net/http"

	"github.com/hitoshi/storefront/internal/api"
	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/session"
)

type cartEditBody struct {
	GameID int `json:"game_id"`
}

// AddItemToCart はゲームをカートに追加する。
// dataは更新後のカート明細の全体であり、セッションのカートは再取得で置き換えられる。
func (s *Service) AddItemToCart(ctx context.Context, gameID int) model.Result[[]model.BasicCartItem] {
	return s.editCart(ctx, http.MethodPost, gameID, "add games to the cart", "Failed to add game to cart")
}

// RemoveItemFromCart はゲームをカートから削除する。
func (s *Service) RemoveItemFromCart(ctx context.Context, gameID int) model.Result[[]model.BasicCartItem] {
	return s.editCart(ctx, http.MethodDelete, gameID, "remove games from the cart", "Failed to remove game from cart")
}

func (s *Service) editCart(ctx context.Context, method string, gameID int, action, fallback string) model.Result[[]model.BasicCartItem] {
	token, fail := requireToken[[]model.BasicCartItem](s, action)
	if fail != nil {
		return *fail
	}

	res := call[[]model.BasicCartItem](ctx, s, api.Request{
		Method:   method,
		Path:     api.PathCartEdit,
		Token:    token,
		Body:     cartEditBody{GameID: gameID},
		Fallback: fallback,
	}, session.EffectRefreshCart, session.EffectRefreshUser)
	if res.Success && res.Data == nil {
		res.Data = []model.BasicCartItem{}
	}
	return res
}
