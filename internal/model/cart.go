package model

// BasicCartItem はカート編集APIが返すカート明細の最小情報を表す。
type BasicCartItem struct {
	ID     int `json:"id"`
	GameID int `json:"game_id"`
}

// CartItem はカート明細を表す。Quantityは1以上を想定するがクライアントでは検証しない。
type CartItem struct {
	ID        int       `json:"id"`
	Game      BasicGame `json:"game"`
	Quantity  int       `json:"quantity"`
	AddedDate string    `json:"added_date"`
}

// Cart はユーザーのカートのスナップショットを表す。
type Cart struct {
	CartItems    []CartItem `json:"cart_items"`
	CartSubtotal float64    `json:"cart_subtotal"`
}

// GameIDs はカート内のゲームIDを明細順に返す。
// nilのカートに対しては空スライスを返す。
func (c *Cart) GameIDs() []int {
	if c == nil {
		return []int{}
	}
	ids := make([]int, 0, len(c.CartItems))
	for _, item := range c.CartItems {
		ids = append(ids, item.Game.ID)
	}
	return ids
}

// Clone はカートのディープコピーを返す。
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	items := make([]CartItem, len(c.CartItems))
	copy(items, c.CartItems)
	return &Cart{CartItems: items, CartSubtotal: c.CartSubtotal}
}

// OwnedGame は購入済みゲームの所有レコードを表す。作成後は変更されない。
type OwnedGame struct {
	ID           int       `json:"id"`
	Game         BasicGame `json:"game"`
	PurchaseDate string    `json:"purchase_date"`
}
