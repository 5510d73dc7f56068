// Package model はストアフロントクライアントのドメインモデルを定義する。
package model

// BasicGame はカート・注文表示に使うゲームの最小情報を表す。
type BasicGame struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// PlatformObject はゲームの対応プラットフォームを表す。
type PlatformObject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreObject はゲームのジャンルを表す。
type GenreObject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Game はカタログ上のゲーム詳細を表す。
// セール関連フィールドはIsSaleがtrueの場合のみ意味を持つ。
type Game struct {
	BasicGame
	Developer     string           `json:"developer"`
	Publisher     string           `json:"publisher"`
	ReleaseDate   string           `json:"release_date"`
	TrailerURL    string           `json:"trailer_url,omitempty"`
	Platforms     []PlatformObject `json:"platforms,omitempty"`
	Genres        []GenreObject    `json:"genres,omitempty"`
	IsSale        bool             `json:"is_sale"`
	SalePrice     *float64         `json:"sale_price,omitempty"`
	SaleStartDate string           `json:"sale_start_date,omitempty"`
	SaleEndDate   string           `json:"sale_end_date,omitempty"`
}

// EffectivePrice はセール中であればセール価格、そうでなければ通常価格を返す。
func (g Game) EffectivePrice() float64 {
	if g.IsSale && g.SalePrice != nil {
		return *g.SalePrice
	}
	return g.Price
}

// Pagination はゲーム一覧のページング情報を表す。
// サーバーが返す参考値であり、クライアント側では強制しない。
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalGames  int  `json:"total_games"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// GamesPage はゲーム一覧APIのdata部分を表す。
type GamesPage struct {
	Games      []Game      `json:"games"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// SearchSuggestion はインクリメンタル検索の候補1件を表す。
type SearchSuggestion struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}
