package shop

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/storefront/internal/api"
	"github.com/hitoshi/storefront/internal/model"
)

const (
	// DefaultPage はゲーム一覧の既定ページ。
	DefaultPage = 1
	// DefaultPageSize はゲーム一覧の既定ページサイズ。
	DefaultPageSize = 50
)

// GameQuery はゲーム一覧の絞り込み条件。ゼロ値のフィールドはクエリに含めない。
type GameQuery struct {
	Platform string
	Genre    string
	IsSale   *bool
	SortBy   string
	Search   string
	Page     int
	PageSize int
}

// Values はクエリパラメータを組み立てる。
func (q GameQuery) Values() url.Values {
	v := url.Values{}
	if q.Platform != "" {
		v.Set("platform", q.Platform)
	}
	if q.Genre != "" {
		v.Set("genre", q.Genre)
	}
	if q.IsSale != nil {
		v.Set("is_sale", strconv.FormatBool(*q.IsSale))
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}

	page := q.Page
	if page <= 0 {
		page = DefaultPage
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("page_size", strconv.Itoa(pageSize))
	return v
}

type specificGameBody struct {
	GameID int `json:"game_id"`
}

// FetchAllGames はカタログのゲーム一覧を取得する。認証は不要。
func (s *Service) FetchAllGames(ctx context.Context, q GameQuery) model.Result[model.GamesPage] {
	res := call[model.GamesPage](ctx, s, api.Request{
		Method:   http.MethodGet,
		Path:     api.PathAllGames,
		Query:    q.Values(),
		Fallback: "Failed to fetch games",
	})
	if res.Success && res.Data.Games == nil {
		res.Data.Games = []model.Game{}
	}
	return res
}

// FetchSpecificGame はゲームの詳細を取得する。認証は不要。
func (s *Service) FetchSpecificGame(ctx context.Context, gameID int) model.Result[*model.Game] {
	return call[*model.Game](ctx, s, api.Request{
		Method:   http.MethodPost,
		Path:     api.PathSpecificGame,
		Body:     specificGameBody{GameID: gameID},
		Fallback: "Failed to fetch game",
	})
}

// FetchSearchSuggestions はインクリメンタル検索の候補を取得する。
// 空のクエリではリクエストを送信せずに空の結果を返す。
func (s *Service) FetchSearchSuggestions(ctx context.Context, query string) model.Result[[]model.SearchSuggestion] {
	if strings.TrimSpace(query) == "" {
		return model.Ok([]model.SearchSuggestion{})
	}

	res := call[[]model.SearchSuggestion](ctx, s, api.Request{
		Method:   http.MethodGet,
		Path:     api.PathSearchSuggestion,
		Query:    url.Values{"query": {query}},
		Fallback: "Failed to fetch search suggestions",
	})
	if res.Success && res.Data == nil {
		res.Data = []model.SearchSuggestion{}
	}
	return res
}
