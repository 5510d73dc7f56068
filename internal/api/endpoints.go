package api

// バックエンドのRESTエンドポイント。
const (
	PathTokenAuth        = "/api/token-auth/"
	PathUser             = "/api/user/"
	PathUserCreate       = "/api/user/create/"
	PathCartView         = "/api/cart/view/"
	PathCartEdit         = "/api/cart/edit/"
	PathOwnedGames       = "/api/games/owned/"
	PathAllGames         = "/api/games/all/"
	PathSpecificGame     = "/api/games/specific/"
	PathOrderCreate      = "/api/order/create/"
	PathOrder            = "/api/order/"
	PathSearchSuggestion = "/api/search/suggestion"
)
