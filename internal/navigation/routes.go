// Package navigation はクライアントのルート定義、遷移ガード、ルーターを提供する。
package navigation

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ルート名。
const (
	RouteHome         = "home"
	RouteGames        = "games"
	RouteGameDetails  = "gameDetails"
	RouteCart         = "cart"
	RouteCheckout     = "checkout"
	RouteOrders       = "orders"
	RouteOrderDetails = "orderDetails"
	RouteLibrary      = "library"
	RouteLogin        = "login"
	RouteRegister     = "register"
)

// Route はルート定義。Protectedなルートは認証が必要。
type Route struct {
	Name      string
	Pattern   string
	Protected bool
}

// DefaultRoutes はストアフロントのルート表を返す。
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteHome, Pattern: "/"},
		{Name: RouteGames, Pattern: "/games"},
		{Name: RouteGameDetails, Pattern: "/games/{id}"},
		{Name: RouteCart, Pattern: "/cart", Protected: true},
		{Name: RouteCheckout, Pattern: "/checkout", Protected: true},
		{Name: RouteOrders, Pattern: "/orders", Protected: true},
		{Name: RouteOrderDetails, Pattern: "/orders/{id}", Protected: true},
		{Name: RouteLibrary, Pattern: "/library", Protected: true},
		{Name: RouteLogin, Pattern: "/login"},
		{Name: RouteRegister, Pattern: "/register"},
	}
}

// Match はパスに一致したルートとパスパラメータ。
type Match struct {
	Route  Route
	Params map[string]string
}

// Table はchiのルーティングツリーでパスをルートに解決する。
type Table struct {
	mux       *chi.Mux
	byPattern map[string]Route
	byName    map[string]Route
}

// NewTable はルート表を構築する。名前またはパターンが重複する場合はエラーを返す。
func NewTable(routes []Route) (*Table, error) {
	t := &Table{
		mux:       chi.NewRouter(),
		byPattern: make(map[string]Route, len(routes)),
		byName:    make(map[string]Route, len(routes)),
	}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("ルート名が重複しています: %s", r.Name)
		}
		if _, dup := t.byPattern[r.Pattern]; dup {
			return nil, fmt.Errorf("ルートパターンが重複しています: %s", r.Pattern)
		}
		t.byName[r.Name] = r
		t.byPattern[r.Pattern] = r
		t.mux.Get(r.Pattern, noop)
	}
	return t, nil
}

// Lookup はパスに一致するルートを返す。クエリ文字列は無視する。
// 末尾のスラッシュと大文字小文字の違いは無視し、パラメータは元の表記のまま返す。
func (t *Table) Lookup(target string) (Match, bool) {
	p := target
	if u, err := url.Parse(target); err == nil {
		p = u.Path
	}
	p = cleanPath(p)

	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, strings.ToLower(p)) {
		return Match{}, false
	}
	route, ok := t.byPattern[rctx.RoutePattern()]
	if !ok {
		return Match{}, false
	}

	return Match{Route: route, Params: pathParams(route.Pattern, p)}, true
}

// cleanPath は重複スラッシュと末尾のスラッシュを除いたパスを返す。
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

// pathParams はパターンの{name}セグメントに対応する値をpから取り出す。
func pathParams(pattern, p string) map[string]string {
	params := make(map[string]string)
	patSegs := strings.Split(pattern, "/")
	segs := strings.Split(p, "/")
	for i, seg := range patSegs {
		if i >= len(segs) || !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		params[seg[1:len(seg)-1]] = segs[i]
	}
	return params
}

// Path は名前付きルートのパスを組み立てる。
func (t *Table) Path(name string, params map[string]string) (string, error) {
	r, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("未定義のルートです: %s", name)
	}
	path := r.Pattern
	for key, value := range params {
		path = strings.Replace(path, "{"+key+"}", url.PathEscape(value), 1)
	}
	return path, nil
}
