package navigation

import "testing"

func newTestTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(DefaultRoutes())
	if err != nil {
		t.Fatalf("NewTable がエラーを返した: %v", err)
	}
	return table
}

func TestLookup_StaticAndParamRoutes(t *testing.T) {
	table := newTestTable(t)

	tests := []struct {
		path      string
		name      string
		protected bool
	}{
		{"/", RouteHome, false},
		{"/games", RouteGames, false},
		{"/games/42", RouteGameDetails, false},
		{"/cart", RouteCart, true},
		{"/checkout", RouteCheckout, true},
		{"/orders", RouteOrders, true},
		{"/orders/ord-1", RouteOrderDetails, true},
		{"/library", RouteLibrary, true},
		{"/login?redirect=%2Fcart", RouteLogin, false},
		{"/register", RouteRegister, false},
	}
	for _, tt := range tests {
		m, ok := table.Lookup(tt.path)
		if !ok {
			t.Errorf("%s: ルートが見つからない", tt.path)
			continue
		}
		if m.Route.Name != tt.name {
			t.Errorf("%s: Name = %q, want %q", tt.path, m.Route.Name, tt.name)
		}
		if m.Route.Protected != tt.protected {
			t.Errorf("%s: Protected = %v, want %v", tt.path, m.Route.Protected, tt.protected)
		}
	}
}

func TestLookup_ExtractsParams(t *testing.T) {
	table := newTestTable(t)

	m, ok := table.Lookup("/orders/ord-7")
	if !ok {
		t.Fatal("ルートが見つからない")
	}
	if m.Params["id"] != "ord-7" {
		t.Errorf("id = %q, want ord-7", m.Params["id"])
	}
}

func TestLookup_TrailingSlashAndCase_MatchSameRoute(t *testing.T) {
	table := newTestTable(t)

	tests := []struct {
		path string
		name string
	}{
		{"/cart/", RouteCart},
		{"/Cart", RouteCart},
		{"/LIBRARY/", RouteLibrary},
		{"/orders/1/", RouteOrderDetails},
		{"/Games/3?x=1", RouteGameDetails},
	}
	for _, tt := range tests {
		m, ok := table.Lookup(tt.path)
		if !ok {
			t.Errorf("%s: ルートが見つからない", tt.path)
			continue
		}
		if m.Route.Name != tt.name {
			t.Errorf("%s: Name = %q, want %q", tt.path, m.Route.Name, tt.name)
		}
	}
}

func TestLookup_CaseInsensitiveMatch_KeepsParamCase(t *testing.T) {
	table := newTestTable(t)

	m, ok := table.Lookup("/Orders/ORD-7/")
	if !ok {
		t.Fatal("ルートが見つからない")
	}
	if m.Params["id"] != "ORD-7" {
		t.Errorf("id = %q, want ORD-7", m.Params["id"])
	}
}

func TestLookup_UnknownPath(t *testing.T) {
	table := newTestTable(t)

	if _, ok := table.Lookup("/admin"); ok {
		t.Error("未定義のパスが一致した")
	}
}

func TestNewTable_DuplicateName(t *testing.T) {
	_, err := NewTable([]Route{
		{Name: "a", Pattern: "/a"},
		{Name: "a", Pattern: "/b"},
	})
	if err == nil {
		t.Error("重複したルート名でエラーを返すべき")
	}
}

func TestPath_FillsParams(t *testing.T) {
	table := newTestTable(t)

	p, err := table.Path(RouteGameDetails, map[string]string{"id": "42"})
	if err != nil {
		t.Fatalf("Path がエラーを返した: %v", err)
	}
	if p != "/games/42" {
		t.Errorf("Path = %q, want /games/42", p)
	}
	if _, err := table.Path("nope", nil); err == nil {
		t.Error("未定義のルート名でエラーを返すべき")
	}
}
