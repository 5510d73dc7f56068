package navigation

import (
	"errors"
	"fmt"
	"net/url"
)

// Action は遷移ガードの判定結果の種類。
type Action int

const (
	// Proceed は要求どおりに遷移する。
	Proceed Action = iota
	// RedirectToLogin は未認証のため保護ルートからログインへ転送する。
	RedirectToLogin
	// RedirectToLanding は認証済みのためログイン・登録からトップへ転送する。
	RedirectToLanding
)

func (a Action) String() string {
	switch a {
	case Proceed:
		return "proceed"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToLanding:
		return "redirect_to_landing"
	default:
		return "unknown"
	}
}

// LoginPath と LandingPath はガードの転送先。
const (
	LoginPath   = "/login"
	LandingPath = "/"
)

// Decision は1回の遷移に対するガードの判定。
type Decision struct {
	Action Action
	// Target は遷移先のパス。Proceedの場合は要求されたパス。
	Target string
}

// ErrAmbiguousRedirect は両方の転送規則が同時に成立したことを示す。
var ErrAmbiguousRedirect = errors.New("転送規則が同時に成立しました")

// AmbiguousRedirectError は同時に成立した転送候補を保持する。
// 優先順位は定めず、呼び出し側に判断を委ねる。
type AmbiguousRedirectError struct {
	To         string
	Candidates []Decision
}

func (e *AmbiguousRedirectError) Error() string {
	return fmt.Sprintf("%s: %s (%d candidates)", ErrAmbiguousRedirect.Error(), e.To, len(e.Candidates))
}

// Is はErrAmbiguousRedirectと一致したとみなす。
func (e *AmbiguousRedirectError) Is(target error) bool {
	return target == ErrAmbiguousRedirect
}

// Rule は1つの転送規則。成立した場合に転送先の判定とtrueを返す。
type Rule func(m Match, to string, authenticated bool) (Decision, bool)

// RequireAuth は未認証で保護ルートへ遷移した場合、元のパスを付けてログインへ転送する。
func RequireAuth(m Match, to string, authenticated bool) (Decision, bool) {
	if !m.Route.Protected || authenticated {
		return Decision{}, false
	}
	return Decision{
		Action: RedirectToLogin,
		Target: LoginPath + "?" + url.Values{"redirect": {to}}.Encode(),
	}, true
}

// GuestOnly は認証済みでログイン・登録へ遷移した場合、トップへ転送する。
func GuestOnly(m Match, _ string, authenticated bool) (Decision, bool) {
	if !authenticated || (m.Route.Name != RouteLogin && m.Route.Name != RouteRegister) {
		return Decision{}, false
	}
	return Decision{Action: RedirectToLanding, Target: LandingPath}, true
}

// DefaultRules は既定の転送規則を返す。
func DefaultRules() []Rule {
	return []Rule{RequireAuth, GuestOnly}
}

// Guard はルート遷移を検査し、認証状態に応じて転送を決定する。
type Guard struct {
	table *Table
	rules []Rule
}

// NewGuard はGuardの新しいインスタンスを生成する。rulesを省略した場合はDefaultRulesを使う。
func NewGuard(table *Table, rules ...Rule) *Guard {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Guard{table: table, rules: rules}
}

// Decide は遷移先と認証状態から判定を返す。
// 規則は常にすべて評価し、複数が成立した場合はAmbiguousRedirectErrorを返す。
// ルート表にないパスは規則の対象外として遷移を許可する。
func (g *Guard) Decide(to string, authenticated bool) (Decision, error) {
	m, ok := g.table.Lookup(to)
	if !ok {
		return Decision{Action: Proceed, Target: to}, nil
	}

	var fired []Decision
	for _, rule := range g.rules {
		if d, ok := rule(m, to, authenticated); ok {
			fired = append(fired, d)
		}
	}

	switch len(fired) {
	case 0:
		return Decision{Action: Proceed, Target: to}, nil
	case 1:
		return fired[0], nil
	default:
		return Decision{}, &AmbiguousRedirectError{To: to, Candidates: fired}
	}
}
