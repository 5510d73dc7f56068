package session

import "context"

// Effect は操作の成功後に必要となるセッションの再取得を宣言する。
type Effect int

const (
	// EffectRefreshUser はユーザー情報の再取得を示す。
	EffectRefreshUser Effect = iota + 1
	// EffectRefreshCart はカートの再取得を示す。サーバーのカートで置き換える。
	EffectRefreshCart
	// EffectRefreshOwnedGames は所有ゲームの再取得を示す。
	EffectRefreshOwnedGames
)

func (e Effect) String() string {
	switch e {
	case EffectRefreshUser:
		return "refresh_user"
	case EffectRefreshCart:
		return "refresh_cart"
	case EffectRefreshOwnedGames:
		return "refresh_owned_games"
	default:
		return "unknown"
	}
}

// Apply は宣言された再取得を順に実行する。同じEffectは1回だけ実行する。
func (s *Store) Apply(ctx context.Context, effects ...Effect) {
	seen := make(map[Effect]bool, len(effects))
	for _, e := range effects {
		if seen[e] {
			continue
		}
		seen[e] = true

		switch e {
		case EffectRefreshUser:
			s.FetchUser(ctx)
		case EffectRefreshCart:
			s.FetchUserCart(ctx)
		case EffectRefreshOwnedGames:
			s.FetchOwnedGames(ctx)
		}
	}
}
